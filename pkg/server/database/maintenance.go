/* Copyright 2025 Dnote Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"time"

	"github.com/dnote/replica/pkg/server/log"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// EnableWAL switches the database to write-ahead logging so that readers do
// not block the writer
func EnableWAL(db *gorm.DB) error {
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		return errors.Wrap(err, "enabling WAL")
	}

	return nil
}

// Checkpoint truncates the WAL file into the database
func Checkpoint(db *gorm.DB) error {
	if err := db.Exec("PRAGMA wal_checkpoint(TRUNCATE)").Error; err != nil {
		return errors.Wrap(err, "checkpointing WAL")
	}

	return nil
}

// Vacuum rebuilds the database file to reclaim space
func Vacuum(db *gorm.DB) error {
	if err := db.Exec("VACUUM").Error; err != nil {
		return errors.Wrap(err, "vacuuming")
	}

	return nil
}

// every runs fn at each interval until ctx is done
func every(ctx context.Context, interval time.Duration, name string, fn func() error) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := fn(); err != nil {
					log.ErrorWrap(err, name)
					continue
				}

				log.WithFields(log.Fields{
					"task":       name,
					"durationMs": time.Since(start).Milliseconds(),
				}).Debug("maintenance done")
			}
		}
	}()
}

// StartWALCheckpointing checkpoints the WAL at each interval so that it does
// not grow unbounded
func StartWALCheckpointing(ctx context.Context, db *gorm.DB, interval time.Duration) {
	every(ctx, interval, "checkpointing WAL", func() error {
		return Checkpoint(db)
	})
}

// StartPeriodicVacuum vacuums the database at each interval
func StartPeriodicVacuum(ctx context.Context, db *gorm.DB, interval time.Duration) {
	every(ctx, interval, "vacuuming", func() error {
		return Vacuum(db)
	})
}
