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

package app

import (
	"encoding/json"
	"errors"

	"github.com/dnote/replica/pkg/replica/schema"
	"github.com/dnote/replica/pkg/replica/store"
	"github.com/dnote/replica/pkg/server/database"
	"github.com/dnote/replica/pkg/server/presenters"
	pkgErrors "github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

// SyncResult is the outcome of applying a pushed batch
type SyncResult struct {
	// Entries are the accepted payloads as stored by the server
	Entries []json.RawMessage
	// Removed are ids the client should purge
	Removed []string
}

// CheckEntity returns an error if the server does not serve the given entity
func (a *App) CheckEntity(entity string) error {
	if err := schema.ValidateEntity(entity); err != nil {
		return ErrInvalidEntity
	}

	if len(a.Entities) == 0 {
		return nil
	}
	for _, e := range a.Entities {
		if e == entity {
			return nil
		}
	}

	return ErrUnknownEntity
}

// ListRecords returns the payloads of the live records of the entity, most
// recently edited first
func (a *App) ListRecords(entity string) ([]json.RawMessage, error) {
	if err := a.CheckEntity(entity); err != nil {
		return nil, err
	}

	var records []database.Record
	if err := a.DB.Where("entity = ? AND deleted = ?", entity, false).
		Order("edited_on DESC, id DESC").
		Find(&records).Error; err != nil {
		return nil, pkgErrors.Wrap(err, "finding records")
	}

	return presenters.PresentRecords(records), nil
}

// GetRecord returns the payload of a live record
func (a *App) GetRecord(entity, id string) (json.RawMessage, error) {
	if err := a.CheckEntity(entity); err != nil {
		return nil, err
	}

	r, err := findRecord(a.DB, entity, id)
	if err != nil {
		return nil, err
	}
	if r == nil || r.Deleted {
		return nil, ErrNotFound
	}

	return presenters.PresentRecord(*r), nil
}

// SyncRecords applies a pushed batch in one transaction. Removals are applied
// first so an id both pushed and removed stays removed. A pushed entry whose
// record was deleted on the server is not resurrected and is reported back in
// Removed. Accepted entries overwrite the stored payload.
func (a *App) SyncRecords(entity string, entries []json.RawMessage, removed []string) (SyncResult, error) {
	if err := a.CheckEntity(entity); err != nil {
		return SyncResult{}, err
	}

	for _, e := range entries {
		if !gjson.ValidBytes(e) || !gjson.ParseBytes(e).IsObject() {
			return SyncResult{}, pkgErrors.Wrap(ErrInvalidPayload, "entry is not a JSON object")
		}
		if gjson.GetBytes(e, store.IDField).String() == "" {
			return SyncResult{}, pkgErrors.Wrapf(ErrInvalidPayload, "entry has no %s", store.IDField)
		}
	}

	ret := SyncResult{
		Entries: []json.RawMessage{},
		Removed: []string{},
	}

	err := a.DB.Transaction(func(tx *gorm.DB) error {
		now := a.Clock.Now().UnixMilli()
		reported := map[string]bool{}
		accepted := map[string]int{}

		for _, id := range removed {
			if id == "" || reported[id] {
				continue
			}
			if err := deleteRecord(tx, entity, id, now); err != nil {
				return pkgErrors.Wrapf(err, "deleting %s", id)
			}

			reported[id] = true
			ret.Removed = append(ret.Removed, id)
		}

		for _, e := range entries {
			id := gjson.GetBytes(e, store.IDField).String()

			ok, err := saveRecord(tx, entity, id, e, now)
			if err != nil {
				return pkgErrors.Wrapf(err, "saving %s", id)
			}
			if !ok {
				if !reported[id] {
					reported[id] = true
					ret.Removed = append(ret.Removed, id)
				}
				continue
			}

			if idx, dup := accepted[id]; dup {
				ret.Entries[idx] = e
			} else {
				accepted[id] = len(ret.Entries)
				ret.Entries = append(ret.Entries, e)
			}
		}

		return nil
	})
	if err != nil {
		return SyncResult{}, pkgErrors.Wrap(err, "applying sync")
	}

	return ret, nil
}

// findRecord returns the record including a deleted one, or nil if absent
func findRecord(db *gorm.DB, entity, id string) (*database.Record, error) {
	var r database.Record
	err := db.Where("entity = ? AND ulid = ?", entity, id).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgErrors.Wrap(err, "finding record")
	}

	return &r, nil
}

// saveRecord overwrites or inserts the payload. It returns false without
// writing if the record was deleted.
func saveRecord(tx *gorm.DB, entity, id string, data []byte, now int64) (bool, error) {
	r, err := findRecord(tx, entity, id)
	if err != nil {
		return false, err
	}

	if r == nil {
		rec := database.Record{
			Entity:   entity,
			ULID:     id,
			Data:     string(data),
			EditedOn: now,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return false, pkgErrors.Wrap(err, "inserting record")
		}

		return true, nil
	}

	if r.Deleted {
		return false, nil
	}

	if err := tx.Model(r).Updates(map[string]interface{}{
		"data":      string(data),
		"edited_on": now,
	}).Error; err != nil {
		return false, pkgErrors.Wrap(err, "updating record")
	}

	return true, nil
}

// deleteRecord marks the record deleted, leaving a tombstone for ids the
// server has never seen
func deleteRecord(tx *gorm.DB, entity, id string, now int64) error {
	r, err := findRecord(tx, entity, id)
	if err != nil {
		return err
	}

	if r == nil {
		tombstone := database.Record{
			Entity:   entity,
			ULID:     id,
			Data:     "{}",
			EditedOn: now,
			Deleted:  true,
		}
		if err := tx.Create(&tombstone).Error; err != nil {
			return pkgErrors.Wrap(err, "inserting tombstone")
		}

		return nil
	}

	if r.Deleted {
		return nil
	}

	if err := tx.Model(r).Updates(map[string]interface{}{
		"deleted":   true,
		"edited_on": now,
	}).Error; err != nil {
		return pkgErrors.Wrap(err, "marking record deleted")
	}

	return nil
}
