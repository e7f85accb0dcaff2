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

// Package schema defines the table layout shared by every entity of the replica
// and creates it idempotently.
package schema

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/dnote/replica/pkg/cli/log"
	"github.com/dnote/replica/pkg/replica/database"
	"github.com/pkg/errors"
)

// ErrSchemaInit is the kind of every error returned while creating or migrating a table
var ErrSchemaInit = errors.New("initializing schema")

// ErrInvalidEntity is returned for entity names that cannot be used as a table name
var ErrInvalidEntity = errors.New("invalid entity name")

var entityNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Column is a column that may be added to an existing entity table
type Column struct {
	Name       string
	Definition string
}

// backfill lists the columns added after the first version of the table.
// Tables created before a column existed get it through ALTER TABLE.
var backfill = []Column{
	{Name: "parent_ulid", Definition: "text DEFAULT ''"},
}

// ValidateEntity checks that the entity name is safe to interpolate as a table name
func ValidateEntity(entity string) error {
	if !entityNamePattern.MatchString(entity) {
		return errors.Wrapf(ErrInvalidEntity, "'%s'", entity)
	}

	return nil
}

// TimestampIndex returns the name of the recency index of the entity table
func TimestampIndex(entity string) string {
	return fmt.Sprintf("%s_timestamp", entity)
}

// ParentIndex returns the name of the parent index of the entity table
func ParentIndex(entity string) string {
	return fmt.Sprintf("%s_parent_ulid", entity)
}

func createTableSQL(entity string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s
		(
			parent_ulid text DEFAULT '',
			ulid text PRIMARY KEY,
			data text,
			timestamp integer NOT NULL DEFAULT (CAST(strftime('%%s', 'now') AS integer) * 1000),
			last_synced_at integer,
			is_dirty integer NOT NULL,
			is_deleted integer NOT NULL DEFAULT 0
		)`, entity)
}

// isAlreadyExists reports whether the error means the object being created is already there
func isAlreadyExists(err error) bool {
	msg := err.Error()

	return strings.Contains(msg, "duplicate column name") || strings.Contains(msg, "already exists")
}

func schemaErr(err error, msg string) error {
	return errors.Wrapf(ErrSchemaInit, "%s: %v", msg, err)
}

// AddColumn adds a column to the entity table. A column that already exists
// counts as success.
func AddColumn(ctx context.Context, db *database.DB, entity string, c Column) error {
	_, err := db.Exec(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", entity, c.Name, c.Definition))
	if err == nil {
		log.Debug("added column %s to %s\n", c.Name, entity)
		return nil
	}
	if isAlreadyExists(err) {
		return nil
	}

	return schemaErr(err, fmt.Sprintf("adding column %s to %s", c.Name, entity))
}

// InitTable creates the table and indexes of the given entity if they do not
// exist, and backfills columns missing from older tables.
func InitTable(ctx context.Context, db *database.DB, entity string) error {
	if err := ValidateEntity(entity); err != nil {
		return errors.Wrap(ErrSchemaInit, err.Error())
	}

	log.Debug("initializing table %s\n", entity)

	if _, err := db.Exec(ctx, createTableSQL(entity)); err != nil {
		return schemaErr(err, fmt.Sprintf("creating %s table", entity))
	}

	for _, c := range backfill {
		if err := AddColumn(ctx, db, entity, c); err != nil {
			return err
		}
	}

	indexes := []struct {
		name   string
		column string
	}{
		{name: TimestampIndex(entity), column: "timestamp"},
		{name: ParentIndex(entity), column: "parent_ulid"},
	}
	for _, idx := range indexes {
		q := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)", idx.name, entity, idx.column)
		if _, err := db.Exec(ctx, q); err != nil && !isAlreadyExists(err) {
			return schemaErr(err, fmt.Sprintf("creating index %s", idx.name))
		}
	}

	return nil
}

// InitTables runs InitTable for every entity in a single transaction
func InitTables(ctx context.Context, db *database.DB, entities []string) error {
	return db.WithTx(ctx, func(tx *database.DB) error {
		for _, entity := range entities {
			if err := InitTable(ctx, tx, entity); err != nil {
				return err
			}
		}

		return nil
	})
}
