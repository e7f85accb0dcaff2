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
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// MustScan scans the given row and fails a test in case of any errors
func MustScan(t *testing.T, message string, row *sql.Row, args ...interface{}) {
	t.Helper()

	err := row.Scan(args...)
	if err != nil {
		t.Fatal(errors.Wrap(errors.Wrap(err, "scanning a row"), message))
	}
}

// MustExec executes the given SQL query and fails a test if an error occurs
func MustExec(t *testing.T, message string, db *DB, query string, args ...interface{}) sql.Result {
	t.Helper()

	result, err := db.Exec(context.Background(), query, args...)
	if err != nil {
		t.Fatal(errors.Wrap(errors.Wrap(err, "executing sql"), message))
	}

	return result
}

// MustGetRow reads the raw row with the given ulid from the table
func MustGetRow(t *testing.T, db *DB, table, ulid string) Row {
	t.Helper()

	query := fmt.Sprintf("SELECT %s FROM %s WHERE ulid = ?", RowColumns, table)
	row, err := ScanRow(db.QueryRow(context.Background(), query, ulid))
	if err != nil {
		t.Fatal(errors.Wrapf(err, "getting row %s from %s", ulid, table))
	}

	return row
}

// MustCount counts the rows of the given table, tombstones included
func MustCount(t *testing.T, db *DB, table string) int {
	t.Helper()

	var count int
	MustScan(t, "counting rows", db.QueryRow(context.Background(), fmt.Sprintf("SELECT count(*) FROM %s", table)), &count)

	return count
}

// InitTestMemoryDB opens an empty shared in-memory database that lives until the test ends
func InitTestMemoryDB(t *testing.T) *DB {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", mustGenerateTestUUID(t))

	db, err := Open(dbName)
	if err != nil {
		t.Fatal(errors.Wrap(err, "opening in-memory database"))
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// InitTestFileDB opens an empty file-based database in a temporary directory
func InitTestFileDB(t *testing.T) (*DB, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), fmt.Sprintf("replica-%s.db", mustGenerateTestUUID(t)))

	db, err := Open(dbPath)
	if err != nil {
		t.Fatal(errors.Wrap(err, "opening database"))
	}

	t.Cleanup(func() { db.Close() })
	return db, dbPath
}

// mustGenerateTestUUID generates a UUID for test databases and fails the test on error
func mustGenerateTestUUID(t *testing.T) string {
	u, err := uuid.NewRandom()
	if err != nil {
		t.Fatal(errors.Wrap(err, "generating UUID for test database"))
	}

	return u.String()
}
