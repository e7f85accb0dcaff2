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
	"database/sql"
)

const (
	// True is the integer form of a true boolean column
	True = 1
	// False is the integer form of a false boolean column
	False = 0
)

// Row is a single record of an entity table
type Row struct {
	ULID         string
	ParentULID   string
	Data         string
	Timestamp    int64
	LastSyncedAt sql.NullInt64
	Dirty        bool
	Deleted      bool
}

// RowColumns lists the columns of an entity table in the order ScanRow reads them
const RowColumns = "ulid, parent_ulid, data, timestamp, last_synced_at, is_dirty, is_deleted"

// Scanner is implemented by *sql.Row and *sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// ScanRow scans a row selected with RowColumns
func ScanRow(s Scanner) (Row, error) {
	var r Row
	var parent sql.NullString
	var dirty, deleted int

	if err := s.Scan(&r.ULID, &parent, &r.Data, &r.Timestamp, &r.LastSyncedAt, &dirty, &deleted); err != nil {
		return r, err
	}

	r.ParentULID = parent.String
	r.Dirty = dirty == True
	r.Deleted = deleted == True

	return r, nil
}

// CreatedOnServer reports whether the row has been confirmed by the server at least once
func (r Row) CreatedOnServer() bool {
	return r.LastSyncedAt.Valid
}

// Bool encodes a boolean as the integer stored in the table
func Bool(b bool) int {
	if b {
		return True
	}

	return False
}
