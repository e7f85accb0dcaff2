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

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dnote/replica/pkg/replica/database"
	"github.com/dnote/replica/pkg/replica/notify"
	"github.com/pkg/errors"
)

// CreateParams is the params for Create
type CreateParams[T Record] struct {
	Data T
	// Clean creates the row as already known to the server
	Clean bool
	// ParentULID groups the record under a parent. Defaults to ParentOf(Data)
	// when the store has one.
	ParentULID string
}

// UpdateParams is the params for Update
type UpdateParams[T Record] struct {
	// ID defaults to the id of Data
	ID   string
	Data T
	// Clean marks the row as matching the server
	Clean bool
}

// UpsertOptions controls Upsert. The zero value writes a dirty row and
// overwrites whatever is stored.
type UpsertOptions struct {
	// Clean writes the row as confirmed by the server
	Clean bool
	// SkipDirty leaves an existing dirty row untouched
	SkipDirty bool
	// NotModifiedAfter, when non-zero, leaves an existing dirty row untouched
	// if it was modified after the given timestamp
	NotModifiedAfter int64
}

func (s *Store[T]) parentOfRecord(data T) string {
	if s.parentOf == nil {
		return ""
	}

	return s.parentOf(data)
}

func recordID[T Record](data T) (string, error) {
	id := data.RecordID()
	if id == "" {
		return "", ErrMissingID
	}

	return id, nil
}

// Create inserts a new record. Dirty rows are left unsynced and clean rows
// are stamped as synced now.
func (s *Store[T]) Create(ctx context.Context, p CreateParams[T]) (Entry[T], error) {
	id, err := recordID(p.Data)
	if err != nil {
		return Entry[T]{}, errors.Wrapf(err, "creating %s", s.entity)
	}

	b, err := s.codec.Encode(p.Data)
	if err != nil {
		return Entry[T]{}, errors.Wrapf(err, "encoding %s %s", s.entity, id)
	}

	parentID := p.ParentULID
	if parentID == "" {
		parentID = s.parentOfRecord(p.Data)
	}

	now := s.now()
	var lastSyncedAt sql.NullInt64
	if p.Clean {
		lastSyncedAt = sql.NullInt64{Int64: now, Valid: true}
	}

	query := fmt.Sprintf(`INSERT OR IGNORE INTO %s (ulid, parent_ulid, data, timestamp, last_synced_at, is_dirty, is_deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, s.entity)
	res, err := s.db.Exec(ctx, query, id, parentID, string(b), now, lastSyncedAt, database.Bool(!p.Clean), database.False)
	if err != nil {
		return Entry[T]{}, errors.Wrapf(err, "inserting %s %s", s.entity, id)
	}
	if err := mustAffect(res); err != nil {
		return Entry[T]{}, errors.Wrapf(err, "inserting %s %s", s.entity, id)
	}

	if !p.Clean {
		s.publish(notify.CreateLocal, id)
	}

	return Entry[T]{
		Data:              p.Data,
		IsDirty:           !p.Clean,
		IsCreatedOnServer: p.Clean,
	}, nil
}

// Update rewrites the payload of a visible record and stamps its updatedAt
// field. The returned entry holds the stamped payload.
func (s *Store[T]) Update(ctx context.Context, p UpdateParams[T]) (Entry[T], error) {
	id := p.ID
	if id == "" {
		id = p.Data.RecordID()
	}
	if id == "" {
		return Entry[T]{}, errors.Wrapf(ErrMissingID, "updating %s", s.entity)
	}

	b, err := s.codec.Encode(p.Data)
	if err != nil {
		return Entry[T]{}, errors.Wrapf(err, "encoding %s %s", s.entity, id)
	}

	now := s.now()
	b, err = stamp(b, UpdatedAtField, now)
	if err != nil {
		return Entry[T]{}, err
	}
	data, err := s.codec.Decode(b)
	if err != nil {
		return Entry[T]{}, errors.Wrapf(err, "decoding stamped %s %s", s.entity, id)
	}

	var query string
	var args []interface{}
	if p.Clean {
		query = fmt.Sprintf(`UPDATE %s SET data = ?, timestamp = MAX(?, timestamp + 1), is_dirty = ?, last_synced_at = ?
			WHERE ulid = ? AND is_deleted = ? RETURNING last_synced_at`, s.entity)
		args = []interface{}{string(b), now, database.False, now, id, database.False}
	} else {
		query = fmt.Sprintf(`UPDATE %s SET data = ?, timestamp = MAX(?, timestamp + 1), is_dirty = ?
			WHERE ulid = ? AND is_deleted = ? RETURNING last_synced_at`, s.entity)
		args = []interface{}{string(b), now, database.True, id, database.False}
	}

	var lastSyncedAt sql.NullInt64
	if err := s.db.QueryRow(ctx, query, args...).Scan(&lastSyncedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry[T]{}, errors.Wrapf(ErrWriteFailed, "updating %s %s: no such record", s.entity, id)
		}

		return Entry[T]{}, errors.Wrapf(err, "updating %s %s", s.entity, id)
	}

	if !p.Clean {
		s.publish(notify.UpdateLocal, id)
	}

	return Entry[T]{
		Data:              data,
		IsDirty:           !p.Clean,
		IsCreatedOnServer: lastSyncedAt.Valid,
	}, nil
}

// Upsert inserts the record or updates the existing row with the same id.
// A row found deleted is restored. When the update is skipped by SkipDirty
// or NotModifiedAfter, the returned entry describes the row left in place.
func (s *Store[T]) Upsert(ctx context.Context, data T, opts UpsertOptions) (Entry[T], error) {
	id, err := recordID(data)
	if err != nil {
		return Entry[T]{}, errors.Wrapf(err, "upserting %s", s.entity)
	}

	b, err := s.codec.Encode(data)
	if err != nil {
		return Entry[T]{}, errors.Wrapf(err, "encoding %s %s", s.entity, id)
	}

	now := s.now()
	var lastSyncedAt sql.NullInt64
	if opts.Clean {
		lastSyncedAt = sql.NullInt64{Int64: now, Valid: true}
	}

	set := []string{
		"data = excluded.data",
		"is_dirty = excluded.is_dirty",
		fmt.Sprintf("is_deleted = %d", database.False),
	}
	if opts.Clean {
		set = append(set, "last_synced_at = excluded.last_synced_at")
	} else {
		set = append(set, "timestamp = MAX(excluded.timestamp, timestamp + 1)")
	}
	if s.parentOf != nil {
		set = append(set, "parent_ulid = excluded.parent_ulid")
	}

	args := []interface{}{id, s.parentOfRecord(data), string(b), now, lastSyncedAt, database.Bool(!opts.Clean), database.False}

	var where string
	if opts.SkipDirty {
		where = fmt.Sprintf(" WHERE is_dirty = %d", database.False)
	} else if opts.NotModifiedAfter > 0 {
		where = fmt.Sprintf(" WHERE is_dirty = %d OR timestamp <= ?", database.False)
		args = append(args, opts.NotModifiedAfter)
	}

	query := fmt.Sprintf(`INSERT INTO %s (ulid, parent_ulid, data, timestamp, last_synced_at, is_dirty, is_deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ulid) DO UPDATE SET %s%s
		RETURNING last_synced_at`, s.entity, strings.Join(set, ", "), where)

	var synced sql.NullInt64
	err = s.db.QueryRow(ctx, query, args...).Scan(&synced)
	if errors.Is(err, sql.ErrNoRows) {
		return s.getRow(ctx, id)
	}
	if err != nil {
		return Entry[T]{}, errors.Wrapf(err, "upserting %s %s", s.entity, id)
	}

	if !opts.Clean {
		s.publish(notify.UpdateLocal, id)
	}

	return Entry[T]{
		Data:              data,
		IsDirty:           !opts.Clean,
		IsCreatedOnServer: synced.Valid,
	}, nil
}

// getRow returns the row with the given id whether or not it is deleted
func (s *Store[T]) getRow(ctx context.Context, id string) (Entry[T], error) {
	rows, err := s.selectRows(ctx, "ulid = ?", id)
	if err != nil {
		return Entry[T]{}, err
	}
	if len(rows) == 0 {
		return Entry[T]{}, errors.Wrapf(ErrNotFound, "%s %s", s.entity, id)
	}

	return s.toEntry(rows[0])
}

// Delete tombstones a visible record and marks it dirty so that the removal
// is pushed on the next sync
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET is_deleted = ?, is_dirty = ?, timestamp = MAX(?, timestamp + 1)
		WHERE ulid = ? AND is_deleted = ?`, s.entity)
	res, err := s.db.Exec(ctx, query, database.True, database.True, s.now(), id, database.False)
	if err != nil {
		return errors.Wrapf(err, "deleting %s %s", s.entity, id)
	}
	if err := mustAffect(res); err != nil {
		return errors.Wrapf(err, "deleting %s %s", s.entity, id)
	}

	s.publish(notify.DeleteLocal, id)

	return nil
}

// DeleteByParent tombstones every visible record grouped under the parent
// and returns their ids
func (s *Store[T]) DeleteByParent(ctx context.Context, parentID string) ([]string, error) {
	query := fmt.Sprintf(`UPDATE %s SET is_deleted = ?, is_dirty = ?, timestamp = MAX(?, timestamp + 1)
		WHERE parent_ulid = ? AND is_deleted = ? RETURNING ulid`, s.entity)
	ids, err := s.returningIDs(ctx, query, database.True, database.True, s.now(), parentID, database.False)
	if err != nil {
		return nil, errors.Wrapf(err, "deleting %s by parent %s", s.entity, parentID)
	}

	s.publish(notify.DeleteLocal, ids...)

	return ids, nil
}

func (s *Store[T]) returningIDs(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scanning id")
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func mustAffect(res interface{ RowsAffected() (int64, error) }) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "counting affected rows")
	}
	if n == 0 {
		return ErrWriteFailed
	}

	return nil
}
