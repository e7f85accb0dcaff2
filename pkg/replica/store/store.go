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

// Package store keeps the local rows of one entity and the bookkeeping that
// tells the sync coordinator what diverges from the server.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dnote/replica/pkg/clock"
	"github.com/dnote/replica/pkg/replica/database"
	"github.com/dnote/replica/pkg/replica/notify"
	"github.com/dnote/replica/pkg/replica/schema"
	"github.com/pkg/errors"
)

// Record is implemented by every payload kept in a store
type Record interface {
	RecordID() string
}

// Entry is a record annotated with its sync status
type Entry[T any] struct {
	Data              T
	IsDirty           bool
	IsCreatedOnServer bool
}

// Options configures a store. Zero values select the defaults.
type Options[T Record] struct {
	// Codec serializes payloads. Defaults to JSONCodec.
	Codec Codec[T]
	// ParentOf returns the grouping key of a record. Upsert uses it to
	// populate parent_ulid for rows coming from the server.
	ParentOf func(T) string
	// Clock stamps rows. Defaults to the real clock.
	Clock clock.Clock
	// Notifier receives local changes. Defaults to notify.Default().
	Notifier *notify.Registry
}

type pendingChange struct {
	event notify.Event
	ids   []string
}

// Store performs CRUD on the table of one entity
type Store[T Record] struct {
	db       *database.DB
	entity   string
	codec    Codec[T]
	parentOf func(T) string
	clock    clock.Clock
	notifier *notify.Registry

	// pending buffers changes made in a transaction until it commits
	pending *[]pendingChange
}

// New returns a store over the table of the given entity. The table is not
// created; call Init or schema.InitTable first.
func New[T Record](db *database.DB, entity string, opts Options[T]) (*Store[T], error) {
	if err := schema.ValidateEntity(entity); err != nil {
		return nil, err
	}

	s := &Store[T]{
		db:       db,
		entity:   entity,
		codec:    opts.Codec,
		parentOf: opts.ParentOf,
		clock:    opts.Clock,
		notifier: opts.Notifier,
	}
	if s.codec == nil {
		s.codec = JSONCodec[T]{}
	}
	if s.clock == nil {
		s.clock = clock.New()
	}
	if s.notifier == nil {
		s.notifier = notify.Default()
	}

	return s, nil
}

// Entity returns the name of the entity
func (s *Store[T]) Entity() string {
	return s.entity
}

// Notifier returns the registry the store publishes to
func (s *Store[T]) Notifier() *notify.Registry {
	return s.notifier
}

// Clock returns the clock the store stamps rows with
func (s *Store[T]) Clock() clock.Clock {
	return s.clock
}

// Init creates the table of the entity if it does not exist
func (s *Store[T]) Init(ctx context.Context) error {
	return schema.InitTable(ctx, s.db, s.entity)
}

// Tx runs fn with a store bound to a single transaction. Changes are
// published after the transaction commits, and dropped if it rolls back.
func (s *Store[T]) Tx(ctx context.Context, fn func(tx *Store[T]) error) error {
	if s.db.IsTx() {
		return fn(s)
	}

	var pending []pendingChange
	err := s.db.WithTx(ctx, func(db *database.DB) error {
		txStore := *s
		txStore.db = db
		txStore.pending = &pending

		return fn(&txStore)
	})
	if err != nil {
		return err
	}

	for _, c := range pending {
		s.notifier.Notify(s.entity, c.event, c.ids...)
	}

	return nil
}

func (s *Store[T]) publish(event notify.Event, ids ...string) {
	if len(ids) == 0 {
		return
	}

	if s.pending != nil {
		*s.pending = append(*s.pending, pendingChange{event: event, ids: ids})
		return
	}

	s.notifier.Notify(s.entity, event, ids...)
}

func (s *Store[T]) now() int64 {
	return clock.Millis(s.clock)
}

// idList encodes ids as a JSON array to be expanded with json_each
func idList(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}

	b, err := json.Marshal(ids)
	if err != nil {
		return "", errors.Wrap(err, "encoding ids")
	}

	return string(b), nil
}

func (s *Store[T]) selectRows(ctx context.Context, where string, args ...interface{}) ([]database.Row, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY timestamp DESC", database.RowColumns, s.entity, where)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "querying %s", s.entity)
	}
	defer rows.Close()

	ret := []database.Row{}
	for rows.Next() {
		r, err := database.ScanRow(rows)
		if err != nil {
			return nil, errors.Wrapf(err, "scanning %s row", s.entity)
		}

		ret = append(ret, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "iterating %s rows", s.entity)
	}

	return ret, nil
}

func (s *Store[T]) toEntry(r database.Row) (Entry[T], error) {
	data, err := s.codec.Decode([]byte(r.Data))
	if err != nil {
		return Entry[T]{}, errors.Wrapf(err, "decoding %s %s", s.entity, r.ULID)
	}

	return Entry[T]{
		Data:              data,
		IsDirty:           r.Dirty,
		IsCreatedOnServer: r.CreatedOnServer(),
	}, nil
}

func (s *Store[T]) toEntries(rows []database.Row) ([]Entry[T], error) {
	ret := make([]Entry[T], 0, len(rows))
	for _, r := range rows {
		e, err := s.toEntry(r)
		if err != nil {
			return nil, err
		}

		ret = append(ret, e)
	}

	return ret, nil
}

func (s *Store[T]) toRecords(rows []database.Row) ([]T, error) {
	ret := make([]T, 0, len(rows))
	for _, r := range rows {
		data, err := s.codec.Decode([]byte(r.Data))
		if err != nil {
			return nil, errors.Wrapf(err, "decoding %s %s", s.entity, r.ULID)
		}

		ret = append(ret, data)
	}

	return ret, nil
}

func (s *Store[T]) listEntries(ctx context.Context, where string, args ...interface{}) ([]Entry[T], error) {
	rows, err := s.selectRows(ctx, where, args...)
	if err != nil {
		return nil, err
	}

	return s.toEntries(rows)
}

func (s *Store[T]) listRecords(ctx context.Context, where string, args ...interface{}) ([]T, error) {
	rows, err := s.selectRows(ctx, where, args...)
	if err != nil {
		return nil, err
	}

	return s.toRecords(rows)
}

// List returns the visible records, most recently modified first
func (s *Store[T]) List(ctx context.Context) ([]Entry[T], error) {
	return s.listEntries(ctx, "is_deleted = ?", database.False)
}

// ListAll returns every record including the deleted ones
func (s *Store[T]) ListAll(ctx context.Context) ([]Entry[T], error) {
	return s.listEntries(ctx, "1 = 1")
}

// Count returns the number of visible records
func (s *Store[T]) Count(ctx context.Context) (int, error) {
	var count int
	query := fmt.Sprintf("SELECT count(*) FROM %s WHERE is_deleted = ?", s.entity)
	if err := s.db.QueryRow(ctx, query, database.False).Scan(&count); err != nil {
		return 0, errors.Wrapf(err, "counting %s", s.entity)
	}

	return count, nil
}

// Get returns the visible record with the given id
func (s *Store[T]) Get(ctx context.Context, id string) (Entry[T], error) {
	rows, err := s.selectRows(ctx, "ulid = ? AND is_deleted = ?", id, database.False)
	if err != nil {
		return Entry[T]{}, err
	}
	if len(rows) == 0 {
		return Entry[T]{}, errors.Wrapf(ErrNotFound, "%s %s", s.entity, id)
	}

	return s.toEntry(rows[0])
}

// GetMany returns the visible records among the given ids. Missing ids are skipped.
func (s *Store[T]) GetMany(ctx context.Context, ids []string) ([]Entry[T], error) {
	list, err := idList(ids)
	if err != nil {
		return nil, err
	}

	return s.listEntries(ctx, "ulid IN (SELECT value FROM json_each(?)) AND is_deleted = ?", list, database.False)
}

// ListByParent returns the visible records grouped under the given parent
func (s *Store[T]) ListByParent(ctx context.Context, parentID string) ([]Entry[T], error) {
	return s.listEntries(ctx, "parent_ulid = ? AND is_deleted = ?", parentID, database.False)
}

// CountByParent returns the number of visible records grouped under the given parent
func (s *Store[T]) CountByParent(ctx context.Context, parentID string) (int, error) {
	var count int
	query := fmt.Sprintf("SELECT count(*) FROM %s WHERE parent_ulid = ? AND is_deleted = ?", s.entity)
	if err := s.db.QueryRow(ctx, query, parentID, database.False).Scan(&count); err != nil {
		return 0, errors.Wrapf(err, "counting %s by parent", s.entity)
	}

	return count, nil
}

// ListDirty returns the payloads of the visible records changed since the last sync
func (s *Store[T]) ListDirty(ctx context.Context) ([]T, error) {
	return s.listRecords(ctx, "is_dirty = ? AND is_deleted = ?", database.True, database.False)
}

// ListDeleted returns the payloads of the deleted records not yet purged
func (s *Store[T]) ListDeleted(ctx context.Context) ([]T, error) {
	return s.listRecords(ctx, "is_deleted = ?", database.True)
}

// ListCreated returns the dirty records that were never synced
func (s *Store[T]) ListCreated(ctx context.Context) ([]T, error) {
	return s.listRecords(ctx, "is_dirty = ? AND is_deleted = ? AND last_synced_at IS NULL", database.True, database.False)
}

// ListModified returns the dirty records that were synced before
func (s *Store[T]) ListModified(ctx context.Context) ([]T, error) {
	return s.listRecords(ctx, "is_dirty = ? AND is_deleted = ? AND last_synced_at IS NOT NULL", database.True, database.False)
}

// Outbox holds the local changes to be pushed to the server
type Outbox[T any] struct {
	// Entries are the dirty visible records
	Entries []T
	// Removed are the ids of the deleted records
	Removed []string
	// Versions maps the id of every collected row to its timestamp at collection time
	Versions map[string]int64
}

// IsEmpty reports whether there is nothing to push
func (o Outbox[T]) IsEmpty() bool {
	return len(o.Entries) == 0 && len(o.Removed) == 0
}

// Outbox collects the dirty and deleted rows in a single read
func (s *Store[T]) Outbox(ctx context.Context) (Outbox[T], error) {
	rows, err := s.selectRows(ctx, "is_dirty = ? OR is_deleted = ?", database.True, database.True)
	if err != nil {
		return Outbox[T]{}, errors.Wrap(err, "collecting local changes")
	}

	ret := Outbox[T]{
		Entries:  []T{},
		Removed:  []string{},
		Versions: map[string]int64{},
	}
	for _, r := range rows {
		ret.Versions[r.ULID] = r.Timestamp

		if r.Deleted {
			ret.Removed = append(ret.Removed, r.ULID)
			continue
		}

		data, err := s.codec.Decode([]byte(r.Data))
		if err != nil {
			return Outbox[T]{}, errors.Wrapf(err, "decoding %s %s", s.entity, r.ULID)
		}
		ret.Entries = append(ret.Entries, data)
	}

	return ret, nil
}
