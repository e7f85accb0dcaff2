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
	"fmt"

	"github.com/dnote/replica/pkg/cli/log"
	"github.com/dnote/replica/pkg/replica/database"
	"github.com/pkg/errors"
)

// Purge operations remove rows for good. They return the ids removed and
// publish nothing; the sync coordinator announces removals confirmed by the server.

func (s *Store[T]) purge(ctx context.Context, where string, args ...interface{}) ([]string, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s RETURNING ulid", s.entity, where)

	ids, err := s.returningIDs(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "purging %s", s.entity)
	}

	log.Debug("purged %d %s\n", len(ids), s.entity)

	return ids, nil
}

// Purge removes the row with the given id
func (s *Store[T]) Purge(ctx context.Context, id string) error {
	_, err := s.purge(ctx, "ulid = ?", id)
	return err
}

// PurgeByIDs removes the rows with the given ids
func (s *Store[T]) PurgeByIDs(ctx context.Context, ids []string) ([]string, error) {
	list, err := idList(ids)
	if err != nil {
		return nil, err
	}

	return s.purge(ctx, "ulid IN (SELECT value FROM json_each(?))", list)
}

// PurgeOtherThanIDs removes every row whose id is not among the given ids
func (s *Store[T]) PurgeOtherThanIDs(ctx context.Context, ids []string) ([]string, error) {
	list, err := idList(ids)
	if err != nil {
		return nil, err
	}

	return s.purge(ctx, "ulid NOT IN (SELECT value FROM json_each(?))", list)
}

// PurgeCleanOtherThanIDs removes every clean row whose id is not among the
// given ids. Dirty rows hold local changes not yet accepted by the server and are kept.
func (s *Store[T]) PurgeCleanOtherThanIDs(ctx context.Context, ids []string) ([]string, error) {
	list, err := idList(ids)
	if err != nil {
		return nil, err
	}

	return s.purge(ctx, "ulid NOT IN (SELECT value FROM json_each(?)) AND is_dirty = ?", list, database.False)
}

// PurgeAll removes every row
func (s *Store[T]) PurgeAll(ctx context.Context) ([]string, error) {
	return s.purge(ctx, "1 = 1")
}

// PurgeByParent removes every row grouped under the parent
func (s *Store[T]) PurgeByParent(ctx context.Context, parentID string) ([]string, error) {
	return s.purge(ctx, "parent_ulid = ?", parentID)
}

// PurgeDeleted removes every tombstoned row
func (s *Store[T]) PurgeDeleted(ctx context.Context) ([]string, error) {
	return s.purge(ctx, "is_deleted = ?", database.True)
}
