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

// Package sync reconciles the local store of an entity with its remote endpoint
package sync

import (
	"context"

	"github.com/dnote/replica/pkg/cli/log"
	"github.com/dnote/replica/pkg/replica/notify"
	"github.com/dnote/replica/pkg/replica/store"
	"github.com/pkg/errors"
)

// Options configures a Coordinator
type Options[T store.Record] struct {
	// Invalidator is told about the records a sync touched. Defaults to NoopInvalidator.
	Invalidator Invalidator
	// QueryKey is the first element of every invalidated key. Defaults to the entity name.
	QueryKey string
	// Prepare transforms each dirty record before it is sent
	Prepare func(T) T
}

// Coordinator synchronizes one entity. It does not lock: callers must not
// run two syncs of the same entity at the same time. Local writes may
// happen while a sync is in flight.
type Coordinator[T store.Record] struct {
	store       *store.Store[T]
	endpoint    Endpoint[T]
	invalidator Invalidator
	queryKey    string
	prepare     func(T) T
}

// New returns a coordinator between the store and the endpoint
func New[T store.Record](s *store.Store[T], e Endpoint[T], opts Options[T]) *Coordinator[T] {
	c := &Coordinator[T]{
		store:       s,
		endpoint:    e,
		invalidator: opts.Invalidator,
		queryKey:    opts.QueryKey,
		prepare:     opts.Prepare,
	}
	if c.invalidator == nil {
		c.invalidator = NoopInvalidator{}
	}
	if c.queryKey == "" {
		c.queryKey = s.Entity()
	}

	return c
}

// Store returns the store being synchronized
func (c *Coordinator[T]) Store() *store.Store[T] {
	return c.store
}

func (c *Coordinator[T]) remoteErr(op string, err error) error {
	return &RemoteError{Entity: c.store.Entity(), Op: op, Err: err}
}

func (c *Coordinator[T]) publish(event notify.Event, ids []string) {
	if len(ids) == 0 {
		return
	}

	c.store.Notifier().Notify(c.store.Entity(), event, ids...)
}

// Sync pushes the local changes, then pulls the whole collection if the
// local store was empty or all is set. It reports whether anything was synced.
func (c *Coordinator[T]) Sync(ctx context.Context, all bool) (bool, error) {
	count, err := c.store.Count(ctx)
	if err != nil {
		return false, errors.Wrap(err, "counting local records")
	}

	synced, err := c.SyncDirty(ctx, true)
	if err != nil {
		return false, errors.Wrap(err, "pushing local changes")
	}

	if count == 0 || all {
		if err := c.FullRefresh(ctx); err != nil {
			return false, errors.Wrap(err, "refreshing")
		}

		synced = true
	}

	return synced, nil
}

// SyncDirty sends the dirty and deleted records to the server and applies
// its response. It returns false without calling the endpoint when there is
// nothing to send.
//
// Rows modified locally while the request was in flight stay dirty so that
// the next sync sends the newer version.
func (c *Coordinator[T]) SyncDirty(ctx context.Context, invalidate bool) (bool, error) {
	outbox, err := c.store.Outbox(ctx)
	if err != nil {
		return false, err
	}
	if outbox.IsEmpty() {
		log.Debug("nothing to sync for %s\n", c.store.Entity())
		return false, nil
	}

	entries := outbox.Entries
	if c.prepare != nil {
		entries = make([]T, 0, len(outbox.Entries))
		for _, e := range outbox.Entries {
			entries = append(entries, c.prepare(e))
		}
	}

	log.Debug("sending %d entries and %d removals for %s\n", len(entries), len(outbox.Removed), c.store.Entity())

	resp, err := c.endpoint.Sync(ctx, SyncPayload[T]{
		Entries: entries,
		Removed: outbox.Removed,
	})
	if err != nil {
		return false, c.remoteErr("sync", err)
	}

	var synced, removed []string
	err = c.store.Tx(ctx, func(tx *store.Store[T]) error {
		ids, err := tx.PurgeByIDs(ctx, resp.Removed)
		if err != nil {
			return errors.Wrap(err, "purging removed records")
		}
		removed = ids

		for _, e := range resp.Entries {
			id := e.RecordID()

			opts := store.UpsertOptions{Clean: true, SkipDirty: true}
			if version, ok := outbox.Versions[id]; ok {
				opts = store.UpsertOptions{Clean: true, NotModifiedAfter: version}
			}

			entry, err := tx.Upsert(ctx, e, opts)
			if err != nil {
				return errors.Wrapf(err, "saving synced record %s", id)
			}
			if !entry.IsDirty {
				synced = append(synced, id)
			}
		}

		return nil
	})
	if err != nil {
		return false, errors.Wrap(err, "applying sync response")
	}

	log.Debug("synced %d and removed %d %s\n", len(synced), len(removed), c.store.Entity())

	c.publish(notify.DeletedSynced, removed)
	c.publish(notify.Synced, synced)

	if invalidate {
		ids := make([]string, 0, len(resp.Entries)+len(resp.Removed))
		for _, e := range resp.Entries {
			ids = append(ids, e.RecordID())
		}
		ids = append(ids, resp.Removed...)

		c.Invalidate(ids...)
	}

	return true, nil
}

// FullRefresh replaces the local collection with the server's. Dirty rows
// are neither overwritten nor purged.
func (c *Coordinator[T]) FullRefresh(ctx context.Context) error {
	resp, err := c.endpoint.List(ctx)
	if err != nil {
		return c.remoteErr("list", err)
	}

	var synced, purged []string
	err = c.store.Tx(ctx, func(tx *store.Store[T]) error {
		ids := make([]string, 0, len(resp.List))

		for _, e := range resp.List {
			id := e.RecordID()
			ids = append(ids, id)

			entry, err := tx.Upsert(ctx, e, store.UpsertOptions{Clean: true, SkipDirty: true})
			if err != nil {
				return errors.Wrapf(err, "saving record %s", id)
			}
			if !entry.IsDirty {
				synced = append(synced, id)
			}
		}

		var err error
		purged, err = tx.PurgeCleanOtherThanIDs(ctx, ids)
		if err != nil {
			return errors.Wrap(err, "purging records missing on the server")
		}

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "applying server list")
	}

	log.Debug("refreshed %d and purged %d %s\n", len(synced), len(purged), c.store.Entity())

	c.publish(notify.DeletedSynced, purged)
	c.publish(notify.Synced, synced)
	c.Invalidate()

	return nil
}

// Refresh pulls a single record from the server. A dirty local row is kept.
func (c *Coordinator[T]) Refresh(ctx context.Context, id string) (store.Entry[T], error) {
	resp, err := c.endpoint.Fetch(ctx, id)
	if err != nil {
		return store.Entry[T]{}, c.remoteErr("fetch", err)
	}

	entry, err := c.store.Upsert(ctx, resp.Entry, store.UpsertOptions{Clean: true, SkipDirty: true})
	if err != nil {
		return store.Entry[T]{}, errors.Wrapf(err, "saving record %s", id)
	}

	if !entry.IsDirty {
		c.publish(notify.Synced, []string{id})
	}
	c.Invalidate(id)

	return entry, nil
}

// Invalidate drops the cached queries of the entity and of each given record
func (c *Coordinator[T]) Invalidate(ids ...string) {
	c.invalidator.Invalidate([]string{c.queryKey})

	for _, id := range ids {
		c.invalidator.Invalidate([]string{c.queryKey, id})
	}
}
