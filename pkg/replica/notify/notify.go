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

// Package notify is an in-process publish/subscribe registry through which
// the replica announces changes to its entities.
package notify

import (
	"sync"
)

// Event is the kind of change being announced
type Event int

const (
	// All matches every event of an entity when subscribed to. It is never published.
	All Event = iota
	// CreateLocal is published after a record is created locally
	CreateLocal
	// UpdateLocal is published after a record is updated locally
	UpdateLocal
	// DeleteLocal is published after a record is tombstoned locally
	DeleteLocal
	// Synced is published after the server confirmed or sent records
	Synced
	// DeletedSynced is published after records removed on the server are purged
	DeletedSynced
)

var eventNames = map[Event]string{
	All:           "all",
	CreateLocal:   "create_local",
	UpdateLocal:   "update_local",
	DeleteLocal:   "delete_local",
	Synced:        "synced",
	DeletedSynced: "deleted_synced",
}

func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}

	return "unknown"
}

// Change is passed to the subscribers of an event
type Change struct {
	Entity string
	Event  Event
	IDs    []string
}

// Callback receives changes. It runs on the goroutine that published the change.
type Callback func(Change)

type key struct {
	entity string
	event  Event
}

type subscription struct {
	id uint64
	cb Callback
}

// Registry maps (entity, event) pairs to their subscribers
type Registry struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[key][]subscription
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{
		subs: map[key][]subscription{},
	}
}

// Subscribe registers cb for the given entity and event and returns a
// function that removes it. Subscribing to All receives every event of the entity.
func (r *Registry) Subscribe(entity string, event Event, cb Callback) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	k := key{entity: entity, event: event}
	r.subs[k] = append(r.subs[k], subscription{id: id, cb: cb})

	var once sync.Once
	return func() {
		once.Do(func() {
			r.unsubscribe(k, id)
		})
	}
}

func (r *Registry) unsubscribe(k key, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs := r.subs[k]
	for i, s := range subs {
		if s.id == id {
			r.subs[k] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}

	if len(r.subs[k]) == 0 {
		delete(r.subs, k)
	}
}

// Notify calls every subscriber of the entity and event synchronously. A
// change with no subscriber is dropped.
func (r *Registry) Notify(entity string, event Event, ids ...string) {
	r.mu.RLock()
	var targets []Callback
	for _, s := range r.subs[key{entity: entity, event: event}] {
		targets = append(targets, s.cb)
	}
	if event != All {
		for _, s := range r.subs[key{entity: entity, event: All}] {
			targets = append(targets, s.cb)
		}
	}
	r.mu.RUnlock()

	c := Change{Entity: entity, Event: event, IDs: ids}
	for _, cb := range targets {
		cb(c)
	}
}

// Count returns the number of subscribers of the entity and event
func (r *Registry) Count(entity string, event Event) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.subs[key{entity: entity, event: event}])
}

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// Default returns the process-wide registry, creating it on first use
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})

	return defaultRegistry
}

// Subscribe registers cb on the default registry
func Subscribe(entity string, event Event, cb Callback) func() {
	return Default().Subscribe(entity, event, cb)
}

// Notify publishes a change on the default registry
func Notify(entity string, event Event, ids ...string) {
	Default().Notify(entity, event, ids...)
}
