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

// Package cache holds the results of queries over the replica until a
// change invalidates them
package cache

import (
	"strings"
	"sync"

	"github.com/dnote/replica/pkg/replica/notify"
)

const keySep = "\x00"

type entry struct {
	key   []string
	value interface{}
}

// Cache is an in-memory query result cache keyed by string slices. It is
// safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// New returns an empty cache
func New() *Cache {
	return &Cache{
		entries: map[string]entry{},
	}
}

func encodeKey(key []string) string {
	return strings.Join(key, keySep)
}

func hasPrefix(key, prefix []string) bool {
	if len(prefix) > len(key) {
		return false
	}

	for i, p := range prefix {
		if key[i] != p {
			return false
		}
	}

	return true
}

// Get returns the value cached under the key
func (c *Cache) Get(key []string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[encodeKey(key)]
	if !ok {
		return nil, false
	}

	return e.value, true
}

// Set caches the value under the key
func (c *Cache) Set(key []string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := append([]string(nil), key...)
	c.entries[encodeKey(k)] = entry{key: k, value: value}
}

// Invalidate drops the key and every key it is a prefix of
func (c *Cache) Invalidate(key []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range c.entries {
		if hasPrefix(e.key, key) {
			delete(c.entries, k)
		}
	}
}

// Len returns the number of cached values
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Fetch returns the value cached under the key, computing and caching it
// with fn on a miss. Errors are not cached.
func Fetch[V any](c *Cache, key []string, fn func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		if ret, ok := v.(V); ok {
			return ret, nil
		}
	}

	ret, err := fn()
	if err != nil {
		return ret, err
	}

	c.Set(key, ret)
	return ret, nil
}

// Watch drops every query under queryKey whenever the registry announces a
// change to the entity. It returns a function that stops watching.
func (c *Cache) Watch(r *notify.Registry, entity, queryKey string) func() {
	return r.Subscribe(entity, notify.All, func(notify.Change) {
		c.Invalidate([]string{queryKey})
	})
}
