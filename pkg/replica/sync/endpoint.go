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

package sync

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// ErrRemoteSync is the kind of every error coming from the remote endpoint
var ErrRemoteSync = errors.New("remote sync failed")

// RemoteError is returned when a call to the endpoint fails. It matches
// ErrRemoteSync and unwraps to the error of the endpoint.
type RemoteError struct {
	Entity string
	Op     string
	Err    error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrRemoteSync.Error(), e.Op, e.Entity, e.Err)
}

// Unwrap returns the error of the endpoint
func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrRemoteSync
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteSync
}

// ListResponse is the response of the list call
type ListResponse[T any] struct {
	List []T `json:"list"`
}

// FetchResponse is the response of the fetch call
type FetchResponse[T any] struct {
	Entry T `json:"entry"`
}

// SyncPayload carries the local changes to the server
type SyncPayload[T any] struct {
	Entries []T      `json:"entries"`
	Removed []string `json:"removed"`
}

// SyncResponse carries the records the server accepted and the ids it
// holds as removed
type SyncResponse[T any] struct {
	Entries []T      `json:"entries"`
	Removed []string `json:"removed"`
}

// Endpoint is the remote collection an entity is synchronized with
type Endpoint[T any] interface {
	List(ctx context.Context) (ListResponse[T], error)
	Fetch(ctx context.Context, id string) (FetchResponse[T], error)
	Sync(ctx context.Context, p SyncPayload[T]) (SyncResponse[T], error)
}

// Invalidator drops cached query results under a key
type Invalidator interface {
	Invalidate(key []string)
}

// NoopInvalidator is an Invalidator that does nothing
type NoopInvalidator struct{}

// Invalidate performs no action
func (NoopInvalidator) Invalidate([]string) {}
