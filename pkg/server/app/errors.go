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

package app

import (
	"github.com/pkg/errors"
)

var (
	// ErrNotFound is an error for a record that does not exist or was deleted
	ErrNotFound = errors.New("not found")
	// ErrInvalidEntity is an error for an entity name that is not a valid table name
	ErrInvalidEntity = errors.New("invalid entity name")
	// ErrUnknownEntity is an error for an entity the server is not configured to serve
	ErrUnknownEntity = errors.New("unknown entity")
	// ErrInvalidPayload is an error for a pushed entry that is not a JSON object with a ulid
	ErrInvalidPayload = errors.New("invalid payload")
)
