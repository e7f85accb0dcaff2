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
	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when no visible record has the requested id
	ErrNotFound = errors.New("record not found")
	// ErrWriteFailed is returned when a write matched no row
	ErrWriteFailed = errors.New("write failed")
	// ErrMissingID is returned when a record to be written has no id
	ErrMissingID = errors.New("record has no id")
)
