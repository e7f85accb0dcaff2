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
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
)

// NewULID returns a new record id. Ids generated by a process are
// monotonically increasing.
func NewULID() string {
	return ulid.Make().String()
}

// NewULIDAt returns a new record id for the given time
func NewULIDAt(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), ulid.DefaultEntropy()).String()
}

// ULIDTime returns the time encoded in a record id
func ULIDTime(id string) (time.Time, error) {
	u, err := ulid.ParseStrict(id)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parsing ulid '%s'", id)
	}

	return ulid.Time(u.Time()), nil
}
