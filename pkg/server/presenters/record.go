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

// Package presenters converts stored records into response payloads
package presenters

import (
	"encoding/json"

	"github.com/dnote/replica/pkg/server/database"
)

// PresentRecord returns the payload of the record as sent to clients
func PresentRecord(r database.Record) json.RawMessage {
	return json.RawMessage(r.Data)
}

// PresentRecords presents records. The result is never nil.
func PresentRecords(records []database.Record) []json.RawMessage {
	ret := make([]json.RawMessage, 0, len(records))

	for _, r := range records {
		ret = append(ret, PresentRecord(r))
	}

	return ret
}
