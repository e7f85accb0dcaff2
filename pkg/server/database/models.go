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

package database

import (
	"time"
)

// Model is the base model definition
type Model struct {
	ID        int       `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Record is the server copy of one replicated record. Data is the payload as
// last pushed by a client. A deleted record keeps its row so that later pushes
// of the same id are reported as removed instead of resurrecting it.
type Record struct {
	Model
	Entity   string `json:"entity" gorm:"uniqueIndex:idx_records_entity_ulid;type:text;not null"`
	ULID     string `json:"ulid" gorm:"uniqueIndex:idx_records_entity_ulid;type:text;not null"`
	Data     string `json:"data" gorm:"type:text;not null"`
	EditedOn int64  `json:"edited_on" gorm:"index"`
	Deleted  bool   `json:"-" gorm:"default:false;not null"`
}
