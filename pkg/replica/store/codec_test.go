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
	"encoding/json"
	"testing"
	"time"

	"github.com/dnote/replica/pkg/assert"
	"github.com/pkg/errors"
)

func TestDocumentJSON(t *testing.T) {
	type payload struct {
		Entries []Document `json:"entries"`
	}

	b, err := json.Marshal(payload{Entries: []Document{Document(`{"ulid":"a"}`)}})
	if err != nil {
		t.Fatal(errors.Wrap(err, "marshalling"))
	}
	assert.Equal(t, string(b), `{"entries":[{"ulid":"a"}]}`, "documents should be embedded as JSON")

	var got payload
	if err := json.Unmarshal([]byte(`{"entries":[{"ulid":"b","n":1}]}`), &got); err != nil {
		t.Fatal(errors.Wrap(err, "unmarshalling"))
	}
	assert.Equal(t, len(got.Entries), 1, "entry count mismatch")
	assert.Equal(t, got.Entries[0].RecordID(), "b", "id mismatch")
	assert.Equal(t, got.Entries[0].Get("n").Int(), int64(1), "field mismatch")
}

func TestDocumentSet(t *testing.T) {
	d := Document(`{"ulid":"a"}`)

	got, err := d.Set("name", "squat")
	if err != nil {
		t.Fatal(errors.Wrap(err, "setting"))
	}

	assert.Equal(t, string(got), `{"ulid":"a","name":"squat"}`, "result mismatch")
	assert.Equal(t, string(d), `{"ulid":"a"}`, "original should be unchanged")
}

func TestJSONCodec(t *testing.T) {
	c := JSONCodec[exercise]{}

	b, err := c.Encode(exercise{ULID: "a", Name: "squat"})
	if err != nil {
		t.Fatal(errors.Wrap(err, "encoding"))
	}

	stamped, err := stamp(b, UpdatedAtField, 42)
	if err != nil {
		t.Fatal(errors.Wrap(err, "stamping"))
	}

	got, err := c.Decode(stamped)
	if err != nil {
		t.Fatal(errors.Wrap(err, "decoding"))
	}
	assert.Equal(t, got, exercise{ULID: "a", Name: "squat", UpdatedAt: 42}, "record mismatch")

	_, err = c.Decode([]byte("not json"))
	assert.NotEqual(t, err, nil, "invalid payload should fail")
}

func TestULID(t *testing.T) {
	a := NewULID()
	b := NewULID()

	assert.Equal(t, len(a), 26, "length mismatch")
	assert.Equal(t, a < b, true, "ids should increase")

	at := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	ts, err := ULIDTime(NewULIDAt(at))
	if err != nil {
		t.Fatal(errors.Wrap(err, "parsing"))
	}
	assert.Equal(t, ts.Equal(at), true, "time mismatch")

	_, err = ULIDTime("nope")
	assert.NotEqual(t, err, nil, "invalid ulid should fail")
}
