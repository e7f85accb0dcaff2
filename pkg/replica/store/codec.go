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

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// IDField is the payload field holding the record id
const IDField = "ulid"

// UpdatedAtField is the payload field stamped by Update
const UpdatedAtField = "updatedAt"

// Codec serializes records to the text stored in the data column
type Codec[T any] interface {
	Encode(v T) ([]byte, error)
	Decode(b []byte) (T, error)
}

// JSONCodec encodes records with encoding/json. Documents are stored as
// they are without being re-encoded.
type JSONCodec[T any] struct{}

// Encode serializes v
func (JSONCodec[T]) Encode(v T) ([]byte, error) {
	if d, ok := any(v).(Document); ok {
		if !gjson.ValidBytes(d) {
			return nil, errors.New("document is not valid JSON")
		}

		return []byte(d), nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling record")
	}

	return b, nil
}

// Decode deserializes b
func (JSONCodec[T]) Decode(b []byte) (T, error) {
	var v T

	if d, ok := any(&v).(*Document); ok {
		*d = append(Document(nil), b...)
		return v, nil
	}

	if err := json.Unmarshal(b, &v); err != nil {
		return v, errors.Wrap(err, "unmarshalling record")
	}

	return v, nil
}

// Document is a pre-serialized JSON record. It passes through the store and
// the wire unchanged, and its id is read from the ulid field.
type Document []byte

// RecordID returns the ulid field of the document
func (d Document) RecordID() string {
	return gjson.GetBytes(d, IDField).String()
}

// Get returns the value at the given gjson path
func (d Document) Get(path string) gjson.Result {
	return gjson.GetBytes(d, path)
}

// Set returns a copy of the document with the value at the given sjson path replaced
func (d Document) Set(path string, value interface{}) (Document, error) {
	b, err := sjson.SetBytes(append([]byte(nil), d...), path, value)
	if err != nil {
		return nil, errors.Wrapf(err, "setting %s", path)
	}

	return Document(b), nil
}

// MarshalJSON returns the document itself
func (d Document) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}

	return d, nil
}

// UnmarshalJSON stores a copy of the raw JSON
func (d *Document) UnmarshalJSON(b []byte) error {
	if d == nil {
		return errors.New("unmarshalling into a nil document")
	}

	*d = append((*d)[0:0], b...)
	return nil
}

// stamp sets a field of an encoded payload
func stamp(b []byte, field string, value int64) ([]byte, error) {
	ret, err := sjson.SetBytes(b, field, value)
	if err != nil {
		return nil, errors.Wrapf(err, "stamping %s", field)
	}

	return ret, nil
}
