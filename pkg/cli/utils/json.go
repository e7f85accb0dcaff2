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

package utils

import (
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// ErrInvalidJSON is an error for content that is not a JSON object
var ErrInvalidJSON = errors.New("content is not a JSON object")

// ParseObject validates that the content is a JSON object and returns it compacted
func ParseObject(content string) ([]byte, error) {
	if !gjson.Valid(content) || !gjson.Parse(content).IsObject() {
		return nil, ErrInvalidJSON
	}

	return pretty.Ugly([]byte(content)), nil
}

// Pretty indents the JSON payload for display with keys in their original order
func Pretty(b []byte) string {
	return string(pretty.PrettyOptions(b, &pretty.Options{
		Width:  80,
		Indent: "  ",
	}))
}

// Compact removes the insignificant whitespace of the JSON payload
func Compact(b []byte) []byte {
	return pretty.Ugly(b)
}
