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
	"testing"

	"github.com/dnote/replica/pkg/assert"
)

func TestParseObject(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
		err      error
	}{
		{
			input:    "{\n  \"name\": \"squat\",\n  \"sets\": 3\n}\n",
			expected: `{"name":"squat","sets":3}`,
		},
		{
			input: `["squat"]`,
			err:   ErrInvalidJSON,
		},
		{
			input: `{"name":`,
			err:   ErrInvalidJSON,
		},
		{
			input: ``,
			err:   ErrInvalidJSON,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseObject(tc.input)

			assert.Equal(t, err, tc.err, "error mismatch")
			assert.Equal(t, string(got), tc.expected, "result mismatch")
		})
	}
}

func TestPretty(t *testing.T) {
	got := Pretty([]byte(`{"ulid":"01H","name":"squat"}`))

	assert.Equal(t, got, "{\n  \"ulid\": \"01H\",\n  \"name\": \"squat\"\n}\n", "result mismatch")
}
