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

package output

import (
	"testing"

	"github.com/dnote/replica/pkg/assert"
	"github.com/dnote/replica/pkg/replica/store"
)

func TestStatus(t *testing.T) {
	testCases := []struct {
		entry    store.Entry[store.Document]
		expected string
	}{
		{
			entry:    store.Entry[store.Document]{IsDirty: true},
			expected: "new",
		},
		{
			entry:    store.Entry[store.Document]{IsDirty: true, IsCreatedOnServer: true},
			expected: "modified",
		},
		{
			entry:    store.Entry[store.Document]{IsCreatedOnServer: true},
			expected: "synced",
		},
	}

	for _, tc := range testCases {
		assert.Equal(t, Status(tc.entry), tc.expected, "status mismatch")
	}
}

func TestSummary(t *testing.T) {
	assert.Equal(t, summary(store.Document(`{"a":1}`), 10), `{"a":1}`, "short payload should be kept")
	assert.Equal(t, summary(store.Document(`{"name":"front squat"}`), 10), `{"name"...`, "long payload should be truncated")
}
