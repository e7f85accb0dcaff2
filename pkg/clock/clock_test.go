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

package clock

import (
	"testing"
	"time"

	"github.com/dnote/replica/pkg/assert"
)

func TestMock(t *testing.T) {
	c := NewMock()
	start := c.Now()

	c.Advance(1500 * time.Millisecond)
	assert.Equal(t, Millis(c), start.UnixMilli()+1500, "advanced millis mismatch")

	at := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	c.SetNow(at)
	assert.Equal(t, c.Now().Equal(at), true, "set time mismatch")
	assert.Equal(t, Millis(c), at.UnixMilli(), "set millis mismatch")
}

func TestNew(t *testing.T) {
	before := time.Now().UnixMilli()
	got := Millis(New())
	after := time.Now().UnixMilli()

	assert.Equal(t, got >= before && got <= after, true, "wall clock out of range")
}
