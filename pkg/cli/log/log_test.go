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

package log

import (
	"bytes"
	"testing"

	"github.com/dnote/replica/pkg/assert"
	"github.com/fatih/color"
)

func withBuffer(t *testing.T) *bytes.Buffer {
	noColor := color.NoColor
	color.NoColor = true

	var buf bytes.Buffer
	SetOutput(&buf)

	t.Cleanup(func() {
		SetOutput(nil)
		color.NoColor = noColor
	})

	return &buf
}

func TestMessages(t *testing.T) {
	testCases := []struct {
		print    func()
		expected string
	}{
		{
			print:    func() { Infof("entity: %s\n", "workouts") },
			expected: "  • entity: workouts\n",
		},
		{
			print:    func() { Info("100%\n") },
			expected: "  • 100%\n",
		},
		{
			print:    func() { Successf("pushed %d\n", 2) },
			expected: "  ✔ pushed 2\n",
		},
		{
			print:    func() { Errorf("failed\n") },
			expected: "  ⨯ failed\n",
		},
		{
			print:    func() { Plainf("%s\n", "raw") },
			expected: "  raw\n",
		},
		{
			print:    func() { Askf("remove this record? (y/N)", false) },
			expected: "  [?] remove this record? (y/N): ",
		},
	}

	for _, tc := range testCases {
		buf := withBuffer(t)
		tc.print()

		assert.Equal(t, buf.String(), tc.expected, "output mismatch")
	}
}

func TestDebug(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		t.Setenv(debugEnvName, "")
		buf := withBuffer(t)

		Debug("syncing %s\n", "workouts")

		assert.Equal(t, buf.String(), "", "output mismatch")
	})

	t.Run("enabled", func(t *testing.T) {
		t.Setenv(debugEnvName, "1")
		buf := withBuffer(t)

		Debug("syncing %s\n", "workouts")

		assert.Equal(t, buf.String(), "DEBUG: syncing workouts\n", "output mismatch")
	})
}
