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
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dnote/replica/pkg/cli/log"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// lineDiff computes a diff between two texts treating each line as a unit
func lineDiff(before, after string) []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = time.Hour

	a, b, lines := dmp.DiffLinesToRunes(before, after)
	diffs := dmp.DiffMainRunes(a, b, false)

	return dmp.DiffCharsToLines(diffs, lines)
}

// Diff writes a line diff between two payloads, marking removed lines with
// "-" and added lines with "+"
func Diff(w io.Writer, before, after string) {
	for _, d := range lineDiff(before, after) {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			if !strings.HasSuffix(line, "\n") {
				line += "\n"
			}

			switch d.Type {
			case diffmatchpatch.DiffDelete:
				fmt.Fprint(w, log.ColorRed.Sprintf("- %s", line))
			case diffmatchpatch.DiffInsert:
				fmt.Fprint(w, log.ColorGreen.Sprintf("+ %s", line))
			default:
				fmt.Fprintf(w, "  %s", line)
			}
		}
	}
}
