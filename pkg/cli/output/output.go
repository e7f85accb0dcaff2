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

// Package output prints records to the terminal
package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/dnote/replica/pkg/cli/log"
	"github.com/dnote/replica/pkg/cli/utils"
	"github.com/dnote/replica/pkg/replica/store"
)

const timeLayout = "Jan 2, 2006 3:04pm (MST)"

// Status describes the sync state of an entry
func Status(e store.Entry[store.Document]) string {
	switch {
	case e.IsDirty && !e.IsCreatedOnServer:
		return "new"
	case e.IsDirty:
		return "modified"
	default:
		return "synced"
	}
}

func statusColor(status string) string {
	switch status {
	case "new":
		return log.ColorGreen.Sprint(status)
	case "modified":
		return log.ColorYellow.Sprint(status)
	default:
		return log.ColorGray.Sprint(status)
	}
}

// Record prints a record with its metadata
func Record(entity string, e store.Entry[store.Document]) {
	id := e.Data.RecordID()

	log.Infof("entity: %s\n", entity)
	log.Infof("id: %s\n", id)
	if t, err := store.ULIDTime(id); err == nil {
		log.Infof("created at: %s\n", t.Local().Format(timeLayout))
	}
	if ms := e.Data.Get(store.UpdatedAtField).Int(); ms != 0 {
		log.Infof("updated at: %s\n", time.UnixMilli(ms).Local().Format(timeLayout))
	}
	log.Infof("status: %s\n", statusColor(Status(e)))

	fmt.Printf("\n------------------------content------------------------\n")
	fmt.Printf("%s", utils.Pretty(e.Data))
	fmt.Printf("-------------------------------------------------------\n")
}

// Content prints the payload of a record only
func Content(e store.Entry[store.Document]) {
	fmt.Printf("%s", utils.Pretty(e.Data))
}

// summary returns a one line excerpt of the payload
func summary(d store.Document, width int) string {
	s := strings.TrimSpace(string(d))
	if len(s) > width {
		return s[:width-3] + "..."
	}

	return s
}

// List prints one line per record
func List(entries []store.Entry[store.Document]) {
	for _, e := range entries {
		log.Plainf("%s %s %s\n",
			log.ColorYellow.Sprint(e.Data.RecordID()),
			statusColor(fmt.Sprintf("%-8s", Status(e))),
			summary(e.Data, 60),
		)
	}
}
