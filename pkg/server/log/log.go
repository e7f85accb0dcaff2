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

// Package log writes structured JSON log lines for the sync server
package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Levels in increasing order of severity
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

var severity = map[string]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

var (
	mu           sync.Mutex
	currentLevel = LevelInfo
	out          io.Writer = os.Stderr
)

// Fields are the key-value pairs attached to a log line
type Fields map[string]interface{}

// Entry is a log line waiting for its level and message
type Entry struct {
	Fields    Fields
	Timestamp time.Time
}

// WithFields starts an entry carrying the given fields
func WithFields(fields Fields) Entry {
	return Entry{Fields: fields, Timestamp: time.Now().UTC()}
}

// SetLevel sets the minimum level written. Unknown levels behave like info.
func SetLevel(level string) {
	mu.Lock()
	defer mu.Unlock()

	currentLevel = level
}

// SetOutput redirects log lines to w and returns a function restoring the
// previous writer
func SetOutput(w io.Writer) func() {
	mu.Lock()
	prev := out
	out = w
	mu.Unlock()

	return func() {
		mu.Lock()
		defer mu.Unlock()

		out = prev
	}
}

func rank(level string) int {
	if r, ok := severity[level]; ok {
		return r
	}

	return severity[LevelInfo]
}

func shouldLog(level string) bool {
	mu.Lock()
	defer mu.Unlock()

	return rank(level) >= rank(currentLevel)
}

// Debug writes the entry at the debug level
func (e Entry) Debug(msg string) { e.write(LevelDebug, msg) }

// Info writes the entry at the info level
func (e Entry) Info(msg string) { e.write(LevelInfo, msg) }

// Warn writes the entry at the warn level
func (e Entry) Warn(msg string) { e.write(LevelWarn, msg) }

// Error writes the entry at the error level
func (e Entry) Error(msg string) { e.write(LevelError, msg) }

// ErrorWrap writes err at the error level, prefixed by msg
func (e Entry) ErrorWrap(err error, msg string) {
	e.Error(fmt.Sprintf("%s: %v", msg, err))
}

// line builds the JSON object of the entry. Reserved keys win over fields.
func (e Entry) line(level, msg string) ([]byte, error) {
	obj := make(map[string]interface{}, len(e.Fields)+4)
	for k, v := range e.Fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		obj[k] = v
	}

	obj["level"] = level
	obj["msg"] = msg
	obj["ts"] = e.Timestamp
	obj["ts_unix"] = e.Timestamp.Unix()

	return json.Marshal(obj)
}

func (e Entry) write(level, msg string) {
	if !shouldLog(level) {
		return
	}

	b, err := e.line(level, msg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "encoding log line: %v\n", err)
		return
	}

	mu.Lock()
	defer mu.Unlock()

	if _, err := out.Write(append(b, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "writing log line: %v\n", err)
	}
}

// Debug writes msg at the debug level
func Debug(msg string) { WithFields(nil).Debug(msg) }

// Info writes msg at the info level
func Info(msg string) { WithFields(nil).Info(msg) }

// Warn writes msg at the warn level
func Warn(msg string) { WithFields(nil).Warn(msg) }

// Error writes msg at the error level
func Error(msg string) { WithFields(nil).Error(msg) }

// ErrorWrap writes err at the error level, prefixed by msg
func ErrorWrap(err error, msg string) { WithFields(nil).ErrorWrap(err, msg) }
