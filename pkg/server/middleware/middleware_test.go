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

package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dnote/replica/pkg/assert"
	"github.com/dnote/replica/pkg/server/log"
	"github.com/pkg/errors"
)

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	restore := log.SetOutput(&buf)
	defer restore()

	h := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest("POST", "/v1/exercises/sync", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, w.Header().Get(RequestIDHeader), "req-1", "request id should be echoed")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatal(errors.Wrap(err, "decoding log line"))
	}
	assert.Equal(t, line["requestId"], "req-1", "requestId mismatch")
	assert.Equal(t, line["method"], "POST", "method mismatch")
	assert.Equal(t, line["path"], "/v1/exercises/sync", "path mismatch")
	assert.Equal(t, line["status"], float64(http.StatusCreated), "status mismatch")
}

func TestLogging_generatesRequestID(t *testing.T) {
	restore := log.SetOutput(&bytes.Buffer{})
	defer restore()

	h := Logging(http.HandlerFunc(okHandler))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	assert.NotEqual(t, w.Header().Get(RequestIDHeader), "", "request id should be generated")
}

func TestRecover(t *testing.T) {
	restore := log.SetOutput(&bytes.Buffer{})
	defer restore()

	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/v1/exercises", nil))

	assert.Equal(t, w.Code, http.StatusInternalServerError, "status mismatch")
}

func TestNotSupported(t *testing.T) {
	w := httptest.NewRecorder()
	NotSupported(w, httptest.NewRequest("GET", "/v0/exercises", nil))

	assert.Equal(t, w.Code, http.StatusGone, "status mismatch")
}
