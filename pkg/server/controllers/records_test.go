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

package controllers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dnote/replica/pkg/assert"
	"github.com/dnote/replica/pkg/replica/sync"
	"github.com/dnote/replica/pkg/server/app"
	"github.com/dnote/replica/pkg/server/testutils"
	"github.com/pkg/errors"
)

const (
	idA = "01HZX0000000000000000000AA"
	idB = "01HZX0000000000000000000BB"
	idC = "01HZX0000000000000000000CC"
)

func payload(id, name string) string {
	return `{"ulid":"` + id + `","name":"` + name + `"}`
}

func decodeBody(t *testing.T, res *http.Response, v interface{}) {
	defer res.Body.Close()

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		t.Fatal(errors.Wrap(err, "decoding response body"))
	}
}

func compactJSON(t *testing.T, b []byte) string {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		t.Fatal(errors.Wrap(err, "decoding json"))
	}
	out, err := json.Marshal(v)
	if err != nil {
		t.Fatal(errors.Wrap(err, "encoding json"))
	}

	return string(out)
}

func TestRecordsIndex(t *testing.T) {
	a := app.NewTest(t)
	testutils.SetupRecord(t, a.DB, "exercises", idA, payload(idA, "squat"), false)
	testutils.SetupRecord(t, a.DB, "exercises", idB, payload(idB, "lunge"), true)
	server := MustNewServer(t, &a)

	res := testutils.HTTPDo(t, testutils.MakeReq(server.URL, "GET", "/v1/exercises", ""))
	assert.StatusCodeEquals(t, res, http.StatusOK, "status code mismatch")
	assert.Equal(t, res.Header.Get("Content-Type"), "application/json", "content type mismatch")

	var body sync.ListResponse[json.RawMessage]
	decodeBody(t, res, &body)

	assert.Equal(t, len(body.List), 1, "list length mismatch")
	assert.Equal(t, compactJSON(t, body.List[0]), compactJSON(t, []byte(payload(idA, "squat"))), "entry mismatch")
}

func TestRecordsShow(t *testing.T) {
	a := app.NewTest(t)
	testutils.SetupRecord(t, a.DB, "exercises", idA, payload(idA, "squat"), false)
	testutils.SetupRecord(t, a.DB, "exercises", idB, payload(idB, "lunge"), true)
	server := MustNewServer(t, &a)

	t.Run("live", func(t *testing.T) {
		res := testutils.HTTPDo(t, testutils.MakeReq(server.URL, "GET", "/v1/exercises/"+idA, ""))
		assert.StatusCodeEquals(t, res, http.StatusOK, "status code mismatch")

		var body sync.FetchResponse[json.RawMessage]
		decodeBody(t, res, &body)
		assert.Equal(t, compactJSON(t, body.Entry), compactJSON(t, []byte(payload(idA, "squat"))), "entry mismatch")
	})

	t.Run("deleted", func(t *testing.T) {
		res := testutils.HTTPDo(t, testutils.MakeReq(server.URL, "GET", "/v1/exercises/"+idB, ""))
		defer res.Body.Close()
		assert.StatusCodeEquals(t, res, http.StatusNotFound, "status code mismatch")
	})

	t.Run("missing", func(t *testing.T) {
		res := testutils.HTTPDo(t, testutils.MakeReq(server.URL, "GET", "/v1/exercises/"+idC, ""))
		defer res.Body.Close()
		assert.StatusCodeEquals(t, res, http.StatusNotFound, "status code mismatch")
	})
}

func TestRecordsSync(t *testing.T) {
	a := app.NewTest(t)
	testutils.SetupRecord(t, a.DB, "exercises", idA, payload(idA, "squat"), false)
	testutils.SetupRecord(t, a.DB, "exercises", idB, payload(idB, "lunge"), false)
	server := MustNewServer(t, &a)

	reqBody := `{"entries":[` + payload(idA, "front squat") + `,` + payload(idC, "plank") + `],"removed":["` + idB + `"]}`
	res := testutils.HTTPDo(t, testutils.MakeReq(server.URL, "POST", "/v1/exercises/sync", reqBody))
	assert.StatusCodeEquals(t, res, http.StatusOK, "status code mismatch")

	var body sync.SyncResponse[json.RawMessage]
	decodeBody(t, res, &body)

	assert.Equal(t, len(body.Entries), 2, "entries length mismatch")
	assert.Equal(t, compactJSON(t, body.Entries[0]), compactJSON(t, []byte(payload(idA, "front squat"))), "first entry mismatch")
	assert.Equal(t, compactJSON(t, body.Entries[1]), compactJSON(t, []byte(payload(idC, "plank"))), "second entry mismatch")
	assert.DeepEqual(t, body.Removed, []string{idB}, "removed mismatch")

	recB := testutils.MustGetRecord(t, a.DB, "exercises", idB)
	assert.Equal(t, recB.Deleted, true, "B should be deleted")
}

func TestRecordsSync_emptyResponse(t *testing.T) {
	a := app.NewTest(t)
	server := MustNewServer(t, &a)

	res := testutils.HTTPDo(t, testutils.MakeReq(server.URL, "POST", "/v1/exercises/sync", `{}`))
	assert.StatusCodeEquals(t, res, http.StatusOK, "status code mismatch")

	var body map[string]json.RawMessage
	decodeBody(t, res, &body)

	assert.Equal(t, string(body["entries"]), "[]", "entries should be an empty array")
	assert.Equal(t, string(body["removed"]), "[]", "removed should be an empty array")
}

func TestRecords_errors(t *testing.T) {
	testCases := []struct {
		name     string
		entities []string
		method   string
		path     string
		body     string
		expected int
	}{
		{
			name:     "invalid entity",
			method:   "GET",
			path:     "/v1/Exercises",
			expected: http.StatusBadRequest,
		},
		{
			name:     "entity outside the allowlist",
			entities: []string{"activities"},
			method:   "GET",
			path:     "/v1/exercises",
			expected: http.StatusNotFound,
		},
		{
			name:     "malformed body",
			method:   "POST",
			path:     "/v1/exercises/sync",
			body:     `{"entries":`,
			expected: http.StatusBadRequest,
		},
		{
			name:     "entry without ulid",
			method:   "POST",
			path:     "/v1/exercises/sync",
			body:     `{"entries":[{"name":"squat"}]}`,
			expected: http.StatusBadRequest,
		},
		{
			name:     "sync is not readable",
			method:   "GET",
			path:     "/v1/exercises/sync",
			expected: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := app.NewTest(t)
			a.Entities = tc.entities
			server := MustNewServer(t, &a)

			res := testutils.HTTPDo(t, testutils.MakeReq(server.URL, tc.method, tc.path, tc.body))
			defer res.Body.Close()

			assert.StatusCodeEquals(t, res, tc.expected, "status code mismatch")
		})
	}
}
