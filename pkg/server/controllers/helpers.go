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

	"github.com/dnote/replica/pkg/server/app"
	"github.com/dnote/replica/pkg/server/log"
	"github.com/pkg/errors"
)

// maxBodySize is the largest request body accepted
const maxBodySize = 10 << 20

// errBadRequest is an error for a request body that cannot be decoded
var errBadRequest = errors.New("bad request")

// statusFor returns the HTTP status for the given error
func statusFor(err error) int {
	switch errors.Cause(err) {
	case app.ErrNotFound, app.ErrUnknownEntity:
		return http.StatusNotFound
	case app.ErrInvalidEntity, app.ErrInvalidPayload, errBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// handleJSONError writes an error response for the given error. Unexpected
// errors are logged and their details are not exposed.
func handleJSONError(w http.ResponseWriter, err error, msg string) {
	code := statusFor(err)

	if code == http.StatusInternalServerError {
		log.ErrorWrap(err, msg)
		http.Error(w, http.StatusText(code), code)
		return
	}

	http.Error(w, err.Error(), code)
}

// respondJSON encodes the payload as the JSON response body
func respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.ErrorWrap(err, "encoding response")
	}
}

// parseJSON decodes the request body into v
func parseJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))

	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errBadRequest, err.Error())
	}

	return nil
}
