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

	"github.com/dnote/replica/pkg/replica/sync"
	"github.com/dnote/replica/pkg/server/app"
	"github.com/dnote/replica/pkg/server/log"
	"github.com/gorilla/mux"
)

// NewRecords creates a new Records controller
func NewRecords(app *app.App) *Records {
	return &Records{app: app}
}

// Records serves the collection of any entity
type Records struct {
	app *app.App
}

// Index handles GET /v1/{entity}
func (rc *Records) Index(w http.ResponseWriter, r *http.Request) {
	entity := mux.Vars(r)["entity"]

	list, err := rc.app.ListRecords(entity)
	if err != nil {
		handleJSONError(w, err, "listing records")
		return
	}

	respondJSON(w, http.StatusOK, sync.ListResponse[json.RawMessage]{List: list})
}

// Show handles GET /v1/{entity}/{id}
func (rc *Records) Show(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	entry, err := rc.app.GetRecord(vars["entity"], vars["id"])
	if err != nil {
		handleJSONError(w, err, "getting record")
		return
	}

	respondJSON(w, http.StatusOK, sync.FetchResponse[json.RawMessage]{Entry: entry})
}

// Sync handles POST /v1/{entity}/sync
func (rc *Records) Sync(w http.ResponseWriter, r *http.Request) {
	entity := mux.Vars(r)["entity"]

	var payload sync.SyncPayload[json.RawMessage]
	if err := parseJSON(w, r, &payload); err != nil {
		handleJSONError(w, err, "decoding payload")
		return
	}

	res, err := rc.app.SyncRecords(entity, payload.Entries, payload.Removed)
	if err != nil {
		handleJSONError(w, err, "syncing records")
		return
	}

	log.WithFields(log.Fields{
		"entity":   entity,
		"pushed":   len(payload.Entries),
		"accepted": len(res.Entries),
		"removed":  len(res.Removed),
	}).Info("applied sync")

	respondJSON(w, http.StatusOK, sync.SyncResponse[json.RawMessage]{
		Entries: res.Entries,
		Removed: res.Removed,
	})
}
