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

// Package context defines the runtime context shared by the commands
package context

import (
	"net/http"

	"github.com/dnote/replica/pkg/clock"
	"github.com/dnote/replica/pkg/dirs"
	"github.com/dnote/replica/pkg/replica/database"
	"github.com/dnote/replica/pkg/replica/notify"
)

// Paths contain directory definitions
type Paths = dirs.Paths

// ReplicaCtx is a context holding the information of the current runtime
type ReplicaCtx struct {
	Paths       Paths
	APIEndpoint string
	Version     string
	DB          *database.DB
	// Entities are the configured entities. Commands reject others.
	Entities   []string
	Editor     string
	Clock      clock.Clock
	HTTPClient *http.Client
	Notifier   *notify.Registry
}
