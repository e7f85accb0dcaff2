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

package context

import (
	"context"
	"testing"

	"github.com/dnote/replica/pkg/clock"
	"github.com/dnote/replica/pkg/replica/database"
	"github.com/dnote/replica/pkg/replica/notify"
	"github.com/dnote/replica/pkg/replica/schema"
	"github.com/pkg/errors"
)

// getDefaultTestPaths creates default test paths with all paths pointing to a temp directory
func getDefaultTestPaths(t *testing.T) Paths {
	tmpDir := t.TempDir()
	return Paths{
		Home:   tmpDir,
		Cache:  tmpDir,
		Config: tmpDir,
		Data:   tmpDir,
	}
}

// InitTestCtx initializes a test context with an in-memory database holding
// a table for each given entity, and a temporary directory for all paths
func InitTestCtx(t *testing.T, entities ...string) ReplicaCtx {
	paths := getDefaultTestPaths(t)
	db := database.InitTestMemoryDB(t)

	if err := schema.InitTables(context.Background(), db, entities); err != nil {
		t.Fatal(errors.Wrap(err, "creating test tables"))
	}

	return ReplicaCtx{
		DB:       db,
		Paths:    paths,
		Entities: entities,
		Editor:   "vi",
		Clock:    clock.NewMock(),
		Notifier: notify.NewRegistry(),
	}
}
