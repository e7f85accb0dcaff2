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

package sync

import (
	"context"
	"fmt"
	"testing"

	"github.com/dnote/replica/pkg/assert"
	clictx "github.com/dnote/replica/pkg/cli/context"
	"github.com/dnote/replica/pkg/cli/infra"
	"github.com/dnote/replica/pkg/replica/database"
	"github.com/dnote/replica/pkg/server/app"
	"github.com/dnote/replica/pkg/server/controllers"
	"github.com/dnote/replica/pkg/server/testutils"
	"github.com/pkg/errors"
)

func setupServer(t *testing.T) (app.App, string) {
	a := app.NewTest(t)
	server := controllers.MustNewServer(t, &a)

	return a, server.URL
}

func insertRow(t *testing.T, db *database.DB, id, data string, synced, dirty, deleted bool) {
	var lastSyncedAt interface{}
	if synced {
		lastSyncedAt = 1
	}

	database.MustExec(t, "inserting "+id, db, `INSERT INTO workouts (ulid, data, timestamp, last_synced_at, is_dirty, is_deleted) VALUES (?, ?, ?, ?, ?, ?)`,
		id, data, 1, lastSyncedAt, database.Bool(dirty), database.Bool(deleted))
}

func TestSyncEntity_push(t *testing.T) {
	a, url := setupServer(t)
	testutils.SetupRecord(t, a.DB, "workouts", "w1", `{"ulid":"w1"}`, false)
	testutils.SetupRecord(t, a.DB, "workouts", "w2", `{"ulid":"w2"}`, false)

	ctx := clictx.InitTestCtx(t, "workouts")
	ctx.APIEndpoint = url
	insertRow(t, ctx.DB, "w1", `{"ulid":"w1","sets":5}`, true, true, false)
	insertRow(t, ctx.DB, "w2", `{"ulid":"w2"}`, true, true, true)
	insertRow(t, ctx.DB, "w3", `{"ulid":"w3"}`, false, true, false)

	r, err := syncEntity(context.Background(), ctx, "workouts", false)
	if err != nil {
		t.Fatal(errors.Wrap(err, "syncing"))
	}

	assert.Equal(t, r, result{
		Entity:  "workouts",
		Synced:  true,
		Pushed:  2,
		Removed: 1,
		Before:  2,
		After:   2,
	}, "result mismatch")

	assert.Equal(t, database.MustCount(t, ctx.DB, "workouts"), 2, "tombstone should be purged")
	for _, id := range []string{"w1", "w3"} {
		row := database.MustGetRow(t, ctx.DB, "workouts", id)
		assert.Equalf(t, row.Dirty, false, fmt.Sprintf("%s should be clean", id))
		assert.Equalf(t, row.CreatedOnServer(), true, fmt.Sprintf("%s should be synced", id))
	}

	w1 := testutils.MustGetRecord(t, a.DB, "workouts", "w1")
	assert.Equal(t, w1.Data, `{"ulid":"w1","sets":5}`, "server w1 mismatch")
	w2 := testutils.MustGetRecord(t, a.DB, "workouts", "w2")
	assert.Equal(t, w2.Deleted, true, "server w2 should be deleted")
	testutils.MustGetRecord(t, a.DB, "workouts", "w3")
}

func TestSyncEntity_emptyLocal(t *testing.T) {
	a, url := setupServer(t)
	testutils.SetupRecord(t, a.DB, "workouts", "w1", `{"ulid":"w1"}`, false)
	testutils.SetupRecord(t, a.DB, "workouts", "w2", `{"ulid":"w2"}`, false)
	testutils.SetupRecord(t, a.DB, "workouts", "w3", `{"ulid":"w3"}`, true)

	ctx := clictx.InitTestCtx(t, "workouts")
	ctx.APIEndpoint = url

	r, err := syncEntity(context.Background(), ctx, "workouts", false)
	if err != nil {
		t.Fatal(errors.Wrap(err, "syncing"))
	}

	assert.Equal(t, r.Synced, true, "synced mismatch")
	assert.Equal(t, r.Before, 0, "before mismatch")
	assert.Equal(t, r.After, 2, "after mismatch")
	assert.Equal(t, database.MustCount(t, ctx.DB, "workouts"), 2, "local count mismatch")
}

func TestSyncEntity_upToDate(t *testing.T) {
	a, url := setupServer(t)
	testutils.SetupRecord(t, a.DB, "workouts", "w1", `{"ulid":"w1"}`, false)

	ctx := clictx.InitTestCtx(t, "workouts")
	ctx.APIEndpoint = url
	insertRow(t, ctx.DB, "w1", `{"ulid":"w1"}`, true, false, false)

	r, err := syncEntity(context.Background(), ctx, "workouts", false)
	if err != nil {
		t.Fatal(errors.Wrap(err, "syncing"))
	}

	assert.Equal(t, r.Synced, false, "nothing should be synced")
	assert.Equal(t, r.After, 1, "after mismatch")
}

func TestSyncEntity_full(t *testing.T) {
	a, url := setupServer(t)
	testutils.SetupRecord(t, a.DB, "workouts", "w1", `{"ulid":"w1"}`, false)
	testutils.SetupRecord(t, a.DB, "workouts", "w4", `{"ulid":"w4"}`, false)

	ctx := clictx.InitTestCtx(t, "workouts")
	ctx.APIEndpoint = url
	insertRow(t, ctx.DB, "w1", `{"ulid":"w1"}`, true, false, false)
	insertRow(t, ctx.DB, "w2", `{"ulid":"w2"}`, true, false, false)
	insertRow(t, ctx.DB, "w3", `{"ulid":"w3"}`, true, false, false)

	r, err := syncEntity(context.Background(), ctx, "workouts", true)
	if err != nil {
		t.Fatal(errors.Wrap(err, "syncing"))
	}

	assert.Equal(t, r.Before, 3, "before mismatch")
	assert.Equal(t, r.After, 2, "after mismatch")
	database.MustGetRow(t, ctx.DB, "workouts", "w1")
	database.MustGetRow(t, ctx.DB, "workouts", "w4")
}

func TestSyncEntity_unreachable(t *testing.T) {
	ctx := clictx.InitTestCtx(t, "workouts")
	ctx.APIEndpoint = "http://127.0.0.1:1"
	insertRow(t, ctx.DB, "w1", `{"ulid":"w1"}`, false, true, false)

	_, err := syncEntity(context.Background(), ctx, "workouts", false)
	assert.NotEqual(t, err, nil, "sync should fail")

	row := database.MustGetRow(t, ctx.DB, "workouts", "w1")
	assert.Equal(t, row.Dirty, true, "failed sync should leave the row dirty")
}

func TestGetEntities(t *testing.T) {
	ctx := clictx.InitTestCtx(t, "workouts", "exercises")

	got, err := getEntities(ctx, nil)
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting entities"))
	}
	assert.DeepEqual(t, got, []string{"workouts", "exercises"}, "default entities mismatch")

	got, err = getEntities(ctx, []string{"exercises"})
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting entities"))
	}
	assert.DeepEqual(t, got, []string{"exercises"}, "entities mismatch")

	_, err = getEntities(ctx, []string{"meals"})
	assert.Equal(t, errors.Cause(err), infra.ErrUnknownEntity, "error mismatch")

	ctx.Entities = nil
	_, err = getEntities(ctx, nil)
	assert.NotEqual(t, err, nil, "missing entities should fail")
}
