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

package remove

import (
	"testing"

	"github.com/dnote/replica/pkg/assert"
	clictx "github.com/dnote/replica/pkg/cli/context"
	"github.com/dnote/replica/pkg/replica/database"
	"github.com/dnote/replica/pkg/replica/store"
	"github.com/pkg/errors"
)

func answer(ok bool) func() (bool, error) {
	return func() (bool, error) {
		return ok, nil
	}
}

func setupCtx(t *testing.T) clictx.ReplicaCtx {
	ctx := clictx.InitTestCtx(t, "workouts")
	database.MustExec(t, "inserting w1", ctx.DB, `INSERT INTO workouts (ulid, data, timestamp, last_synced_at, is_dirty, is_deleted) VALUES (?, ?, ?, ?, ?, ?)`,
		"w1", `{"ulid":"w1","name":"squat"}`, 1, 1, 0, 0)

	return ctx
}

func TestRemoveRecord(t *testing.T) {
	ctx := setupCtx(t)

	ok, err := removeRecord(ctx, "workouts", "w1", answer(true))
	if err != nil {
		t.Fatal(errors.Wrap(err, "removing"))
	}

	assert.Equal(t, ok, true, "removal should be performed")

	row := database.MustGetRow(t, ctx.DB, "workouts", "w1")
	assert.Equal(t, row.Deleted, true, "row should be a tombstone")
	assert.Equal(t, row.Dirty, true, "row should be dirty")
}

func TestRemoveRecord_declined(t *testing.T) {
	ctx := setupCtx(t)

	ok, err := removeRecord(ctx, "workouts", "w1", answer(false))
	if err != nil {
		t.Fatal(errors.Wrap(err, "removing"))
	}

	assert.Equal(t, ok, false, "removal should be aborted")

	row := database.MustGetRow(t, ctx.DB, "workouts", "w1")
	assert.Equal(t, row.Deleted, false, "row should be kept")
	assert.Equal(t, row.Dirty, false, "row should be untouched")
}

func TestRemoveRecord_notFound(t *testing.T) {
	ctx := setupCtx(t)

	_, err := removeRecord(ctx, "workouts", "w9", answer(true))
	assert.Equal(t, errors.Is(err, store.ErrNotFound), true, "error mismatch")
}
