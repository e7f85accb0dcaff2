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

package infra

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dnote/replica/pkg/assert"
	"github.com/dnote/replica/pkg/cli/config"
	clictx "github.com/dnote/replica/pkg/cli/context"
	"github.com/dnote/replica/pkg/replica/schema"
	"github.com/dnote/replica/pkg/replica/store"
	"github.com/pkg/errors"
)

func testPaths(t *testing.T) clictx.Paths {
	dir := t.TempDir()

	return clictx.Paths{
		Home:   dir,
		Config: filepath.Join(dir, "config"),
		Data:   filepath.Join(dir, "data"),
		Cache:  filepath.Join(dir, "cache"),
	}
}

func TestGetDBPath(t *testing.T) {
	paths := clictx.Paths{Data: "/data/replica"}

	assert.Equal(t, getDBPath(paths, ""), "/data/replica/replica.db", "default path mismatch")
	assert.Equal(t, getDBPath(paths, "/tmp/custom.db"), "/tmp/custom.db", "custom path mismatch")
}

func TestInit(t *testing.T) {
	t.Setenv("EDITOR", "nvim")
	paths := testPaths(t)

	ctx, err := initWithPaths(paths, "v1.0.0", "", "")
	if err != nil {
		t.Fatal(errors.Wrap(err, "initializing"))
	}
	defer ctx.DB.Close()

	assert.Equal(t, ctx.Version, "v1.0.0", "version mismatch")
	assert.Equal(t, ctx.APIEndpoint, DefaultAPIEndpoint, "api endpoint mismatch")
	assert.Equal(t, ctx.Editor, "nvim", "editor mismatch")
	assert.Equal(t, ctx.DB.Filepath, filepath.Join(paths.Data, "replica.db"), "db path mismatch")
	assert.NotEqual(t, ctx.HTTPClient, nil, "http client should be set")
	assert.NotEqual(t, ctx.Clock, nil, "clock should be set")

	cf, err := config.Read(*ctx)
	if err != nil {
		t.Fatal(errors.Wrap(err, "reading config"))
	}
	assert.Equal(t, cf.APIEndpoint, DefaultAPIEndpoint, "config api endpoint mismatch")
	assert.Equal(t, cf.Editor, "nvim", "config editor mismatch")
}

func TestInit_existingConfig(t *testing.T) {
	paths := testPaths(t)
	if err := paths.Ensure(); err != nil {
		t.Fatal(errors.Wrap(err, "creating dirs"))
	}

	cf := config.Config{
		Editor:      "nano",
		APIEndpoint: "http://example.com",
		Entities:    []string{"workouts", "exercises"},
	}
	if err := config.Write(clictx.ReplicaCtx{Paths: paths}, cf); err != nil {
		t.Fatal(errors.Wrap(err, "writing config"))
	}

	dbPath := filepath.Join(t.TempDir(), "custom.db")
	ctx, err := initWithPaths(paths, "master", "http://override.test", dbPath)
	if err != nil {
		t.Fatal(errors.Wrap(err, "initializing"))
	}
	defer ctx.DB.Close()

	assert.Equal(t, ctx.APIEndpoint, "http://override.test", "api endpoint should be overridden")
	assert.Equal(t, ctx.Editor, "nano", "editor mismatch")
	assert.DeepEqual(t, ctx.Entities, []string{"workouts", "exercises"}, "entities mismatch")
	assert.Equal(t, ctx.DB.Filepath, dbPath, "db path mismatch")

	for _, entity := range ctx.Entities {
		var name string
		err := ctx.DB.QueryRow(context.Background(), "SELECT name FROM sqlite_master WHERE type='table' AND name = ?", entity).Scan(&name)
		if err != nil {
			t.Fatal(errors.Wrapf(err, "finding the table of %s", entity))
		}
		assert.Equal(t, name, entity, "table name mismatch")
	}

	got, err := config.Read(*ctx)
	if err != nil {
		t.Fatal(errors.Wrap(err, "reading config"))
	}
	assert.Equal(t, got.APIEndpoint, "http://example.com", "override should not be written to the config")
}

func TestCheckEntity(t *testing.T) {
	testCases := []struct {
		entities []string
		entity   string
		expected error
	}{
		{
			entities: nil,
			entity:   "workouts",
			expected: nil,
		},
		{
			entities: []string{"workouts"},
			entity:   "workouts",
			expected: nil,
		},
		{
			entities: []string{"workouts"},
			entity:   "exercises",
			expected: ErrUnknownEntity,
		},
		{
			entities: nil,
			entity:   "drop table;",
			expected: schema.ErrInvalidEntity,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.entity, func(t *testing.T) {
			ctx := clictx.ReplicaCtx{Entities: tc.entities}

			err := CheckEntity(ctx, tc.entity)
			assert.Equal(t, errors.Cause(err), tc.expected, "error mismatch")
		})
	}
}

func TestNewStore(t *testing.T) {
	ctx := clictx.InitTestCtx(t)

	s, err := NewStore(ctx, "workouts")
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating the store"))
	}

	_, err = s.Create(context.Background(), store.CreateParams[store.Document]{
		Data: store.Document(`{"ulid":"01HZX3V7Q8J5W2T9R6M4N1B0C3","name":"squat"}`),
	})
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating a record"))
	}

	count, err := s.Count(context.Background())
	if err != nil {
		t.Fatal(errors.Wrap(err, "counting"))
	}
	assert.Equal(t, count, 1, "count mismatch")
}

func TestGetEditorCommand(t *testing.T) {
	testCases := []struct {
		editor   string
		expected string
	}{
		{editor: "code", expected: "code -n -w"},
		{editor: "vim", expected: "vim"},
		{editor: "", expected: "vi"},
	}

	for _, tc := range testCases {
		t.Run(tc.editor, func(t *testing.T) {
			t.Setenv("EDITOR", tc.editor)
			assert.Equal(t, getEditorCommand(), tc.expected, "editor mismatch")
		})
	}
}
