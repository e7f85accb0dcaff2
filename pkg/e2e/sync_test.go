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

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/dnote/replica/pkg/assert"
	"github.com/dnote/replica/pkg/cli/consts"
	clitest "github.com/dnote/replica/pkg/cli/testutils"
	"github.com/dnote/replica/pkg/replica/database"
	"github.com/dnote/replica/pkg/replica/store"
	"github.com/dnote/replica/pkg/server/app"
	"github.com/dnote/replica/pkg/server/controllers"
	apitest "github.com/dnote/replica/pkg/server/testutils"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var cliBinaryName string

func init() {
	cliBinaryName = fmt.Sprintf("%s/replica-test-cli", os.TempDir())
	buildCmd := exec.Command("go", "build", "-o", cliBinaryName, "../cli")
	if out, err := buildCmd.CombinedOutput(); err != nil {
		panic(fmt.Sprintf("failed to build cli: %v\n%s", err, out))
	}
}

// device is a CLI installation with its own directories and database
type device struct {
	DB      *database.DB
	CmdOpts clitest.RunReplicaCmdOptions
}

func (d device) run(t *testing.T, arg ...string) string {
	return clitest.RunReplicaCmd(t, d.CmdOpts, cliBinaryName, arg...)
}

// setupDevice creates a device configured to sync workouts with the server
func setupDevice(t *testing.T, apiEndpoint string) device {
	tmpDir := t.TempDir()

	dir := filepath.Join(tmpDir, consts.DirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(errors.Wrap(err, "creating replica directory"))
	}

	configContent := fmt.Sprintf("editor: vi\napiEndpoint: %s\nentities:\n- workouts\n", apiEndpoint)
	if err := os.WriteFile(filepath.Join(dir, consts.ConfigFilename), []byte(configContent), 0644); err != nil {
		t.Fatal(errors.Wrap(err, "writing config"))
	}

	d := device{
		CmdOpts: clitest.RunReplicaCmdOptions{
			Env: []string{
				fmt.Sprintf("XDG_CONFIG_HOME=%s", tmpDir),
				fmt.Sprintf("XDG_DATA_HOME=%s", tmpDir),
				fmt.Sprintf("XDG_CACHE_HOME=%s", tmpDir),
			},
		},
	}

	// initialize the database through the binary so that the schema is the one it creates
	d.run(t, "ls")
	d.DB = clitest.MustOpenDatabase(t, filepath.Join(dir, consts.DBFileName))

	return d
}

func setupServer(t *testing.T) (string, *gorm.DB) {
	a := app.NewTest(t)
	server := controllers.MustNewServer(t, &a)

	return server.URL, a.DB
}

func mustGetDocument(t *testing.T, db *database.DB, id string) store.Document {
	return store.Document(database.MustGetRow(t, db, "workouts", id).Data)
}

func TestSync_twoDevices(t *testing.T) {
	url, serverDB := setupServer(t)
	id := "01HZX3V7Q8J5W2T9R6M4N1B0C3"

	a := setupDevice(t, url)
	b := setupDevice(t, url)

	// a creates offline, then syncs
	a.run(t, "add", "workouts", "-c", fmt.Sprintf(`{"ulid": "%s", "name": "leg day", "sets": 3}`, id))
	a.run(t, "sync")

	r := apitest.MustGetRecord(t, serverDB, "workouts", id)
	assert.Equal(t, store.Document(r.Data).Get("sets").Int(), int64(3), "server sets mismatch")

	// b starts empty and pulls everything
	b.run(t, "sync")
	assert.Equal(t, mustGetDocument(t, b.DB, id).Get("name").String(), "leg day", "b name mismatch")
	assert.Equal(t, database.MustGetRow(t, b.DB, "workouts", id).Dirty, false, "b row should be clean")

	// b edits and pushes
	b.run(t, "edit", "workouts", id, "-c", fmt.Sprintf(`{"ulid": "%s", "name": "leg day", "sets": 5}`, id))
	b.run(t, "sync")

	r = apitest.MustGetRecord(t, serverDB, "workouts", id)
	assert.Equal(t, store.Document(r.Data).Get("sets").Int(), int64(5), "server sets after edit mismatch")

	// a only pushes on an incremental sync, and pulls on a full one
	a.run(t, "sync")
	assert.Equal(t, mustGetDocument(t, a.DB, id).Get("sets").Int(), int64(3), "incremental sync should not pull")
	a.run(t, "sync", "--full")
	assert.Equal(t, mustGetDocument(t, a.DB, id).Get("sets").Int(), int64(5), "full sync should pull")

	// b removes and pushes; a drops the record on the next full sync
	b.run(t, "remove", "workouts", id, "-y")
	b.run(t, "sync")
	assert.Equal(t, database.MustCount(t, b.DB, "workouts"), 0, "b should purge the confirmed removal")
	assert.Equal(t, apitest.MustGetRecord(t, serverDB, "workouts", id).Deleted, true, "server record should be deleted")

	a.run(t, "sync", "--full")
	assert.Equal(t, database.MustCount(t, a.DB, "workouts"), 0, "a should purge the removed record")
}

func TestSync_editOfRecordDeletedElsewhere(t *testing.T) {
	url, serverDB := setupServer(t)
	id := "01HZX3V7Q8J5W2T9R6M4N1B0C3"
	apitest.SetupRecord(t, serverDB, "workouts", id, fmt.Sprintf(`{"ulid":"%s","sets":3}`, id), false)

	a := setupDevice(t, url)
	b := setupDevice(t, url)
	a.run(t, "sync")
	b.run(t, "sync")

	a.run(t, "remove", "workouts", id, "-y")
	a.run(t, "sync")

	// the server reports the edited record as removed instead of resurrecting it
	b.run(t, "edit", "workouts", id, "-c", fmt.Sprintf(`{"ulid": "%s", "sets": 5}`, id))
	b.run(t, "sync")

	assert.Equal(t, database.MustCount(t, b.DB, "workouts"), 0, "b should purge the record")
	assert.Equal(t, apitest.MustGetRecord(t, serverDB, "workouts", id).Deleted, true, "server record should stay deleted")
}

func TestSync_serverUnreachable(t *testing.T) {
	url, serverDB := setupServer(t)
	id := "01HZX3V7Q8J5W2T9R6M4N1B0C3"

	a := setupDevice(t, url)
	a.run(t, "add", "workouts", "-c", fmt.Sprintf(`{"ulid": "%s"}`, id))

	cmd, stderr, _, err := clitest.NewReplicaCmd(a.CmdOpts, cliBinaryName, "sync", "--apiEndpoint", "http://127.0.0.1:1")
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting command"))
	}
	if err := cmd.Run(); err == nil {
		t.Fatalf("sync against an unreachable server should fail: %s", stderr.String())
	}

	row := database.MustGetRow(t, a.DB, "workouts", id)
	assert.Equal(t, row.Dirty, true, "row should stay dirty")

	a.run(t, "sync")

	row = database.MustGetRow(t, a.DB, "workouts", id)
	assert.Equal(t, row.Dirty, false, "row should be clean after a successful sync")
	apitest.MustGetRecord(t, serverDB, "workouts", id)
}
