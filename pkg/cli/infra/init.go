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

// Package infra initializes the runtime context of the commands and builds
// the stores and coordinators they operate on
package infra

import (
	stdctx "context"
	"os"
	"path/filepath"

	"github.com/dnote/replica/pkg/cli/config"
	"github.com/dnote/replica/pkg/cli/consts"
	"github.com/dnote/replica/pkg/cli/context"
	"github.com/dnote/replica/pkg/cli/log"
	"github.com/dnote/replica/pkg/cli/utils"
	"github.com/dnote/replica/pkg/clock"
	"github.com/dnote/replica/pkg/dirs"
	"github.com/dnote/replica/pkg/replica/client"
	"github.com/dnote/replica/pkg/replica/database"
	"github.com/dnote/replica/pkg/replica/notify"
	"github.com/dnote/replica/pkg/replica/schema"
	"github.com/dnote/replica/pkg/replica/store"
	"github.com/dnote/replica/pkg/replica/sync"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	// DefaultAPIEndpoint is the default API endpoint used when none is configured
	DefaultAPIEndpoint = "http://localhost:3001"
)

// ErrUnknownEntity is returned when a command names an entity that is not
// in the configured list
var ErrUnknownEntity = errors.New("unknown entity")

// RunEFunc is a function type of replica commands
type RunEFunc func(*cobra.Command, []string) error

func getDBPath(paths context.Paths, customPath string) string {
	if customPath != "" {
		return customPath
	}

	return filepath.Join(paths.Data, consts.DBFileName)
}

// newBaseCtx creates a minimal context with paths and database connection.
// setupCtx later enriches it with the config values.
func newBaseCtx(paths context.Paths, versionTag, customDBPath string) (context.ReplicaCtx, error) {
	dbPath := getDBPath(paths, customDBPath)

	db, err := database.Open(dbPath)
	if err != nil {
		return context.ReplicaCtx{}, errors.Wrap(err, "connecting to db")
	}

	ctx := context.ReplicaCtx{
		Paths:   paths,
		Version: versionTag,
		DB:      db,
	}

	return ctx, nil
}

// Init initializes the replica environment and returns a new context.
// A non-empty apiEndpoint takes precedence over the configured one.
func Init(versionTag, apiEndpoint, dbPath string) (*context.ReplicaCtx, error) {
	return initWithPaths(dirs.For(consts.DirName), versionTag, apiEndpoint, dbPath)
}

func initWithPaths(paths context.Paths, versionTag, apiEndpoint, dbPath string) (*context.ReplicaCtx, error) {
	if err := initFiles(paths); err != nil {
		return nil, errors.Wrap(err, "initializing files")
	}

	ctx, err := newBaseCtx(paths, versionTag, dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "initializing a context")
	}

	ctx, err = setupCtx(ctx, apiEndpoint)
	if err != nil {
		ctx.DB.Close()
		return nil, errors.Wrap(err, "setting up the context")
	}

	if err := schema.InitTables(stdctx.Background(), ctx.DB, ctx.Entities); err != nil {
		ctx.DB.Close()
		return nil, errors.Wrap(err, "initializing tables")
	}

	log.Debug("context: %+v\n", ctx)

	return &ctx, nil
}

// setupCtx enriches the base context with values from the config file
func setupCtx(ctx context.ReplicaCtx, apiEndpoint string) (context.ReplicaCtx, error) {
	cf, err := config.Read(ctx)
	if err != nil {
		return ctx, errors.Wrap(err, "reading config")
	}

	endpoint := cf.APIEndpoint
	if apiEndpoint != "" {
		endpoint = apiEndpoint
	}

	ret := context.ReplicaCtx{
		Paths:       ctx.Paths,
		Version:     ctx.Version,
		DB:          ctx.DB,
		APIEndpoint: endpoint,
		Entities:    cf.Entities,
		Editor:      cf.Editor,
		Clock:       clock.New(),
		HTTPClient:  client.NewRateLimitedHTTPClient(),
		Notifier:    notify.Default(),
	}

	return ret, nil
}

// CheckEntity returns an error if the entity name cannot be used as a table,
// or if entities are configured and the name is not one of them
func CheckEntity(ctx context.ReplicaCtx, entity string) error {
	if err := schema.ValidateEntity(entity); err != nil {
		return err
	}
	if len(ctx.Entities) == 0 {
		return nil
	}

	for _, e := range ctx.Entities {
		if e == entity {
			return nil
		}
	}

	return errors.Wrapf(ErrUnknownEntity, "'%s' is not in the configured entities %v", entity, ctx.Entities)
}

// NewStore returns the store of the entity, creating its table if necessary
func NewStore(ctx context.ReplicaCtx, entity string) (*store.Store[store.Document], error) {
	if err := CheckEntity(ctx, entity); err != nil {
		return nil, err
	}

	s, err := store.New(ctx.DB, entity, store.Options[store.Document]{
		Clock:    ctx.Clock,
		Notifier: ctx.Notifier,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating the store")
	}

	if err := s.Init(stdctx.Background()); err != nil {
		return nil, errors.Wrap(err, "initializing the table")
	}

	return s, nil
}

// NewEndpoint returns the remote collection of the entity
func NewEndpoint(ctx context.ReplicaCtx, entity string) *client.Endpoint[store.Document] {
	return client.New[store.Document](client.Config{
		APIEndpoint: ctx.APIEndpoint,
		Version:     ctx.Version,
		HTTPClient:  ctx.HTTPClient,
	}, entity)
}

// NewCoordinator returns a coordinator between the local store of the entity
// and its remote collection
func NewCoordinator(ctx context.ReplicaCtx, entity string, invalidator sync.Invalidator) (*sync.Coordinator[store.Document], error) {
	s, err := NewStore(ctx, entity)
	if err != nil {
		return nil, err
	}

	return sync.New[store.Document](s, NewEndpoint(ctx, entity), sync.Options[store.Document]{
		Invalidator: invalidator,
	}), nil
}

// getEditorCommand returns the system's editor command with appropriate flags,
// if necessary, to make the command wait until editor is close to exit.
func getEditorCommand() string {
	editor := os.Getenv("EDITOR")

	var ret string

	switch editor {
	case "atom":
		ret = "atom -w"
	case "subl":
		ret = "subl -n -w"
	case "code":
		ret = "code -n -w"
	case "mate":
		ret = "mate -w"
	case "vim":
		ret = "vim"
	case "nano":
		ret = "nano"
	case "emacs":
		ret = "emacs"
	case "nvim":
		ret = "nvim"
	default:
		ret = "vi"
	}

	return ret
}

// initConfigFile populates a new config file if it does not exist yet
func initConfigFile(paths context.Paths) error {
	ctx := context.ReplicaCtx{Paths: paths}

	path := config.GetPath(ctx)
	ok, err := utils.FileExists(path)
	if err != nil {
		return errors.Wrap(err, "checking if config exists")
	}
	if ok {
		return nil
	}

	cf := config.Config{
		Editor:      getEditorCommand(),
		APIEndpoint: DefaultAPIEndpoint,
		Entities:    []string{},
	}

	if err := config.Write(ctx, cf); err != nil {
		return errors.Wrap(err, "writing config")
	}

	return nil
}

// initFiles creates, if necessary, the replica directories and files inside
func initFiles(paths context.Paths) error {
	if err := paths.Ensure(); err != nil {
		return errors.Wrap(err, "creating the replica dirs")
	}
	if err := initConfigFile(paths); err != nil {
		return errors.Wrap(err, "generating the config file")
	}

	return nil
}
