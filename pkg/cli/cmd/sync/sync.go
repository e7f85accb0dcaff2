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
	stdctx "context"

	"github.com/dnote/replica/pkg/cli/context"
	"github.com/dnote/replica/pkg/cli/infra"
	"github.com/dnote/replica/pkg/cli/log"
	"github.com/dnote/replica/pkg/replica/cache"
	"github.com/dnote/replica/pkg/replica/client"
	"github.com/dnote/replica/pkg/replica/store"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  * Sync every configured entity
  replica sync

  * Sync some entities, replacing the local copies with the server's
  replica sync workouts exercises --full`

var isFullSync bool
var apiEndpointFlag string

// NewCmd returns a new sync command
func NewCmd(ctx context.ReplicaCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sync <entity...>",
		Aliases: []string{"s"},
		Short:   "Sync data with the server",
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVarP(&isFullSync, "full", "f", false, "perform a full sync instead of incrementally syncing only the changed data.")
	f.StringVar(&apiEndpointFlag, "apiEndpoint", "", "API endpoint to connect to (defaults to value in config)")

	return cmd
}

// result summarizes the sync of one entity
type result struct {
	Entity  string
	Synced  bool
	Pushed  int
	Removed int
	Before  int
	After   int
}

func listKey(entity string) []string {
	return []string{entity}
}

// syncEntity synchronizes one entity. The record list is read through a
// query cache that the coordinator invalidates when the sync touches it.
func syncEntity(c stdctx.Context, ctx context.ReplicaCtx, entity string, full bool) (result, error) {
	qc := cache.New()

	co, err := infra.NewCoordinator(ctx, entity, qc)
	if err != nil {
		return result{}, err
	}
	s := co.Store()

	list := func() ([]store.Entry[store.Document], error) {
		return s.List(c)
	}

	before, err := cache.Fetch(qc, listKey(entity), list)
	if err != nil {
		return result{}, errors.Wrapf(err, "listing %s", entity)
	}

	outbox, err := s.Outbox(c)
	if err != nil {
		return result{}, err
	}

	synced, err := co.Sync(c, full)
	if err != nil {
		return result{}, errors.Wrapf(err, "syncing %s", entity)
	}

	after, err := cache.Fetch(qc, listKey(entity), list)
	if err != nil {
		return result{}, errors.Wrapf(err, "listing %s", entity)
	}

	return result{
		Entity:  entity,
		Synced:  synced,
		Pushed:  len(outbox.Entries),
		Removed: len(outbox.Removed),
		Before:  len(before),
		After:   len(after),
	}, nil
}

func getEntities(ctx context.ReplicaCtx, args []string) ([]string, error) {
	if len(args) == 0 {
		if len(ctx.Entities) == 0 {
			return nil, errors.New("no entity to sync. Pass entity names or add them to the entities list of the config file")
		}

		return ctx.Entities, nil
	}

	for _, entity := range args {
		if err := infra.CheckEntity(ctx, entity); err != nil {
			return nil, err
		}
	}

	return args, nil
}

func printResult(r result) {
	if !r.Synced {
		log.Infof("%s: already up to date\n", r.Entity)
		return
	}

	log.Successf("%s: pushed %d, removed %d, %d -> %d records\n", r.Entity, r.Pushed, r.Removed, r.Before, r.After)
}

func newRun(ctx context.ReplicaCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if apiEndpointFlag != "" {
			ctx.APIEndpoint = apiEndpointFlag
		}

		entities, err := getEntities(ctx, args)
		if err != nil {
			return err
		}

		c := cmd.Context()
		if c == nil {
			c = stdctx.Background()
		}

		cfg := client.Config{
			APIEndpoint: ctx.APIEndpoint,
			Version:     ctx.Version,
			HTTPClient:  ctx.HTTPClient,
		}
		if err := client.HealthCheck(c, cfg); err != nil {
			return errors.Wrapf(err, "reaching the server at %s", ctx.APIEndpoint)
		}

		for _, entity := range entities {
			r, err := syncEntity(c, ctx, entity, isFullSync)
			if err != nil {
				return err
			}

			printResult(r)
		}

		return nil
	}
}
