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

package ls

import (
	stdctx "context"

	"github.com/dnote/replica/pkg/cli/context"
	"github.com/dnote/replica/pkg/cli/infra"
	"github.com/dnote/replica/pkg/cli/log"
	"github.com/dnote/replica/pkg/cli/output"
	"github.com/dnote/replica/pkg/replica/store"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
 * List the configured entities
 replica ls

 * List the records of an entity
 replica ls workouts

 * List the records not yet pushed to the server
 replica ls workouts --dirty`

var dirtyOnly bool

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// NewCmd returns a new ls command
func NewCmd(ctx context.ReplicaCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ls <entity?>",
		Aliases: []string{"l"},
		Short:   "List entities or records",
		Example: example,
		RunE:    NewRun(ctx),
		PreRunE: preRun,
	}

	f := cmd.Flags()
	f.BoolVarP(&dirtyOnly, "dirty", "d", false, "list only the records with local changes")

	return cmd
}

// entityInfo is an entity with the number of its visible records
type entityInfo struct {
	Name  string
	Count int
}

func getEntityInfos(ctx context.ReplicaCtx) ([]entityInfo, error) {
	ret := []entityInfo{}

	for _, entity := range ctx.Entities {
		s, err := infra.NewStore(ctx, entity)
		if err != nil {
			return nil, err
		}

		count, err := s.Count(stdctx.Background())
		if err != nil {
			return nil, errors.Wrapf(err, "counting %s", entity)
		}

		ret = append(ret, entityInfo{Name: entity, Count: count})
	}

	return ret, nil
}

func getEntries(ctx context.ReplicaCtx, entity string, dirty bool) ([]store.Entry[store.Document], error) {
	s, err := infra.NewStore(ctx, entity)
	if err != nil {
		return nil, err
	}

	entries, err := s.List(stdctx.Background())
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", entity)
	}
	if !dirty {
		return entries, nil
	}

	ret := []store.Entry[store.Document]{}
	for _, e := range entries {
		if e.IsDirty {
			ret = append(ret, e)
		}
	}

	return ret, nil
}

func printEntities(ctx context.ReplicaCtx) error {
	infos, err := getEntityInfos(ctx)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		log.Info("no entities configured. Add them to the entities list of the config file.\n")
		return nil
	}

	for _, info := range infos {
		log.Printf("%s %s\n", info.Name, log.ColorYellow.Sprintf("(%d)", info.Count))
	}

	return nil
}

// NewRun returns a new run function for ls
func NewRun(ctx context.ReplicaCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return printEntities(ctx)
		}

		entity := args[0]
		entries, err := getEntries(ctx, entity, dirtyOnly)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			log.Infof("no records in %s\n", entity)
			return nil
		}

		output.List(entries)

		return nil
	}
}
