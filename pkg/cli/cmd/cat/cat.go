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

package cat

import (
	stdctx "context"

	"github.com/dnote/replica/pkg/cli/context"
	"github.com/dnote/replica/pkg/cli/infra"
	"github.com/dnote/replica/pkg/cli/output"
	"github.com/dnote/replica/pkg/replica/store"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
 * See a record
 replica cat workouts 01HZX3V7Q8J5W2T9R6M4N1B0C3

 * Pull the latest version from the server first
 replica cat workouts 01HZX3V7Q8J5W2T9R6M4N1B0C3 --refresh
 `

var contentOnly bool
var refresh bool

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return errors.New("Incorrect number of arguments")
	}

	return nil
}

// NewCmd returns a new cat command
func NewCmd(ctx context.ReplicaCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cat <entity> <id>",
		Aliases: []string{"c"},
		Short:   "See a record",
		Example: example,
		RunE:    NewRun(ctx, false),
		PreRunE: preRun,
	}

	f := cmd.Flags()
	f.BoolVarP(&contentOnly, "content-only", "", false, "print the record content only")
	f.BoolVarP(&refresh, "refresh", "r", false, "fetch the record from the server before printing it")

	return cmd
}

func getEntry(ctx context.ReplicaCtx, entity, id string, fromServer bool) (store.Entry[store.Document], error) {
	c := stdctx.Background()

	if fromServer {
		co, err := infra.NewCoordinator(ctx, entity, nil)
		if err != nil {
			return store.Entry[store.Document]{}, err
		}

		if _, err := co.Refresh(c, id); err != nil {
			return store.Entry[store.Document]{}, errors.Wrapf(err, "refreshing %s", id)
		}

		return co.Store().Get(c, id)
	}

	s, err := infra.NewStore(ctx, entity)
	if err != nil {
		return store.Entry[store.Document]{}, err
	}

	return s.Get(c, id)
}

// NewRun returns a new run function. contentOnly forces printing the
// content only.
func NewRun(ctx context.ReplicaCtx, forceContentOnly bool) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		entity, id := args[0], args[1]

		e, err := getEntry(ctx, entity, id, refresh)
		if err != nil {
			return err
		}

		if contentOnly || forceContentOnly {
			output.Content(e)
		} else {
			output.Record(entity, e)
		}

		return nil
	}
}
