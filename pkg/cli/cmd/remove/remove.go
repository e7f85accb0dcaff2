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
	stdctx "context"

	"github.com/dnote/replica/pkg/cli/context"
	"github.com/dnote/replica/pkg/cli/infra"
	"github.com/dnote/replica/pkg/cli/log"
	"github.com/dnote/replica/pkg/cli/output"
	"github.com/dnote/replica/pkg/cli/ui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var yesFlag bool

var example = `
  * Remove a record
  replica remove workouts 01HZX3V7Q8J5W2T9R6M4N1B0C3

  * Skip confirmation
  replica remove workouts 01HZX3V7Q8J5W2T9R6M4N1B0C3 -y`

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// NewCmd returns a new remove command
func NewCmd(ctx context.ReplicaCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove <entity> <id>",
		Short:   "Remove a record",
		Aliases: []string{"rm", "d"},
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVarP(&yesFlag, "yes", "y", false, "remove without confirmation")

	return cmd
}

// removeRecord marks the record as deleted. The row is purged once the
// server confirms the removal.
func removeRecord(ctx context.ReplicaCtx, entity, id string, confirm func() (bool, error)) (bool, error) {
	c := stdctx.Background()

	s, err := infra.NewStore(ctx, entity)
	if err != nil {
		return false, err
	}

	e, err := s.Get(c, id)
	if err != nil {
		return false, errors.Wrapf(err, "finding %s", id)
	}

	output.Record(entity, e)

	ok, err := confirm()
	if err != nil {
		return false, errors.Wrap(err, "getting confirmation")
	}
	if !ok {
		return false, nil
	}

	if err := s.Delete(c, id); err != nil {
		return false, errors.Wrap(err, "removing the record")
	}

	return true, nil
}

func newRun(ctx context.ReplicaCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		entity, id := args[0], args[1]

		confirm := func() (bool, error) {
			if yesFlag {
				return true, nil
			}

			return ui.Confirm("remove this record?", false)
		}

		ok, err := removeRecord(ctx, entity, id, confirm)
		if err != nil {
			return err
		}
		if !ok {
			log.Warnf("aborted by user\n")
			return nil
		}

		log.Successf("removed from %s\n", entity)

		return nil
	}
}
