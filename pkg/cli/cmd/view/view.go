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

package view

import (
	"github.com/dnote/replica/pkg/cli/context"
	"github.com/dnote/replica/pkg/cli/infra"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dnote/replica/pkg/cli/cmd/cat"
	"github.com/dnote/replica/pkg/cli/cmd/ls"
)

var example = `
 * View all entities
 replica view

 * List records of an entity
 replica view workouts

 * View a particular record
 replica view workouts 01HZX3V7Q8J5W2T9R6M4N1B0C3
 `

var contentOnly bool

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) > 2 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// NewCmd returns a new view command
func NewCmd(ctx context.ReplicaCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "view <entity?> <id?>",
		Aliases: []string{"v"},
		Short:   "List entities, records or view a record",
		Example: example,
		RunE:    newRun(ctx),
		PreRunE: preRun,
	}

	f := cmd.Flags()
	f.BoolVarP(&contentOnly, "content-only", "", false, "print the record content only")

	return cmd
}

func newRun(ctx context.ReplicaCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		var run infra.RunEFunc

		switch len(args) {
		case 0, 1:
			if contentOnly {
				return errors.New("--content-only flag is only valid when viewing a record")
			}

			run = ls.NewRun(ctx)
		case 2:
			run = cat.NewRun(ctx, contentOnly)
		default:
			return errors.New("Incorrect number of arguments")
		}

		return run(cmd, args)
	}
}
