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

package add

import (
	stdctx "context"
	"os"

	"github.com/dnote/replica/pkg/cli/context"
	"github.com/dnote/replica/pkg/cli/infra"
	"github.com/dnote/replica/pkg/cli/log"
	"github.com/dnote/replica/pkg/cli/output"
	"github.com/dnote/replica/pkg/cli/ui"
	"github.com/dnote/replica/pkg/cli/utils"
	"github.com/dnote/replica/pkg/replica/store"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var contentFlag string

var example = `
 * Open an editor to write the record
 replica add workouts

 * Skip the editor by providing the record directly
 replica add workouts -c '{"name": "leg day", "sets": 5}'

 * Send stdin content as a record
 echo '{"name": "leg day"}' | replica add workouts`

const editorTemplate = "{\n}\n"

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// NewCmd returns a new add command
func NewCmd(ctx context.ReplicaCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add <entity>",
		Short:   "Add a new record",
		Aliases: []string{"a", "n", "new"},
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVarP(&contentFlag, "content", "c", "", "The JSON object of the new record")

	return cmd
}

func getContent(ctx context.ReplicaCtx) (string, error) {
	if contentFlag != "" {
		return contentFlag, nil
	}

	if ui.IsPiped() {
		c, err := ui.ReadInput(os.Stdin)
		if err != nil {
			return "", errors.Wrap(err, "Failed to get piped input")
		}
		return c, nil
	}

	fpath, err := ui.GetTmpContentPath(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting temporarily content file path")
	}

	c, err := ui.GetEditorInput(ctx, fpath, editorTemplate)
	if err != nil {
		return "", errors.Wrap(err, "Failed to get editor input")
	}

	return c, nil
}

// newDocument parses the content into a record, assigning an id if it has none
func newDocument(ctx context.ReplicaCtx, content string) (store.Document, error) {
	b, err := utils.ParseObject(content)
	if err != nil {
		return nil, err
	}

	doc := store.Document(b)
	if doc.RecordID() != "" {
		return doc, nil
	}

	doc, err = doc.Set(store.IDField, store.NewULIDAt(ctx.Clock.Now()))
	if err != nil {
		return nil, errors.Wrap(err, "assigning an id")
	}

	return doc, nil
}

func addRecord(ctx context.ReplicaCtx, entity, content string) (store.Entry[store.Document], error) {
	s, err := infra.NewStore(ctx, entity)
	if err != nil {
		return store.Entry[store.Document]{}, err
	}

	doc, err := newDocument(ctx, content)
	if err != nil {
		return store.Entry[store.Document]{}, errors.Wrap(err, "invalid record")
	}

	e, err := s.Create(stdctx.Background(), store.CreateParams[store.Document]{Data: doc})
	if err != nil {
		return store.Entry[store.Document]{}, errors.Wrap(err, "Failed to write record")
	}

	return e, nil
}

func newRun(ctx context.ReplicaCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		entity := args[0]
		if err := infra.CheckEntity(ctx, entity); err != nil {
			return err
		}

		content, err := getContent(ctx)
		if err != nil {
			return errors.Wrap(err, "getting content")
		}
		if content == "" {
			return errors.New("Empty content")
		}

		e, err := addRecord(ctx, entity, content)
		if err != nil {
			return err
		}

		log.Successf("added to %s\n", entity)
		output.Record(entity, e)

		return nil
	}
}
