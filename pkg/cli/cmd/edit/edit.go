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

package edit

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
  * Edit a record in the editor
  replica edit workouts 01HZX3V7Q8J5W2T9R6M4N1B0C3

  * Edit a record without launching an editor
  replica edit workouts 01HZX3V7Q8J5W2T9R6M4N1B0C3 -c '{"name": "leg day", "sets": 4}'
`

var (
	// errNoChange is returned when the edited content equals the current one
	errNoChange = errors.New("Nothing changed")
	// errIDChanged is returned when the edited content names another record
	errIDChanged = errors.New("the ulid field cannot be changed")
)

// NewCmd returns a new edit command
func NewCmd(ctx context.ReplicaCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "edit <entity> <id>",
		Short:   "Edit a record",
		Aliases: []string{"e"},
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVarP(&contentFlag, "content", "c", "", "the new JSON object of the record")

	return cmd
}

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

func getContent(ctx context.ReplicaCtx, current store.Document) (string, error) {
	if contentFlag != "" {
		return contentFlag, nil
	}

	fpath, err := ui.GetTmpContentPath(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting temporarily content file path")
	}

	c, err := ui.GetEditorInput(ctx, fpath, utils.Pretty(current))
	if err != nil {
		return "", errors.Wrap(err, "getting editor input")
	}

	return c, nil
}

// newDocument parses the edited content of the record with the given id. The
// id is filled in when the content omits it.
func newDocument(id, content string) (store.Document, error) {
	b, err := utils.ParseObject(content)
	if err != nil {
		return nil, err
	}

	doc := store.Document(b)
	switch doc.RecordID() {
	case id:
		return doc, nil
	case "":
		return doc.Set(store.IDField, id)
	default:
		return nil, errIDChanged
	}
}

// editRecord replaces the content of the record and returns the previous and
// the updated entries
func editRecord(ctx context.ReplicaCtx, entity, id string, getContent func(store.Document) (string, error)) (store.Entry[store.Document], store.Entry[store.Document], error) {
	var empty store.Entry[store.Document]
	c := stdctx.Background()

	s, err := infra.NewStore(ctx, entity)
	if err != nil {
		return empty, empty, err
	}

	old, err := s.Get(c, id)
	if err != nil {
		return empty, empty, errors.Wrapf(err, "finding %s", id)
	}

	content, err := getContent(old.Data)
	if err != nil {
		return empty, empty, err
	}

	doc, err := newDocument(id, content)
	if err != nil {
		return empty, empty, errors.Wrap(err, "invalid record")
	}
	if string(doc) == string(utils.Compact(old.Data)) {
		return empty, empty, errNoChange
	}

	updated, err := s.Update(c, store.UpdateParams[store.Document]{ID: id, Data: doc})
	if err != nil {
		return empty, empty, errors.Wrap(err, "updating the record")
	}

	return old, updated, nil
}

func newRun(ctx context.ReplicaCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		entity, id := args[0], args[1]

		old, updated, err := editRecord(ctx, entity, id, func(current store.Document) (string, error) {
			return getContent(ctx, current)
		})
		if err != nil {
			return err
		}

		log.Success("edited the record\n")
		output.Diff(os.Stdout, utils.Pretty(old.Data), utils.Pretty(updated.Data))

		return nil
	}
}
