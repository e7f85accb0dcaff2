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

package config

import (
	"os"
	"testing"

	"github.com/dnote/replica/pkg/assert"
	"github.com/dnote/replica/pkg/cli/context"
	"github.com/pkg/errors"
)

func TestReadWrite(t *testing.T) {
	ctx := context.InitTestCtx(t)

	cf := Config{
		Editor:      "nvim",
		APIEndpoint: "http://127.0.0.1:3001",
		Entities:    []string{"exercises", "activities"},
	}
	if err := Write(ctx, cf); err != nil {
		t.Fatal(errors.Wrap(err, "writing config"))
	}

	got, err := Read(ctx)
	if err != nil {
		t.Fatal(errors.Wrap(err, "reading config"))
	}

	assert.DeepEqual(t, got, cf, "config mismatch")
}

func TestRead_yaml(t *testing.T) {
	ctx := context.InitTestCtx(t)

	content := "editor: vim\napiEndpoint: https://sync.example.com\nentities:\n  - exercises\n"
	if err := os.WriteFile(GetPath(ctx), []byte(content), 0644); err != nil {
		t.Fatal(errors.Wrap(err, "preparing config"))
	}

	got, err := Read(ctx)
	if err != nil {
		t.Fatal(errors.Wrap(err, "reading config"))
	}

	assert.Equal(t, got.Editor, "vim", "editor mismatch")
	assert.Equal(t, got.APIEndpoint, "https://sync.example.com", "apiEndpoint mismatch")
	assert.DeepEqual(t, got.Entities, []string{"exercises"}, "entities mismatch")
}

func TestRead_missing(t *testing.T) {
	ctx := context.InitTestCtx(t)

	_, err := Read(ctx)
	assert.Equal(t, os.IsNotExist(errors.Cause(err)), true, "missing file should surface as not exist")
}
