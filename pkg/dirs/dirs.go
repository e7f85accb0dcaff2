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

// Package dirs provides base directory definitions for the system
package dirs

import (
	"os"
	"os/user"
	"path/filepath"

	"github.com/pkg/errors"
)

var (
	// Home is the home directory of the user
	Home string
	// ConfigHome is the full path to the directory in which user-specific
	// configurations should be written.
	ConfigHome string
	// DataHome is the full path to the directory in which user-specific data
	// files should be written.
	DataHome string
	// CacheHome is the full path to the directory in which user-specific
	// non-essential cached data should be written.
	CacheHome string
)

// Paths are the directories of one application under each base directory
type Paths struct {
	Home   string
	Config string
	Data   string
	Cache  string
}

func init() {
	Reload()
}

// Reload reloads the directory definitions
func Reload() {
	initDirs()
}

// For returns the directories of the named application under the current
// base directories
func For(app string) Paths {
	return Paths{
		Home:   Home,
		Config: filepath.Join(ConfigHome, app),
		Data:   filepath.Join(DataHome, app),
		Cache:  filepath.Join(CacheHome, app),
	}
}

// Ensure creates every application directory that does not exist yet
func (p Paths) Ensure() error {
	for _, dir := range []string{p.Config, p.Data, p.Cache} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "creating %s", dir)
		}
	}

	return nil
}

func getHomeDir() string {
	usr, err := user.Current()
	if err != nil {
		panic(errors.Wrap(err, "getting home dir"))
	}

	return usr.HomeDir
}

// baseDir is a base directory set by an environment variable, falling back
// to a path relative to the home directory
type baseDir struct {
	dest     *string
	env      string
	fallback string
}

// readPath returns the directory set in the environment variable. Relative
// paths are ignored, as XDG requires.
func readPath(envName, defaultPath string) string {
	if dir := os.Getenv(envName); dir != "" && filepath.IsAbs(dir) {
		return dir
	}

	return defaultPath
}
