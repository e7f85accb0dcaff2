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

//go:build linux || darwin || freebsd

package dirs

import (
	"path/filepath"
)

// xdgDirs are the XDG base directories and their defaults under the home directory
var xdgDirs = []baseDir{
	{dest: &ConfigHome, env: "XDG_CONFIG_HOME", fallback: ".config"},
	{dest: &DataHome, env: "XDG_DATA_HOME", fallback: filepath.Join(".local", "share")},
	{dest: &CacheHome, env: "XDG_CACHE_HOME", fallback: ".cache"},
}

func initDirs() {
	Home = getHomeDir()

	for _, d := range xdgDirs {
		*d.dest = readPath(d.env, filepath.Join(Home, d.fallback))
	}
}
