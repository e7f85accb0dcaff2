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

package cmd

import (
	"flag"
	"fmt"

	"github.com/dnote/replica/pkg/clock"
	"github.com/dnote/replica/pkg/server/app"
	"github.com/dnote/replica/pkg/server/config"
	"github.com/dnote/replica/pkg/server/database"
	"github.com/dnote/replica/pkg/server/log"
	"gorm.io/gorm"
)

func initDB(dbPath, logLevel string) *gorm.DB {
	db := database.Open(dbPath, logLevel)
	database.InitSchema(db)

	if err := database.EnableWAL(db); err != nil {
		log.ErrorWrap(err, "continuing without WAL")
	}

	return db
}

func initApp(cfg config.Config) app.App {
	db := initDB(cfg.DBPath, cfg.LogLevel)

	return app.App{
		DB:       db,
		Clock:    clock.New(),
		Entities: cfg.Entities,
		AppEnv:   cfg.AppEnv,
		Port:     cfg.Port,
		DBPath:   cfg.DBPath,
	}
}

// printFlags prints flags with -- prefix for consistency with CLI
func printFlags(fs *flag.FlagSet) {
	fs.VisitAll(func(f *flag.Flag) {
		fmt.Printf("  --%s", f.Name)

		// Print type hint for non-boolean flags
		name, usage := flag.UnquoteUsage(f)
		if name != "" {
			fmt.Printf(" %s", name)
		}
		fmt.Println()

		if usage != "" {
			fmt.Printf("    \t%s", usage)
			if f.DefValue != "" && f.DefValue != "false" {
				fmt.Printf(" (default: %s)", f.DefValue)
			}
			fmt.Println()
		}
	})
}

// setupFlagSet creates a FlagSet with standard usage format
func setupFlagSet(name, usageCmd string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Printf(`Usage:
  %s [flags]

Flags:
`, usageCmd)
		printFlags(fs)
	}
	return fs
}
