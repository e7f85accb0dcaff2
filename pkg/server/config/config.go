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

// Package config resolves the configuration of the sync server from flags,
// environment variables and defaults
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dnote/replica/pkg/dirs"
	"github.com/dnote/replica/pkg/replica/schema"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	// AppEnvProduction represents an app environment for production.
	AppEnvProduction string = "PRODUCTION"
	// AppEnvTest represents an app environment for tests. Rate limiting is off.
	AppEnvTest string = "TEST"
	// DefaultDBDir is the default directory name for server data
	DefaultDBDir = "replica"
	// DefaultDBFilename is the default database filename
	DefaultDBFilename = "server.db"
	// DefaultEnvFile is the dotenv file loaded by LoadEnv when no path is given
	DefaultEnvFile = ".env"
)

var (
	// DefaultDBPath is the default path to the database file
	DefaultDBPath = filepath.Join(dirs.DataHome, DefaultDBDir, DefaultDBFilename)
)

var (
	// ErrDBMissingPath is an error for an incomplete configuration missing the database path
	ErrDBMissingPath = errors.New("DB Path is empty")
	// ErrPortInvalid is an error for an incomplete configuration with invalid port
	ErrPortInvalid = errors.New("Invalid Port")
	// ErrLogLevelInvalid is an error for an unknown log level
	ErrLogLevelInvalid = errors.New("Invalid log level")
	// ErrEntityInvalid is an error for an entity name that cannot be served
	ErrEntityInvalid = errors.New("Invalid entity")
)

var logLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// getOrEnv returns value if non-empty, otherwise env var, otherwise default
func getOrEnv(value, envKey, defaultVal string) string {
	if value != "" {
		return value
	}
	if env := os.Getenv(envKey); env != "" {
		return env
	}
	return defaultVal
}

// splitList splits a comma separated list and drops empty items
func splitList(s string) []string {
	ret := []string{}
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			ret = append(ret, item)
		}
	}

	return ret
}

// LoadEnv loads environment variables from a dotenv file. Variables already
// set in the environment take precedence. A missing file is not an error.
func LoadEnv(path string) error {
	if path == "" {
		path = DefaultEnvFile
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "loading %s", path)
	}

	return nil
}

// Config is an application configuration
type Config struct {
	AppEnv   string
	Port     string
	DBPath   string
	LogLevel string
	// Entities restricts the entities served. Empty serves every valid entity name.
	Entities []string
}

// Params are the configuration parameters for creating a new Config
type Params struct {
	AppEnv   string
	Port     string
	DBPath   string
	LogLevel string
	// Entities is a comma separated list of entity names
	Entities string
}

// New constructs and returns a new validated config.
// Empty string params will fall back to environment variables and defaults.
func New(p Params) (Config, error) {
	c := Config{
		AppEnv:   getOrEnv(p.AppEnv, "APP_ENV", AppEnvProduction),
		Port:     getOrEnv(p.Port, "PORT", "3001"),
		DBPath:   getOrEnv(p.DBPath, "DBPath", DefaultDBPath),
		LogLevel: getOrEnv(p.LogLevel, "LOG_LEVEL", "info"),
		Entities: splitList(getOrEnv(p.Entities, "ENTITIES", "")),
	}

	if err := validate(c); err != nil {
		return Config{}, err
	}

	return c, nil
}

// IsProd checks if the app environment is configured to be production.
func (c Config) IsProd() bool {
	return c.AppEnv == AppEnvProduction
}

// IsTest checks if the app environment is configured to be test.
func (c Config) IsTest() bool {
	return c.AppEnv == AppEnvTest
}

func validate(c Config) error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port <= 0 || port > 65535 {
		return errors.Wrapf(ErrPortInvalid, "'%s'", c.Port)
	}

	if c.DBPath == "" {
		return ErrDBMissingPath
	}

	if !logLevels[c.LogLevel] {
		return errors.Wrapf(ErrLogLevelInvalid, "'%s'", c.LogLevel)
	}

	for _, entity := range c.Entities {
		if err := schema.ValidateEntity(entity); err != nil {
			return errors.Wrapf(ErrEntityInvalid, "'%s'", entity)
		}
	}

	return nil
}
