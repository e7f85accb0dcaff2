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

// Package database provides the SQLite connection that backs the local replica
package database

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	// sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

var (
	// ErrNotTransaction is returned when Commit or Rollback is called on a
	// connection that is not a transaction
	ErrNotTransaction = errors.New("not in a transaction")
	// ErrInTransaction is returned when Begin is called on a transaction
	ErrInTransaction = errors.New("already in a transaction")
)

// SQLCommon is the set of operations shared by a connection and a transaction
type SQLCommon interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type sqlDB interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	Close() error
}

type sqlTx interface {
	Commit() error
	Rollback() error
}

// DB wraps either a database connection or a transaction on it, so that
// the same code runs in and out of a transaction.
type DB struct {
	Conn     SQLCommon
	Filepath string
}

// Open opens a SQLite database at the given path, creating the parent
// directory if necessary. In-memory URIs are passed through as they are.
func Open(path string) (*DB, error) {
	if !isMemory(path) {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "creating database directory at %s", dir)
		}
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening db connection")
	}

	// A single connection serializes writers and keeps a shared in-memory
	// database alive for the life of the handle.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "setting busy timeout")
	}

	return &DB{Conn: conn, Filepath: path}, nil
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

// IsTx reports whether d is bound to a transaction
func (d *DB) IsTx() bool {
	_, ok := d.Conn.(sqlTx)
	return ok
}

// Begin starts a transaction
func (d *DB) Begin(ctx context.Context) (*DB, error) {
	db, ok := d.Conn.(sqlDB)
	if !ok {
		return nil, ErrInTransaction
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "beginning a transaction")
	}

	return &DB{Conn: tx, Filepath: d.Filepath}, nil
}

// Commit commits the transaction
func (d *DB) Commit() error {
	tx, ok := d.Conn.(sqlTx)
	if !ok {
		return ErrNotTransaction
	}

	return tx.Commit()
}

// Rollback rolls back the transaction
func (d *DB) Rollback() error {
	tx, ok := d.Conn.(sqlTx)
	if !ok {
		return ErrNotTransaction
	}

	return tx.Rollback()
}

// Close closes the underlying connection
func (d *DB) Close() error {
	db, ok := d.Conn.(sqlDB)
	if !ok {
		return ErrInTransaction
	}

	return db.Close()
}

// Exec executes a query that does not return rows
func (d *DB) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return d.Conn.ExecContext(ctx, query, args...)
}

// Query executes a query that returns rows
func (d *DB) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return d.Conn.QueryContext(ctx, query, args...)
}

// QueryRow executes a query that is expected to return at most one row
func (d *DB) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return d.Conn.QueryRowContext(ctx, query, args...)
}

// WithTx runs fn in a transaction. If d is already a transaction, fn runs in
// it directly and the caller stays responsible for committing.
func (d *DB) WithTx(ctx context.Context, fn func(tx *DB) error) error {
	if d.IsTx() {
		return fn(d)
	}

	tx, err := d.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}

	return nil
}
