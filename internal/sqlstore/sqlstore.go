// Package sqlstore exports a built index to a SQLite database and loads it
// back, so other tools can query the symbol table with SQL.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"docsearch/internal/index"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

var (
	ErrDatabaseError = errors.New("database error")

	// ErrNoIndex is returned by Load when the database was never written
	// by Export.
	ErrNoIndex = errors.New("database holds no exported index")

	// ErrDigestMismatch is returned by Load when the stored entries do not
	// hash to the digest recorded at export.
	ErrDigestMismatch = errors.New("database digest mismatch")
)

// DB is an open index database.
type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(ctx context.Context, path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", ErrDatabaseError, err)
	}
	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: %s: %v", ErrDatabaseError, pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: schema: %v", ErrDatabaseError, err)
	}
	return &DB{db: db}, nil
}

// Close releases the database.
func (d *DB) Close() error { return d.db.Close() }

// Replace swaps the database contents for store in one transaction.
func (d *DB) Replace(ctx context.Context, store *index.Store) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM entries"); err != nil {
		return fmt.Errorf("failed to clear entries: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO entries (key, pos, qualified_name, anchor) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("%w: prepare: %v", ErrDatabaseError, err)
	}
	defer stmt.Close()

	for _, r := range store.Records() {
		for pos, l := range r.Links {
			if _, err := stmt.ExecContext(ctx, r.Key, pos, l.QualifiedName, l.Anchor); err != nil {
				return fmt.Errorf("insert %q: %w", r.Key, err)
			}
		}
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO metadata (key, value) VALUES ('digest', ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		store.Digest()); err != nil {
		return fmt.Errorf("failed to record digest: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Records returns the stored records, keys in byte order and links in
// group order.
func (d *DB) Records(ctx context.Context) ([]index.Record, error) {
	// BINARY collation orders keys like Go string comparison.
	rows, err := d.db.QueryContext(ctx,
		"SELECT key, qualified_name, anchor FROM entries ORDER BY key, pos")
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var out []index.Record
	for rows.Next() {
		var key string
		var l index.Link
		if err := rows.Scan(&key, &l.QualifiedName, &l.Anchor); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrDatabaseError, err)
		}
		if n := len(out); n > 0 && out[n-1].Key == key {
			out[n-1].Links = append(out[n-1].Links, l)
			continue
		}
		out = append(out, index.Record{Key: key, Links: []index.Link{l}})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %v", ErrDatabaseError, err)
	}
	return out, nil
}

// Digest returns the digest recorded by the last Replace, or "" if none.
func (d *DB) Digest(ctx context.Context) (string, error) {
	var v string
	err := d.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = 'digest'").Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

// Export writes store to the database at path, replacing its contents.
func Export(ctx context.Context, path string, store *index.Store) error {
	d, err := Open(ctx, path)
	if err != nil {
		return err
	}
	if err := d.Replace(ctx, store); err != nil {
		d.Close()
		return err
	}
	return d.Close()
}

// Load rebuilds the store exported to path and verifies it against the
// recorded digest. A missing file is an error wrapping os.ErrNotExist.
func Load(ctx context.Context, path string) (*index.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	d, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	want, err := d.Digest(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: digest: %v", ErrDatabaseError, err)
	}
	if want == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrNoIndex)
	}
	records, err := d.Records(ctx)
	if err != nil {
		return nil, err
	}
	st, err := index.FromRecords(records)
	if err != nil {
		return nil, err
	}
	if got := st.Digest(); got != want {
		return nil, fmt.Errorf("%w: want %s, got %s", ErrDigestMismatch, want, got)
	}
	return st, nil
}
