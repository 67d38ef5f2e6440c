// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/wyniki-tenis/overlayd/internal/log"
)

// Store provides access to the overlay database.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// New wraps an open database handle.
func New(db *sql.DB) *Store {
	return &Store{
		db:     db,
		logger: log.WithComponent("store"),
	}
}

// Open opens the SQLite database at path and creates the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := OpenSQLite(path, DefaultSQLiteConfig())
	if err != nil {
		return nil, err
	}
	s := New(db)
	if err := s.InitSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// InitSchema creates the tables if absent. It is idempotent.
func (s *Store) InitSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS overlay_links (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kort_id TEXT NOT NULL UNIQUE,
	overlay_url TEXT NOT NULL,
	control_url TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS overlay_config (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	view_width INTEGER NOT NULL,
	view_height INTEGER NOT NULL,
	display_scale REAL NOT NULL,
	left_offset INTEGER NOT NULL,
	label_position TEXT NOT NULL,
	kort_all TEXT NOT NULL
);`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("store: init schema: %w", err)
	}
	return nil
}
