// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const visitSchema = `
CREATE TABLE IF NOT EXISTS visits (
	profile    TEXT PRIMARY KEY,
	first_seen INTEGER NOT NULL
)`

// SQLiteStore keeps markers in a visits table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if needed) the database at path.
// Use ":memory:" for a throwaway store.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000", visitSchema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialise visit store: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) MarkVisited(ctx context.Context, profile string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO visits (profile, first_seen) VALUES (?, ?)`,
		profile, time.Now().Unix())
	if err != nil {
		return false, fmt.Errorf("record visit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *SQLiteStore) Forget(ctx context.Context, profile string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM visits WHERE profile = ?`, profile); err != nil {
		return fmt.Errorf("forget visit: %w", err)
	}
	return nil
}

// FirstSeen returns when profile was first recorded.
func (s *SQLiteStore) FirstSeen(ctx context.Context, profile string) (time.Time, bool, error) {
	var unix int64
	err := s.db.QueryRowContext(ctx, `SELECT first_seen FROM visits WHERE profile = ?`, profile).Scan(&unix)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return time.Unix(unix, 0), true, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
