// Package store persists the ids of records already emitted, so later runs
// can reject them before aggregation.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLite is a seen-id store backed by a single sqlite file.
type SQLite struct {
	conn *sql.DB
}

// Open opens or creates the store at path. ":memory:" opens a private
// in-memory database.
func Open(path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	// One connection keeps an in-memory database alive and serializes writers.
	conn.SetMaxOpenConns(1)

	if path != ":memory:" {
		if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to enable WAL: %w", err)
		}
	}

	s := &SQLite{conn: conn}
	if err := s.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) init() error {
	const schema = `
CREATE TABLE IF NOT EXISTS seen (
  kind TEXT NOT NULL,
  id INTEGER NOT NULL,
  firstSeenAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (kind, id)
);`
	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// SeenIDs returns every id remembered for kind.
func (s *SQLite) SeenIDs(ctx context.Context, kind string) ([]uint64, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id FROM seen WHERE kind = ? ORDER BY rowid`, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to query seen ids: %w", err)
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		// ids are stored as the signed reinterpretation of the uint64 bits
		ids = append(ids, uint64(id))
	}
	return ids, rows.Err()
}

// Remember stores ids for kind and returns how many were new.
func (s *SQLite) Remember(ctx context.Context, kind string, ids []uint64) (int, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO seen (kind, id) VALUES (?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, id := range ids {
		res, err := stmt.ExecContext(ctx, kind, int64(id))
		if err != nil {
			return 0, fmt.Errorf("failed to remember id %d: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return added, nil
}

// Count returns the number of ids remembered for kind.
func (s *SQLite) Count(ctx context.Context, kind string) (int, error) {
	var n int
	err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM seen WHERE kind = ?`, kind).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count seen ids: %w", err)
	}
	return n, nil
}

// Forget removes every id remembered for kind.
func (s *SQLite) Forget(ctx context.Context, kind string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM seen WHERE kind = ?`, kind); err != nil {
		return fmt.Errorf("failed to forget %s: %w", kind, err)
	}
	return nil
}
