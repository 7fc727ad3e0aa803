package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/glebarez/sqlite"
	"github.com/leg100/rtable/internal/logging"
)

// SQLiteStore keeps widths in a SQLite database, one row per column.
type SQLiteStore struct {
	db     *sql.DB
	logger logging.Interface
}

// OpenSQLite opens the SQLite database at path and creates tables if needed.
func OpenSQLite(path string, logger logging.Interface) (*SQLiteStore, error) {
	if logger == nil {
		logger = logging.Discard
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	s := &SQLiteStore{db: db, logger: logger}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS column_widths (
		key TEXT NOT NULL,
		col INTEGER NOT NULL,
		width REAL NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (key, col)
	);
	`
	_, err := s.db.Exec(query)
	return err
}

// Save replaces the widths saved under key.
func (s *SQLiteStore) Save(key string, w []float64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// remove columns beyond the new count
	if _, err := tx.Exec(`DELETE FROM column_widths WHERE key = ? AND col >= ?`, key, len(w)); err != nil {
		return err
	}
	now := time.Now().Unix()
	for col, width := range w {
		_, err := tx.Exec(`
		INSERT INTO column_widths (key, col, width, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key, col) DO UPDATE SET
			width = excluded.width,
			updated_at = excluded.updated_at
		`, key, col, width, now)
		if err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Debug("saved widths to sqlite", "key", key)
	return nil
}

// Load retrieves the widths saved under key.
func (s *SQLiteStore) Load(key string) ([]float64, error) {
	rows, err := s.db.Query(`SELECT col, width FROM column_widths WHERE key = ? ORDER BY col`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var w []float64
	for rows.Next() {
		var (
			col   int
			width float64
		)
		if err := rows.Scan(&col, &width); err != nil {
			return nil, err
		}
		if col != len(w) {
			return nil, fmt.Errorf("widths for %s: missing column %d", key, len(w))
		}
		w = append(w, width)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(w) == 0 {
		return nil, ErrNotFound
	}
	return w, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
