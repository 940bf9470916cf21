// Package importstate remembers which export files were imported so the
// batch importer can skip unchanged files.
package importstate

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB tracks imported files by path, size and content hash.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite state database at dir/import-state.db.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "import-state.db"))
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS imported_files (
		path        TEXT NOT NULL,
		user_id     INTEGER NOT NULL,
		size        INTEGER NOT NULL,
		hash        TEXT NOT NULL,
		sessions    INTEGER NOT NULL DEFAULT 0,
		imported_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (path, user_id)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &DB{db: db}, nil
}

// IsImported reports whether the file was imported for userID with the same
// size and hash.
func (s *DB) IsImported(path string, userID int, size int64, hash string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM imported_files WHERE path = ? AND user_id = ? AND size = ? AND hash = ?`,
		path, userID, size, hash,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("querying import state: %w", err)
	}
	return count > 0, nil
}

// MarkImported records a successful import, replacing any earlier record of the file.
func (s *DB) MarkImported(path string, userID int, size int64, hash string, sessions int) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO imported_files (path, user_id, size, hash, sessions) VALUES (?, ?, ?, ?, ?)`,
		path, userID, size, hash, sessions,
	)
	if err != nil {
		return fmt.Errorf("recording import state: %w", err)
	}
	return nil
}

// Forget drops all records so every file is imported again.
func (s *DB) Forget() error {
	if _, err := s.db.Exec(`DELETE FROM imported_files`); err != nil {
		return fmt.Errorf("clearing import state: %w", err)
	}
	return nil
}

// Close closes the state database.
func (s *DB) Close() error {
	return s.db.Close()
}

// HashFile computes the SHA-256 hash of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
