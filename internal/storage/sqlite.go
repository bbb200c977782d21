package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Schema DDL for the objects table. One row per registered record.
const createObjects = `CREATE TABLE IF NOT EXISTS objects (
    key TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    document TEXT NOT NULL
);`

// SQLiteFile stores all records in a single SQLite database file. Each Store
// rewrites the objects table inside one transaction.
type SQLiteFile struct {
	path string
}

// NewSQLiteFile returns a backend using the database at path.
func NewSQLiteFile(path string) *SQLiteFile {
	return &SQLiteFile{path: path}
}

// Location returns the database path.
func (s *SQLiteFile) Location() string { return s.path }

// Load reads every row of the objects table. A missing database file yields
// an error wrapping fs.ErrNotExist.
func (s *SQLiteFile) Load() (map[string]json.RawMessage, error) {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("opening %s: %w", s.path, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("stat %s: %w", s.path, err)
	}

	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query("SELECT key, document FROM objects")
	if err != nil {
		return nil, fmt.Errorf("querying objects: %w", err)
	}
	defer rows.Close()

	objects := make(map[string]json.RawMessage)
	for rows.Next() {
		var key, document string
		if err := rows.Scan(&key, &document); err != nil {
			return nil, fmt.Errorf("scanning object: %w", err)
		}
		if !json.Valid([]byte(document)) {
			return nil, fmt.Errorf("object %s: invalid JSON document", key)
		}
		objects[key] = json.RawMessage(document)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating objects: %w", err)
	}
	return objects, nil
}

// Store replaces the content of the objects table with objects.
func (s *SQLiteFile) Store(objects map[string]json.RawMessage) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(s.path), err)
	}

	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning store transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM objects"); err != nil {
		return fmt.Errorf("clearing objects: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO objects (key, kind, document) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for key, doc := range objects {
		kind, _, _ := strings.Cut(key, ".")
		if _, err := stmt.Exec(key, kind, string(doc)); err != nil {
			return fmt.Errorf("inserting %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing store transaction: %w", err)
	}
	return nil
}

// open opens the database and makes sure the schema exists.
func (s *SQLiteFile) open() (*sql.DB, error) {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.path, err)
	}
	if _, err := db.Exec(createObjects); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return db, nil
}
