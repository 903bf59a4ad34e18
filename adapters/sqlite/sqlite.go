// Package sqlite persists credentials in a local SQLite database, for
// apps that already keep their offline state in one.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/estante-app/estante/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS credentials (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

type Store struct {
	db *sql.DB
}

var _ core.CredentialStore = (*Store)(nil)

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open credential db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create credentials table: %w", err)
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing database handle, creating the
// credentials table if needed.
func NewWithDB(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create credentials table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Load() (core.Identity, error) {
	rows, err := s.db.Query(`SELECT key, value FROM credentials`)
	if err != nil {
		return core.Identity{}, fmt.Errorf("read credentials: %w", err)
	}
	defer rows.Close()

	rec := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return core.Identity{}, fmt.Errorf("scan credential row: %w", err)
		}
		rec[k] = v
	}
	if err := rows.Err(); err != nil {
		return core.Identity{}, fmt.Errorf("read credentials: %w", err)
	}
	return core.DecodeRecord(rec)
}

func (s *Store) Save(id core.Identity) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM credentials`); err != nil {
		return fmt.Errorf("reset credentials: %w", err)
	}
	for k, v := range core.EncodeRecord(id) {
		if _, err := tx.Exec(`INSERT INTO credentials (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("write credential %q: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM credentials`); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}
