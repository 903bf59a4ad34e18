// Package pgx persists credentials in Postgres, for server-rendered
// frontends that already run a pool and want sessions to survive
// process restarts without local files.
package pgx

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/estante-app/estante/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS estante_credentials (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

type Store struct {
	pool *pgxpool.Pool
}

var _ core.CredentialStore = (*Store)(nil)

// New wraps an existing pool, creating the credentials table if needed.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("create credentials table: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Load() (core.Identity, error) {
	rows, err := s.pool.Query(context.Background(), `SELECT key, value FROM estante_credentials`)
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
	ctx := context.Background()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM estante_credentials`); err != nil {
		return fmt.Errorf("reset credentials: %w", err)
	}
	for k, v := range core.EncodeRecord(id) {
		if _, err := tx.Exec(ctx,
			`INSERT INTO estante_credentials (key, value) VALUES ($1, $2)`, k, v); err != nil {
			return fmt.Errorf("write credential %q: %w", k, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

func (s *Store) Clear() error {
	if _, err := s.pool.Exec(context.Background(), `DELETE FROM estante_credentials`); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}
