package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/storeledger/internal/ledger"
)

// Store keeps the whole state of one store as a single JSONB row.
type Store struct {
	db  *sql.DB
	key string
}

func New(db *sql.DB, key string) *Store {
	return &Store{db: db, key: key}
}

func (s *Store) Load(ctx context.Context) (ledger.State, error) {
	var raw []byte

	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM store_state WHERE store_key = $1`, s.key,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.State{}, ledger.ErrNotFound
		}

		return ledger.State{}, fmt.Errorf("querying state row: %w", err)
	}

	return ledger.DecodeState(raw)
}

func (s *Store) Save(ctx context.Context, st ledger.State) error {
	raw, err := ledger.EncodeState(st)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	query := `
		INSERT INTO store_state (store_key, state, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (store_key) DO UPDATE SET state = EXCLUDED.state, updated_at = NOW()
	`

	if _, err := s.db.ExecContext(ctx, query, s.key, string(raw)); err != nil {
		return fmt.Errorf("upserting state row: %w", err)
	}

	return nil
}
