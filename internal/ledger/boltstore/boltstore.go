// Package boltstore persists a store's state in an embedded bbolt file, for
// single-till installs without a database server.
package boltstore

import (
	"context"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/MrJamesThe3rd/storeledger/internal/ledger"
)

var bucketState = []byte("state")

type Store struct {
	db  *bolt.DB
	key []byte
}

// Open opens or creates the file at path. Only one process may hold it.
func Open(path, key string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt file %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketState)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &Store{db: db, key: []byte(key)}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Load(ctx context.Context) (ledger.State, error) {
	if err := ctx.Err(); err != nil {
		return ledger.State{}, err
	}

	var raw []byte

	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketState).Get(s.key); v != nil {
			// v is only valid inside the transaction.
			raw = append([]byte(nil), v...)
		}

		return nil
	})
	if err != nil {
		return ledger.State{}, fmt.Errorf("reading state: %w", err)
	}

	if raw == nil {
		return ledger.State{}, ledger.ErrNotFound
	}

	return ledger.DecodeState(raw)
}

func (s *Store) Save(ctx context.Context, st ledger.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := ledger.EncodeState(st)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketState).Put(s.key, raw)
	})
	if err != nil {
		return fmt.Errorf("writing state: %w", err)
	}

	return nil
}
