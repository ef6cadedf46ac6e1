// Package storage picks the ledger repository configured for the process.
package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/storeledger/internal/config"
	"github.com/MrJamesThe3rd/storeledger/internal/database"
	"github.com/MrJamesThe3rd/storeledger/internal/ledger"
	"github.com/MrJamesThe3rd/storeledger/internal/ledger/boltstore"
	"github.com/MrJamesThe3rd/storeledger/internal/ledger/store"
)

// Open returns the repository for cfg.Store.Driver together with the function
// that releases it.
func Open(ctx context.Context, cfg *config.Config) (ledger.Repository, func() error, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		db, err := database.New(cfg.ConnectionString())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}

		zap.S().Infow("using postgres store", "host", cfg.DB.Host, "db", cfg.DB.Name, "key", cfg.Store.Key)

		return store.New(db, cfg.Store.Key), db.Close, nil
	case config.DriverBolt:
		s, err := boltstore.Open(cfg.Store.BoltPath, cfg.Store.Key)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open bolt store: %w", err)
		}

		zap.S().Infow("using bolt store", "path", cfg.Store.BoltPath, "key", cfg.Store.Key)

		return s, s.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
