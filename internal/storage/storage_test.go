package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/storeledger/internal/config"
	"github.com/MrJamesThe3rd/storeledger/internal/ledger"
	"github.com/MrJamesThe3rd/storeledger/internal/storage"
)

func TestOpen_Bolt(t *testing.T) {
	cfg := &config.Config{}
	cfg.Store.Driver = config.DriverBolt
	cfg.Store.Key = "kiosco"
	cfg.Store.BoltPath = filepath.Join(t.TempDir(), "store.db")

	repo, closeFn, err := storage.Open(context.Background(), cfg)
	require.NoError(t, err)
	defer closeFn()

	_, err = repo.Load(context.Background())
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestOpen_UnknownDriver(t *testing.T) {
	cfg := &config.Config{}
	cfg.Store.Driver = "sqlite"

	_, _, err := storage.Open(context.Background(), cfg)
	assert.ErrorContains(t, err, `unknown store driver "sqlite"`)
}
