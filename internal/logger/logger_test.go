package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/storeledger/internal/logger"
)

func TestNew_FileOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tui.log")

	log, err := logger.New(logger.Config{Level: "debug", File: path, Quiet: true})
	require.NoError(t, err)

	log.Sugar().Infow("checkout", "total", "25.50")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"checkout"`)
	assert.Contains(t, string(data), `"total":"25.50"`)
}

func TestNew_NoOutput(t *testing.T) {
	_, err := logger.New(logger.Config{Quiet: true})
	assert.Error(t, err)
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")

	log, err := logger.New(logger.Config{Level: "loud", File: path, Quiet: true})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("shown")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}
