package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foundersignal/validate-cli/internal/config"
)

func configWithDriver(driver string) config.StoreConfig {
	return config.StoreConfig{Driver: driver, DatabaseURL: "ignored"}
}

func TestOpen_DefaultsToSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "open.db")
	st, err := Open(context.Background(), config.StoreConfig{DatabaseURL: dbPath})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck

	_, ok := st.(*SQLiteStore)
	assert.True(t, ok)
}
