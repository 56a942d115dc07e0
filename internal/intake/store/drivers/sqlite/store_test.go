package sqlite_test

import (
	"testing"

	"github.com/aussiebroadwan/leadflow/internal/intake/store"
	"github.com/aussiebroadwan/leadflow/internal/intake/store/drivers/sqlite"
	"github.com/aussiebroadwan/leadflow/internal/intake/store/storetest"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := sqlite.NewStore(":memory:")
		require.NoError(t, err)
		require.NoError(t, s.ApplyMigrations())
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestMigrationsAreIdempotent(t *testing.T) {
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.ApplyMigrations())
}
