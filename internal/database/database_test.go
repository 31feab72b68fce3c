package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/convolens/internal/config"
	"github.com/jask/convolens/internal/database/repository"
)

func openTestDB(t *testing.T, driver string) *repository.ConversationRepo {
	t.Helper()
	db, err := Open(driver, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, RunMigrations(db, driver))
	require.NoError(t, RunMigrations(db, driver), "second run is a no-op")
	require.NoError(t, SeedDemo(context.Background(), db))
	require.NoError(t, SeedDemo(context.Background(), db))
	return repository.NewConversationRepo(db)
}

func TestSeedDemoIdempotent(t *testing.T) {
	for _, driver := range []string{config.DriverMattn, config.DriverModernc} {
		t.Run(driver, func(t *testing.T) {
			repo := openTestDB(t, driver)
			convs, err := repo.List(context.Background())
			require.NoError(t, err)
			require.Len(t, convs, 1)
			require.Equal(t, DemoConversationID, convs[0].ID)
			require.Equal(t, len(demoTurns), convs[0].MessageCount)
		})
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("postgres", "x.db")
	require.Error(t, err)
}

func TestDeriveIDStable(t *testing.T) {
	require.Equal(t, DeriveID("msg", "a"), DeriveID("msg", "a"))
	require.NotEqual(t, DeriveID("msg", "a"), DeriveID("conv", "a"))
}
