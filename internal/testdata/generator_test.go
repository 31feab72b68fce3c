package testdata

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/convolens/internal/config"
	"github.com/jask/convolens/internal/database"
	"github.com/jask/convolens/internal/database/repository"
	"github.com/jask/convolens/internal/service"
)

func TestBuildIsDeterministic(t *testing.T) {
	a := Build(Options{Conversations: 2, Messages: 12, Seed: 7})
	b := Build(Options{Conversations: 2, Messages: 12, Seed: 7})
	require.Equal(t, a, b)
	require.Len(t, a, 2)
	require.Len(t, a[0].Messages, 12)
	require.Equal(t, "customer", a[0].Messages[0].Author)
	require.Equal(t, "agent", a[0].Messages[1].Author)
	for _, m := range a[0].Messages {
		if m.Analysis != nil {
			require.GreaterOrEqual(t, m.Analysis.Sentiment, -1.0)
			require.LessOrEqual(t, m.Analysis.Sentiment, 1.0)
		}
	}
	require.NotEqual(t, a, Build(Options{Conversations: 2, Messages: 12, Seed: 8}))
}

func TestBuildUnanalyzedShare(t *testing.T) {
	for _, m := range Build(Options{Messages: 30, Unanalyzed: 1})[0].Messages {
		require.Nil(t, m.Analysis)
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(config.DriverModernc, filepath.Join(t.TempDir(), "gen.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.RunMigrations(db, config.DriverModernc))
	imp := &service.ImportService{DB: db}

	opts := Options{Conversations: 3, Messages: 20, Seed: 1}
	_, err = Generate(ctx, imp, opts)
	require.NoError(t, err)
	res, err := Generate(ctx, imp, opts)
	require.NoError(t, err)
	require.Len(t, res, 3)

	convs, err := repository.NewConversationRepo(db).List(ctx)
	require.NoError(t, err)
	require.Len(t, convs, 3)
	for _, c := range convs {
		require.Equal(t, 20, c.MessageCount)
	}
}
