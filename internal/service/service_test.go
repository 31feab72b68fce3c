package service

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/convolens/internal/config"
	"github.com/jask/convolens/internal/database"
	"github.com/jask/convolens/internal/database/repository"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(config.DriverModernc, filepath.Join(t.TempDir(), "svc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.RunMigrations(db, config.DriverModernc))
	return db
}

func newTranscriptService(db *sql.DB) *TranscriptService {
	return &TranscriptService{
		Conversations: repository.NewConversationRepo(db),
		Messages:      repository.NewMessageRepo(db),
		Analyses:      repository.NewAnalysisRepo(db),
		Location:      time.UTC,
	}
}

const tomlTranscript = `
title = "Refund"

[[messages]]
author = "customer"
body = "I want a refund for the blender."
sent_at = 2026-04-01T23:50:00Z
[messages.analysis]
summary = "Refund request"
sentiment = -2.0
intent = "refund"
tags = ["refund", "blender"]

[[messages]]
author = "agent"
body = "Sure, I can start that now."
sent_at = 2026-04-02T00:05:00Z
`

const yamlTranscript = `
id: conv-yaml
title: Password reset
messages:
  - id: y1
    author: customer
    body: I can't log in.
    analysis:
      summary: Login failure
      sentiment: -0.4
  - id: y2
    author: agent
    body: I've sent a reset link.
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestImportTOMLThenLoad(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	imp := &ImportService{DB: db}
	path := writeFile(t, "refund.toml", tomlTranscript)

	res, err := imp.ImportFile(ctx, path)
	require.NoError(t, err)
	require.Equal(t, 2, res.Messages)
	require.Equal(t, 1, res.Analyses)
	require.Equal(t, database.DeriveID("conv", "refund"), res.ConversationID)

	again, err := imp.ImportFile(ctx, path)
	require.NoError(t, err)
	require.Equal(t, res.ConversationID, again.ConversationID)

	tr, err := newTranscriptService(db).Load(ctx, res.ConversationID)
	require.NoError(t, err)
	require.Equal(t, "Refund", tr.Conversation.Title)
	require.Len(t, tr.Items, 2)
	require.True(t, tr.Items[0].Analyzed)
	require.False(t, tr.Items[1].Analyzed)
	require.InDelta(t, -1.0, tr.Items[0].Analysis.Sentiment, 1e-9, "sentiment clamped")
	require.Equal(t, "2026-04-01", tr.Items[0].DayLabel)
	require.Equal(t, "2026-04-02", tr.Items[1].DayLabel)
	require.Equal(t, 1, tr.IndexOf(tr.Items[1].ID()))
	require.Equal(t, -1, tr.IndexOf("missing"))
}

func TestImportYAMLKeepsIDs(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	res, err := (&ImportService{DB: db}).ImportFile(ctx, writeFile(t, "reset.yaml", yamlTranscript))
	require.NoError(t, err)
	require.Equal(t, "conv-yaml", res.ConversationID)

	tr, err := newTranscriptService(db).Load(ctx, "conv-yaml")
	require.NoError(t, err)
	require.Equal(t, []string{"y1", "y2"}, []string{tr.Items[0].ID(), tr.Items[1].ID()})
	require.Equal(t, "Login failure", tr.Items[0].Analysis.Summary)
}

func TestReimportDropsRemovedMessages(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	imp := &ImportService{DB: db}
	tf, err := ParseTranscript(".yaml", []byte(yamlTranscript))
	require.NoError(t, err)
	_, err = imp.Import(ctx, "reset", tf)
	require.NoError(t, err)

	tf.Messages = tf.Messages[:1]
	_, err = imp.Import(ctx, "reset", tf)
	require.NoError(t, err)
	tr, err := newTranscriptService(db).Load(ctx, "conv-yaml")
	require.NoError(t, err)
	require.Len(t, tr.Items, 1)
}

func TestParseTranscriptRejects(t *testing.T) {
	_, err := ParseTranscript(".json", []byte(`{}`))
	require.Error(t, err)
	_, err = ParseTranscript(".toml", []byte(`title = "empty"`))
	require.Error(t, err)
	_, err = ParseTranscript(".yml", []byte("messages:\n  - author: a\n    body: \"  \"\n"))
	require.Error(t, err)
}

func TestLoadMissingConversation(t *testing.T) {
	_, err := newTranscriptService(newTestDB(t)).Load(context.Background(), "nope")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSearchRanksFuzzyMatches(t *testing.T) {
	items := []Item{
		{Message: repository.Message{ID: "a", Body: "Where is my package?"}},
		{Message: repository.Message{ID: "b", Body: "The refund was issued."}},
		{Message: repository.Message{ID: "c", Body: "Nothing relevant here."}, Analysis: repository.Analysis{Summary: "refnd confirmation"}},
	}
	got := Search(items, "refund")
	require.Len(t, got, 2)
	require.Equal(t, "b", got[0].ID)
	require.Equal(t, "c", got[1].ID)
	require.Less(t, got[1].Score, got[0].Score)

	require.Equal(t, "a", Search(items, "pack")[0].ID, "prefix match")
	require.Empty(t, Search(items, "  "))
	require.Empty(t, Search(items, "zebra"))
}

func TestWatcherReportsWrites(t *testing.T) {
	path := writeFile(t, "live.toml", tomlTranscript)
	w, err := NewWatcher(path, 0)
	require.NoError(t, err)
	defer w.Close()

	other := filepath.Join(filepath.Dir(path), "other.toml")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(tomlTranscript+"\n"), 0o644))

	select {
	case got := <-w.Changes():
		require.Equal(t, w.Path(), got)
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}

func TestWatcherCollapsesWriteBurst(t *testing.T) {
	path := writeFile(t, "burst.toml", tomlTranscript)
	w, err := NewWatcher(path, 150*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte(tomlTranscript+strings.Repeat("\n", i+1)), 0o644))
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case got := <-w.Changes():
		require.Equal(t, w.Path(), got)
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
	select {
	case <-w.Changes():
		t.Fatal("burst reported more than once")
	case <-time.After(400 * time.Millisecond):
	}
}
