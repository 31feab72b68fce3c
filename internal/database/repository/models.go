package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Conversation represents a conversation row.
type Conversation struct {
	ID           string
	Title        string
	CreatedAt    time.Time
	MessageCount int
}

// Message represents one transcript message.
type Message struct {
	ID             string
	ConversationID string
	Seq            int
	Author         string
	Body           string
	SentAt         time.Time
}

// Analysis is the per-message analysis shown beside the transcript.
type Analysis struct {
	MessageID string
	Summary   string
	Sentiment float64 // -1 .. 1
	Intent    string
	Tags      []string
}

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) { return time.Parse(timeLayout, s) }
