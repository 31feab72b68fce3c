package service

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jask/convolens/internal/database"
	"github.com/jask/convolens/internal/database/repository"
)

// TranscriptFile is the on-disk transcript format, shared by TOML and YAML.
//
//	id = "optional"
//	title = "Delayed order"
//	[[messages]]
//	author = "customer"
//	body = "..."
//	sent_at = 2026-03-02T23:40:00Z
//	[messages.analysis]
//	summary = "..."
//	sentiment = -0.3
type TranscriptFile struct {
	ID        string        `toml:"id" yaml:"id"`
	Title     string        `toml:"title" yaml:"title"`
	CreatedAt time.Time     `toml:"created_at" yaml:"created_at"`
	Messages  []MessageFile `toml:"messages" yaml:"messages"`
}

type MessageFile struct {
	ID       string        `toml:"id" yaml:"id"`
	Author   string        `toml:"author" yaml:"author"`
	Body     string        `toml:"body" yaml:"body"`
	SentAt   time.Time     `toml:"sent_at" yaml:"sent_at"`
	Analysis *AnalysisFile `toml:"analysis" yaml:"analysis"`
}

type AnalysisFile struct {
	Summary   string   `toml:"summary" yaml:"summary"`
	Sentiment float64  `toml:"sentiment" yaml:"sentiment"`
	Intent    string   `toml:"intent" yaml:"intent"`
	Tags      []string `toml:"tags" yaml:"tags"`
}

type ImportResult struct {
	ConversationID string
	Messages       int
	Analyses       int
}

// ImportService writes transcript files into the database.
type ImportService struct {
	DB *sql.DB
}

// ImportFile parses path by extension (.toml, .yaml, .yml) and replaces the
// conversation's messages. Ids missing from the file are derived from the
// file name and message position, so importing the same file twice is a
// no-op.
func (s *ImportService) ImportFile(ctx context.Context, path string) (ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{}, err
	}
	tf, err := ParseTranscript(filepath.Ext(path), data)
	if err != nil {
		return ImportResult{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	key := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return s.Import(ctx, key, tf)
}

// ParseTranscript decodes a transcript by file extension.
func ParseTranscript(ext string, data []byte) (TranscriptFile, error) {
	var tf TranscriptFile
	switch strings.ToLower(ext) {
	case ".toml":
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&tf); err != nil {
			return tf, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &tf); err != nil {
			return tf, err
		}
	default:
		return tf, fmt.Errorf("unsupported transcript format %q", ext)
	}
	if len(tf.Messages) == 0 {
		return tf, fmt.Errorf("transcript has no messages")
	}
	for i, m := range tf.Messages {
		if strings.TrimSpace(m.Body) == "" {
			return tf, fmt.Errorf("message %d: empty body", i+1)
		}
	}
	return tf, nil
}

// Import writes an already parsed transcript. key seeds derived ids.
func (s *ImportService) Import(ctx context.Context, key string, tf TranscriptFile) (ImportResult, error) {
	convID := tf.ID
	if convID == "" {
		convID = database.DeriveID("conv", key)
	}
	title := tf.Title
	if title == "" {
		title = key
	}
	created := tf.CreatedAt
	if created.IsZero() {
		created = firstSent(tf)
	}

	res := ImportResult{ConversationID: convID}
	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		msgRepo := repository.NewMessageRepo(tx)
		anRepo := repository.NewAnalysisRepo(tx)
		if err := repository.NewConversationRepo(tx).Upsert(ctx, repository.Conversation{ID: convID, Title: title, CreatedAt: created}); err != nil {
			return err
		}
		if err := msgRepo.DeleteByConversation(ctx, convID); err != nil {
			return err
		}
		for i, mf := range tf.Messages {
			id := mf.ID
			if id == "" {
				id = database.DeriveID("msg", fmt.Sprintf("%s:%d", convID, i+1))
			}
			sent := mf.SentAt
			if sent.IsZero() {
				sent = created.Add(time.Duration(i) * time.Minute)
			}
			author := mf.Author
			if author == "" {
				author = "unknown"
			}
			if err := msgRepo.Upsert(ctx, repository.Message{
				ID:             id,
				ConversationID: convID,
				Seq:            i + 1,
				Author:         author,
				Body:           strings.TrimSpace(mf.Body),
				SentAt:         sent,
			}); err != nil {
				return fmt.Errorf("message %d: %w", i+1, err)
			}
			res.Messages++
			if mf.Analysis == nil {
				continue
			}
			a := mf.Analysis
			if err := anRepo.Upsert(ctx, repository.Analysis{
				MessageID: id,
				Summary:   a.Summary,
				Sentiment: clamp(a.Sentiment, -1, 1),
				Intent:    a.Intent,
				Tags:      a.Tags,
			}); err != nil {
				return fmt.Errorf("analysis %d: %w", i+1, err)
			}
			res.Analyses++
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	return res, nil
}

func firstSent(tf TranscriptFile) time.Time {
	for _, m := range tf.Messages {
		if !m.SentAt.IsZero() {
			return m.SentAt
		}
	}
	return database.Now()
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
