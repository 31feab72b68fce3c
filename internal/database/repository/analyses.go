package repository

import (
	"context"
	"strings"
)

// AnalysisRepo handles per-message analyses.
type AnalysisRepo struct {
	db DBTX
}

func NewAnalysisRepo(db DBTX) *AnalysisRepo { return &AnalysisRepo{db: db} }

func (r *AnalysisRepo) Upsert(ctx context.Context, a Analysis) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO analyses(message_id, summary, sentiment, intent, tags)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(message_id) DO UPDATE SET
	 summary=excluded.summary,
	 sentiment=excluded.sentiment,
	 intent=excluded.intent,
	 tags=excluded.tags;
	`, a.MessageID, a.Summary, a.Sentiment, a.Intent, joinTags(a.Tags))
	return err
}

// ListByConversation returns the analyses of a conversation keyed by message id.
func (r *AnalysisRepo) ListByConversation(ctx context.Context, conversationID string) (map[string]Analysis, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT a.message_id, a.summary, a.sentiment, a.intent, a.tags
	FROM analyses a JOIN messages m ON m.id = a.message_id
	WHERE m.conversation_id = ?`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]Analysis)
	for rows.Next() {
		var (
			a    Analysis
			tags string
		)
		if err := rows.Scan(&a.MessageID, &a.Summary, &a.Sentiment, &a.Intent, &tags); err != nil {
			return nil, err
		}
		a.Tags = splitTags(tags)
		out[a.MessageID] = a
	}
	return out, rows.Err()
}

func joinTags(tags []string) string {
	clean := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(strings.ReplaceAll(t, ",", " "))
		if t != "" {
			clean = append(clean, t)
		}
	}
	return strings.Join(clean, ",")
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
