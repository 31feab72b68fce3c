package repository

import (
	"context"
	"fmt"
)

// MessageRepo handles transcript messages.
type MessageRepo struct {
	db DBTX
}

func NewMessageRepo(db DBTX) *MessageRepo { return &MessageRepo{db: db} }

func (r *MessageRepo) Upsert(ctx context.Context, m Message) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO messages(id, conversation_id, seq, author, body, sent_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 seq=excluded.seq,
	 author=excluded.author,
	 body=excluded.body,
	 sent_at=excluded.sent_at;
	`, m.ID, m.ConversationID, m.Seq, m.Author, m.Body, formatTime(m.SentAt))
	return err
}

// ListByConversation returns messages in transcript order.
func (r *MessageRepo) ListByConversation(ctx context.Context, conversationID string) ([]Message, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, conversation_id, seq, author, body, sent_at
	FROM messages WHERE conversation_id = ? ORDER BY seq, id`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Message
	for rows.Next() {
		var (
			m    Message
			sent string
		)
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Seq, &m.Author, &m.Body, &sent); err != nil {
			return nil, err
		}
		if m.SentAt, err = parseTime(sent); err != nil {
			return nil, fmt.Errorf("message %s sent_at: %w", m.ID, err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MessageRepo) DeleteByConversation(ctx context.Context, conversationID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = ?`, conversationID)
	return err
}
