package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ConversationRepo handles conversations.
type ConversationRepo struct {
	db DBTX
}

func NewConversationRepo(db DBTX) *ConversationRepo { return &ConversationRepo{db: db} }

func (r *ConversationRepo) Upsert(ctx context.Context, c Conversation) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO conversations(id, title, created_at) VALUES (?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET title=excluded.title;
	`, c.ID, c.Title, formatTime(c.CreatedAt))
	return err
}

func (r *ConversationRepo) Get(ctx context.Context, id string) (Conversation, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT c.id, c.title, c.created_at, (SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id)
	FROM conversations c WHERE c.id = ?`, id)
	c, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Conversation{}, fmt.Errorf("conversation %s: %w", id, ErrNotFound)
	}
	return c, err
}

// List returns conversations oldest first.
func (r *ConversationRepo) List(ctx context.Context) ([]Conversation, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT c.id, c.title, c.created_at, (SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id)
	FROM conversations c ORDER BY c.created_at, c.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConversation(s scanner) (Conversation, error) {
	var (
		c       Conversation
		created string
	)
	if err := s.Scan(&c.ID, &c.Title, &created, &c.MessageCount); err != nil {
		return Conversation{}, err
	}
	t, err := parseTime(created)
	if err != nil {
		return Conversation{}, fmt.Errorf("conversation %s created_at: %w", c.ID, err)
	}
	c.CreatedAt = t
	return c, nil
}
