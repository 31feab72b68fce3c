package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jask/convolens/internal/database/repository"
)

// Item is one message with its analysis. Both panes tag their rows with
// Message.ID.
type Item struct {
	Message  repository.Message
	Analysis repository.Analysis
	Analyzed bool
	DayLabel string // non-empty on the first message of each day
}

func (i Item) ID() string { return i.Message.ID }

// Transcript is a loaded conversation.
type Transcript struct {
	Conversation repository.Conversation
	Items        []Item
}

// IndexOf returns the position of id, or -1.
func (t Transcript) IndexOf(id string) int {
	for i, it := range t.Items {
		if it.Message.ID == id {
			return i
		}
	}
	return -1
}

// TranscriptService loads conversations for display.
type TranscriptService struct {
	Conversations *repository.ConversationRepo
	Messages      *repository.MessageRepo
	Analyses      *repository.AnalysisRepo

	Location   *time.Location
	DateFormat string
}

func (s *TranscriptService) Load(ctx context.Context, conversationID string) (Transcript, error) {
	conv, err := s.Conversations.Get(ctx, conversationID)
	if err != nil {
		return Transcript{}, err
	}
	msgs, err := s.Messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return Transcript{}, fmt.Errorf("load messages: %w", err)
	}
	analyses, err := s.Analyses.ListByConversation(ctx, conversationID)
	if err != nil {
		return Transcript{}, fmt.Errorf("load analyses: %w", err)
	}

	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	layout := s.DateFormat
	if layout == "" {
		layout = "2006-01-02"
	}

	out := Transcript{Conversation: conv, Items: make([]Item, 0, len(msgs))}
	lastDay := ""
	for _, m := range msgs {
		a, ok := analyses[m.ID]
		day := m.SentAt.In(loc).Format(layout)
		it := Item{Message: m, Analysis: a, Analyzed: ok}
		if day != lastDay {
			it.DayLabel = day
			lastDay = day
		}
		out.Items = append(out.Items, it)
	}
	return out, nil
}

// List returns every conversation.
func (s *TranscriptService) List(ctx context.Context) ([]repository.Conversation, error) {
	return s.Conversations.List(ctx)
}
