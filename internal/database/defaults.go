package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jask/convolens/internal/database/repository"
)

// DemoConversationID is the id of the conversation SeedDemo writes.
var DemoConversationID = DeriveID("conv", "demo")

// DeriveID returns a stable id for a kind and key.
func DeriveID(kind, key string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(kind+":"+key)).String()
}

type demoTurn struct {
	author    string
	body      string
	summary   string
	sentiment float64
	intent    string
	tags      []string
}

var demoTurns = []demoTurn{
	{"customer", "Hi, my order #4411 still shows as processing after six days.", "Order delayed past expected window", -0.3, "complaint", []string{"shipping", "order"}},
	{"agent", "Sorry about that! Let me pull up the order. Can you confirm the email on the account?", "Acknowledges, asks for verification", 0.2, "verify", []string{"identity"}},
	{"customer", "It's dana@example.com.", "Provides account email", 0, "inform", []string{"identity"}},
	{"agent", "Thanks. I see the package was held at the regional hub because of an address mismatch.", "Explains hold cause", 0.1, "explain", []string{"shipping", "address"}},
	{"customer", "Mismatch? I've lived here four years and never had a problem.", "Pushback on address issue", -0.5, "complaint", []string{"address"}},
	{"agent", "Understood. The unit number was missing on the label. Could you confirm it?", "Requests missing unit number", 0.1, "verify", []string{"address"}},
	{"customer", "Unit 3B. It's in my profile, so I don't know why it was dropped.", "Supplies unit, frustration persists", -0.4, "inform", []string{"address"}},
	{"agent", "I've corrected the label and asked the hub to release it today.", "Fix applied, release requested", 0.5, "resolve", []string{"shipping", "address"}},
	{"customer", "Will it still arrive before Friday? It's a birthday gift.", "Asks about delivery deadline", -0.1, "question", []string{"deadline"}},
	{"agent", "The carrier estimate is Thursday. I've also upgraded it to express at no charge.", "Commits to Thursday, upgrades shipping", 0.7, "resolve", []string{"shipping", "goodwill"}},
	{"customer", "Oh, that's great, thank you.", "Relief", 0.8, "thanks", nil},
	{"agent", "You're welcome! You'll get a tracking email within the hour.", "Sets expectation for tracking", 0.6, "inform", []string{"tracking"}},
	{"customer", "One more thing: can I change the gift message?", "New request: gift message", 0.1, "question", []string{"gift"}},
	{"agent", "Yes, what would you like it to say?", "Invites new text", 0.3, "clarify", []string{"gift"}},
	{"customer", "\"Happy birthday, Sam. Love, D.\"", "Provides gift message", 0.4, "inform", []string{"gift"}},
	{"agent", "Done. The new message is attached to the order.", "Gift message updated", 0.5, "resolve", []string{"gift"}},
	{"customer", "Perfect. Is there anything else I need to do?", "Checks for remaining steps", 0.3, "question", nil},
	{"agent", "Nothing else. I'll keep the case open until the package is delivered.", "Keeps case open", 0.5, "close", []string{"followup"}},
	{"customer", "Thanks for sorting this out so fast.", "Gratitude", 0.9, "thanks", nil},
	{"agent", "Happy to help. Have a great week!", "Sign-off", 0.7, "close", nil},
}

// SeedDemo ensures a demo conversation exists. It is idempotent and safe to
// run on every startup.
func SeedDemo(ctx context.Context, db *sql.DB) error {
	start := time.Date(2026, 3, 2, 23, 40, 0, 0, time.UTC)
	return WithTx(ctx, db, func(tx *sql.Tx) error {
		convRepo := repository.NewConversationRepo(tx)
		msgRepo := repository.NewMessageRepo(tx)
		anRepo := repository.NewAnalysisRepo(tx)
		if err := convRepo.Upsert(ctx, repository.Conversation{
			ID:        DemoConversationID,
			Title:     "Delayed order #4411",
			CreatedAt: start,
		}); err != nil {
			return fmt.Errorf("seed conversation: %w", err)
		}
		for i, turn := range demoTurns {
			id := DeriveID("msg", fmt.Sprintf("demo:%d", i+1))
			msg := repository.Message{
				ID:             id,
				ConversationID: DemoConversationID,
				Seq:            i + 1,
				Author:         turn.author,
				Body:           turn.body,
				SentAt:         start.Add(time.Duration(i) * 2 * time.Minute),
			}
			if err := msgRepo.Upsert(ctx, msg); err != nil {
				return fmt.Errorf("seed message %d: %w", i+1, err)
			}
			if err := anRepo.Upsert(ctx, repository.Analysis{
				MessageID: id,
				Summary:   turn.summary,
				Sentiment: turn.sentiment,
				Intent:    turn.intent,
				Tags:      turn.tags,
			}); err != nil {
				return fmt.Errorf("seed analysis %d: %w", i+1, err)
			}
		}
		return nil
	})
}
