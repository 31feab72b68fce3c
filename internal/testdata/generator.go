// Package testdata generates synthetic conversations for demos and load
// testing the viewer.
package testdata

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/jask/convolens/internal/service"
)

// Options controls Generate.
type Options struct {
	Conversations int
	Messages      int
	// Seed makes output reproducible; equal seeds give equal transcripts.
	Seed uint64
	// Unanalyzed is the share of messages left without analysis, 0..1.
	Unanalyzed float64
	Start      time.Time
}

var (
	openers = []string{"Hi,", "Hello,", "Quick question:", "Sorry to bother you,", "Following up:"}
	topics  = []string{"my invoice", "the delivery", "a login problem", "the refund", "my subscription", "the warranty"}
	details = []string{
		"it has been pending for days.",
		"the page keeps showing an error.",
		"I was charged twice this month.",
		"nobody replied to my last email.",
		"the tracking number does not work.",
		"I need it sorted before the weekend.",
	}
	replies = []string{
		"Thanks for reaching out, let me check that for you.",
		"I can see the issue on our side and I'm fixing it now.",
		"Could you confirm the email address on the account?",
		"I've escalated this to the billing team.",
		"That should be resolved now, can you try again?",
		"I've added a credit to your account for the trouble.",
	}
	intents = map[string][]string{
		"customer": {"question", "complaint", "inform", "thanks"},
		"agent":    {"verify", "explain", "resolve", "close"},
	}
)

// Build returns n synthetic transcripts without touching storage.
func Build(opts Options) []service.TranscriptFile {
	opts = withDefaults(opts)
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	out := make([]service.TranscriptFile, 0, opts.Conversations)
	for c := 0; c < opts.Conversations; c++ {
		start := opts.Start.Add(time.Duration(c) * 26 * time.Hour)
		topic := topics[rng.IntN(len(topics))]
		tf := service.TranscriptFile{
			Title:     fmt.Sprintf("Generated %d: %s", c+1, topic),
			CreatedAt: start,
		}
		mood := rng.Float64()*0.6 - 0.5
		at := start
		for i := 0; i < opts.Messages; i++ {
			author := "customer"
			body := fmt.Sprintf("%s %s, %s", openers[rng.IntN(len(openers))], topic, details[rng.IntN(len(details))])
			if i%2 == 1 {
				author = "agent"
				body = replies[rng.IntN(len(replies))]
			}
			if rng.IntN(4) == 0 {
				body += " " + strings.Repeat("Also, "+details[rng.IntN(len(details))]+" ", 1+rng.IntN(3))
			}
			at = at.Add(time.Duration(20+rng.IntN(300)) * time.Second)
			mf := service.MessageFile{Author: author, Body: strings.TrimSpace(body), SentAt: at}
			mood = min(max(mood+rng.Float64()*0.3-0.1, -1), 1)
			if rng.Float64() >= opts.Unanalyzed {
				intent := intents[author][rng.IntN(len(intents[author]))]
				mf.Analysis = &service.AnalysisFile{
					Summary:   fmt.Sprintf("%s about %s", strings.ToUpper(intent[:1])+intent[1:], topic),
					Sentiment: mood,
					Intent:    intent,
					Tags:      []string{strings.Fields(topic)[len(strings.Fields(topic))-1]},
				}
			}
			tf.Messages = append(tf.Messages, mf)
		}
		out = append(out, tf)
	}
	return out
}

// Generate builds transcripts and imports them. Keys are derived from the
// seed so repeated runs update rather than duplicate.
func Generate(ctx context.Context, imp *service.ImportService, opts Options) ([]service.ImportResult, error) {
	opts = withDefaults(opts)
	var out []service.ImportResult
	for i, tf := range Build(opts) {
		res, err := imp.Import(ctx, fmt.Sprintf("generated:%d:%d", opts.Seed, i+1), tf)
		if err != nil {
			return out, fmt.Errorf("generated conversation %d: %w", i+1, err)
		}
		out = append(out, res)
	}
	return out, nil
}

func withDefaults(o Options) Options {
	if o.Conversations <= 0 {
		o.Conversations = 1
	}
	if o.Messages <= 0 {
		o.Messages = 40
	}
	if o.Start.IsZero() {
		o.Start = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	}
	o.Unanalyzed = min(max(o.Unanalyzed, 0), 1)
	return o
}
