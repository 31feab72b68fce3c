package viewsync

import "time"

// Role identifies one of the two synchronized viewports.
type Role int

const (
	Primary Role = iota
	Secondary
)

// Other returns the opposite role.
func (r Role) Other() Role {
	if r == Primary {
		return Secondary
	}
	return Primary
}

func (r Role) String() string {
	switch r {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	default:
		return "unknown"
	}
}

func (r Role) valid() bool { return r == Primary || r == Secondary }

// ItemID is the stable key shared by both viewports (the message id).
// The empty ItemID means "no item".
type ItemID string

// Request asks the engine to align the viewport opposite Source on ItemID.
type Request struct {
	ItemID      ItemID
	Source      Role
	RequestedAt time.Time
}

// Timing holds the engine's delays.
type Timing struct {
	// Debounce is how long a viewport must stay still before its focused
	// item is reported.
	Debounce time.Duration
	// RateLimit is the minimum gap between two fired syncs.
	RateLimit time.Duration
	// Settle is the delay between firing a sync and issuing the scroll.
	Settle time.Duration
	// Cooldown must exceed a smooth-scroll animation; detection stays
	// suppressed until it expires.
	Cooldown time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		Debounce:  150 * time.Millisecond,
		RateLimit: 100 * time.Millisecond,
		Settle:    50 * time.Millisecond,
		Cooldown:  500 * time.Millisecond,
	}
}

func (t Timing) withDefaults() Timing {
	d := DefaultTiming()
	if t.Debounce <= 0 {
		t.Debounce = d.Debounce
	}
	if t.RateLimit <= 0 {
		t.RateLimit = d.RateLimit
	}
	if t.Settle <= 0 {
		t.Settle = d.Settle
	}
	if t.Cooldown <= 0 {
		t.Cooldown = d.Cooldown
	}
	return t
}
