package draft

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Guard limits how often each owner can request drafts.
//
// Every owner can make Limit requests within a rolling Window. Requests beyond
// the limit are rejected with ErrExhausted without calling the drafter.
type Guard struct {
	drafter Drafter
	limit   int
	window  time.Duration
	now     func() time.Time

	mu    sync.Mutex
	calls map[uuid.UUID][]time.Time
}

// NewGuard wraps a drafter. If now is nil, time.Now is used.
func NewGuard(drafter Drafter, limit int, window time.Duration, now func() time.Time) *Guard {
	if now == nil {
		now = time.Now
	}

	return &Guard{
		drafter: drafter,
		limit:   limit,
		window:  window,
		now:     now,
		calls:   make(map[uuid.UUID][]time.Time),
	}
}

// Draft drafts a transaction for the owner if the owner has requests left.
func (g *Guard) Draft(ctx context.Context, owner uuid.UUID, text string, envelopes []string) (Draft, error) {
	if !g.take(owner) {
		log.Warn().Str("component", "draft").Str("owner", owner.String()).Int("limit", g.limit).Dur("window", g.window).Msg("draft requests exhausted")
		return Draft{}, ErrExhausted
	}

	return g.drafter.Draft(ctx, text, envelopes)
}

// Remaining returns how many requests the owner has left in the current window.
func (g *Guard) Remaining(owner uuid.UUID) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	remaining := g.limit - len(g.recent(owner, g.now()))
	if remaining < 0 {
		return 0
	}

	return remaining
}

// take records a request for the owner. It returns false if the limit is reached.
func (g *Guard) take(owner uuid.UUID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	calls := g.recent(owner, now)

	if len(calls) >= g.limit {
		return false
	}

	g.calls[owner] = append(calls, now)
	return true
}

// recent drops all requests of the owner that are outside the window and
// returns the rest. The caller must hold the lock.
func (g *Guard) recent(owner uuid.UUID, now time.Time) []time.Time {
	cutoff := now.Add(-g.window)

	calls := g.calls[owner][:0]
	for _, t := range g.calls[owner] {
		if t.After(cutoff) {
			calls = append(calls, t)
		}
	}

	if len(calls) == 0 {
		delete(g.calls, owner)
		return nil
	}

	g.calls[owner] = calls
	return calls
}
