package app

import (
	"slices"
	"sync"
	"time"

	"github.com/dkeye/Lobby/internal/core"
)

// LineRateLimiter is a sliding-window limiter keyed by session.
type LineRateLimiter struct {
	mu       sync.Mutex
	history  map[core.SessionID][]time.Time
	limit    int
	interval time.Duration
	now      func() time.Time
}

func NewLineRateLimiter(limit int, interval time.Duration) *LineRateLimiter {
	return &LineRateLimiter{
		history:  make(map[core.SessionID][]time.Time),
		limit:    limit,
		interval: interval,
		now:      time.Now,
	}
}

// Allow records a line for sid and reports whether it fits the window.
// Rejected lines are not recorded.
func (rl *LineRateLimiter) Allow(sid core.SessionID) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.interval)

	// Stamps are appended in order, so expired ones form a prefix.
	stamps := rl.history[sid]
	expired := 0
	for expired < len(stamps) && !stamps[expired].After(cutoff) {
		expired++
	}
	stamps = slices.Delete(stamps, 0, expired)

	if len(stamps) >= rl.limit {
		rl.history[sid] = stamps
		return false
	}
	rl.history[sid] = append(stamps, now)
	return true
}

func (rl *LineRateLimiter) Forget(sid core.SessionID) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.history, sid)
}
