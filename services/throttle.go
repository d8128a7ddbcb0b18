package services

import (
	"sync"
	"time"

	"github.com/thejerf/abtime"
	"golang.org/x/time/rate"

	"github.com/lborres/bantay/core"
)

const (
	throttleIdle   = 15 * time.Minute
	throttleMaxKey = 10000
)

type throttleEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LoginThrottle limits login attempts per email with a token bucket
type LoginThrottle struct {
	limit rate.Limit
	burst int
	clock abtime.AbstractTime

	mu      sync.Mutex
	entries map[string]*throttleEntry
}

// NewLoginThrottle allows perMinute attempts per email with the given
// burst. A non-positive perMinute returns nil, which allows everything.
func NewLoginThrottle(perMinute, burst int, clock abtime.AbstractTime) *LoginThrottle {
	if perMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	if clock == nil {
		clock = abtime.NewRealTime()
	}
	return &LoginThrottle{
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   burst,
		clock:   clock,
		entries: make(map[string]*throttleEntry),
	}
}

// Allow consumes one attempt for email.
func (t *LoginThrottle) Allow(email string) bool {
	if t == nil {
		return true
	}

	key := core.NormalizeEmail(email)
	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok {
		if len(t.entries) >= throttleMaxKey {
			t.pruneLocked(now)
		}
		e = &throttleEntry{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.entries[key] = e
	}
	e.lastSeen = now

	return e.limiter.AllowN(now, 1)
}

// pruneLocked drops limiters idle for longer than throttleIdle.
func (t *LoginThrottle) pruneLocked(now time.Time) {
	for k, e := range t.entries {
		if now.Sub(e.lastSeen) > throttleIdle {
			delete(t.entries, k)
		}
	}
}
