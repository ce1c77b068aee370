// Package ratelimit provides fixed-window rate limiting keyed by client identity.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrInvalidLimit is returned when a window or maximum is not positive.
var ErrInvalidLimit = errors.New("ratelimit: window and max must be positive")

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed           bool
	Limit             int
	Remaining         int
	ResetAt           time.Time
	RetryAfterSeconds int // set when denied, at least 1
}

// Store checks and consumes rate-limit budget for an identity.
// Implementations must make the check and the increment atomic per identity.
type Store interface {
	CheckAndConsume(ctx context.Context, identity string, window time.Duration, max int) (Decision, error)
}

// Window is one identity's counter. Count never exceeds the maximum while
// the window is live; once now >= ResetAt the window is replaced.
type Window struct {
	Count   int
	ResetAt time.Time
}

func (w *Window) expired(now time.Time) bool {
	return !now.Before(w.ResetAt)
}

// MemoryStore keeps windows in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*Window
	now     func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock sets the time source. Defaults to time.Now.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		windows: make(map[string]*Window),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckAndConsume sweeps every expired window, then admits or denies the
// request for identity. The whole operation holds one lock.
func (s *MemoryStore) CheckAndConsume(_ context.Context, identity string, window time.Duration, max int) (Decision, error) {
	if window <= 0 || max <= 0 {
		return Decision{}, ErrInvalidLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	w, ok := s.windows[identity]
	if !ok {
		w = &Window{Count: 1, ResetAt: now.Add(window)}
		s.windows[identity] = w
		return allowed(w, max), nil
	}

	if w.Count >= max {
		return denied(w, max, now), nil
	}

	w.Count++
	return allowed(w, max), nil
}

// Len reports how many live windows the store holds.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// Reset drops every window.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windows = make(map[string]*Window)
}

func (s *MemoryStore) sweepLocked(now time.Time) {
	for key, w := range s.windows {
		if w.expired(now) {
			delete(s.windows, key)
		}
	}
}

func allowed(w *Window, max int) Decision {
	return Decision{
		Allowed:   true,
		Limit:     max,
		Remaining: max - w.Count,
		ResetAt:   w.ResetAt,
	}
}

func denied(w *Window, max int, now time.Time) Decision {
	return Decision{
		Allowed:           false,
		Limit:             max,
		Remaining:         0,
		ResetAt:           w.ResetAt,
		RetryAfterSeconds: retryAfterSeconds(w.ResetAt, now),
	}
}

// retryAfterSeconds rounds the time until reset up to whole seconds.
func retryAfterSeconds(resetAt, now time.Time) int {
	d := resetAt.Sub(now)
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// NoopStore admits everything. Used when rate limiting is disabled.
type NoopStore struct{}

// CheckAndConsume always allows.
func (NoopStore) CheckAndConsume(_ context.Context, _ string, _ time.Duration, max int) (Decision, error) {
	return Decision{Allowed: true, Limit: max, Remaining: max}, nil
}

// listStore applies allow and block lists in front of another store.
type listStore struct {
	next      Store
	allowlist map[string]bool
	blocklist map[string]bool
	now       func() time.Time
}

// WithAccessLists wraps store so that allowlisted identities bypass it and
// blocklisted identities are always denied.
func WithAccessLists(store Store, allowlist, blocklist map[string]bool) Store {
	if len(allowlist) == 0 && len(blocklist) == 0 {
		return store
	}
	return &listStore{next: store, allowlist: allowlist, blocklist: blocklist, now: time.Now}
}

func (l *listStore) CheckAndConsume(ctx context.Context, identity string, window time.Duration, max int) (Decision, error) {
	if l.allowlist[identity] {
		return Decision{Allowed: true, Limit: max, Remaining: max}, nil
	}
	if l.blocklist[identity] {
		now := l.now()
		resetAt := now.Add(window)
		return Decision{
			Allowed:           false,
			Limit:             max,
			ResetAt:           resetAt,
			RetryAfterSeconds: retryAfterSeconds(resetAt, now),
		}, nil
	}
	return l.next.CheckAndConsume(ctx, identity, window, max)
}
