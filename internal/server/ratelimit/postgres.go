package ratelimit

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/blake2b"
)

// WindowStore persists fixed windows. ConsumeRateWindow must reset an
// expired window or increment a live one in a single atomic step, never
// letting the stored count pass max+1. It returns the count after the step.
type WindowStore interface {
	ConsumeRateWindow(ctx context.Context, key string, max int, window time.Duration, now time.Time) (count int, resetAt time.Time, err error)
	SweepRateWindows(ctx context.Context, now time.Time) (int64, error)
}

// PostgresStore shares windows between processes through a WindowStore.
type PostgresStore struct {
	windows WindowStore
	now     func() time.Time
}

// NewPostgresStore creates a store over windows.
func NewPostgresStore(windows WindowStore, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{windows: windows, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore)

// WithPostgresClock sets the time source. Defaults to time.Now.
func WithPostgresClock(now func() time.Time) PostgresOption {
	return func(s *PostgresStore) {
		s.now = now
	}
}

// HashIdentity returns the persisted form of a client identity.
// Raw addresses are never written to the database.
func HashIdentity(identity string) string {
	sum := blake2b.Sum256([]byte(identity))
	return hex.EncodeToString(sum[:])
}

// CheckAndConsume sweeps expired windows and consumes one request.
// A stored count above max means the request was denied.
func (s *PostgresStore) CheckAndConsume(ctx context.Context, identity string, window time.Duration, max int) (Decision, error) {
	if window <= 0 || max <= 0 {
		return Decision{}, ErrInvalidLimit
	}

	now := s.now()
	if _, err := s.windows.SweepRateWindows(ctx, now); err != nil {
		slog.Warn("rate window sweep failed", "error", err)
	}

	count, resetAt, err := s.windows.ConsumeRateWindow(ctx, HashIdentity(identity), max, window, now)
	if err != nil {
		return Decision{}, fmt.Errorf("consume rate window: %w", err)
	}

	w := &Window{Count: count, ResetAt: resetAt}
	if count > max {
		return denied(w, max, now), nil
	}
	return allowed(w, max), nil
}
