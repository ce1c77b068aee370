package db

import (
	"context"
	"fmt"
	"time"
)

// consumeRateWindowSQL resets an expired window or counts one more request
// in a live one. The count stops at max+1 so denied requests do not grow it.
const consumeRateWindowSQL = `
INSERT INTO rate_windows (key, count, reset_at)
VALUES ($1, 1, $3::timestamptz + $4 * INTERVAL '1 millisecond')
ON CONFLICT (key) DO UPDATE SET
    count = CASE
        WHEN rate_windows.reset_at <= $3 THEN 1
        ELSE LEAST(rate_windows.count + 1, $2 + 1)
    END,
    reset_at = CASE
        WHEN rate_windows.reset_at <= $3 THEN EXCLUDED.reset_at
        ELSE rate_windows.reset_at
    END
RETURNING count, reset_at`

// ConsumeRateWindow atomically consumes one request from the window stored
// under key and returns the resulting count and reset time.
func (db *DB) ConsumeRateWindow(ctx context.Context, key string, max int, window time.Duration, now time.Time) (int, time.Time, error) {
	var count int
	var resetAt time.Time
	err := db.pool.QueryRow(ctx, consumeRateWindowSQL,
		key, max, now, window.Milliseconds(),
	).Scan(&count, &resetAt)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to consume rate window: %w", err)
	}
	return count, resetAt, nil
}

// SweepRateWindows deletes every window that has expired at now
func (db *DB) SweepRateWindows(ctx context.Context, now time.Time) (int64, error) {
	result, err := db.pool.Exec(ctx, `DELETE FROM rate_windows WHERE reset_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep rate windows: %w", err)
	}
	return result.RowsAffected(), nil
}
