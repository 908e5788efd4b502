// Package worker hosts background maintenance loops.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const reapInterval = 5 * time.Minute

// StartIdempotencyReaper periodically deletes idempotency keys older than
// ttl, so replayed responses stay bounded in both storage and validity.
func StartIdempotencyReaper(db *pgxpool.Pool, ttl time.Duration) {
	go func() {
		slog.Info("Idempotency reaper started", "ttl", ttl)
		for {
			reapExpiredKeys(db, ttl)
			time.Sleep(reapInterval)
		}
	}()
}

func reapExpiredKeys(db *pgxpool.Pool, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tag, err := db.Exec(ctx,
		"DELETE FROM idempotency_keys WHERE created_at < NOW() - make_interval(secs => $1)",
		ttl.Seconds())
	if err != nil {
		slog.Error("Reaper: failed to delete expired keys", "error", err)
		return
	}
	if tag.RowsAffected() > 0 {
		slog.Info("Reaper: expired idempotency keys removed", "count", tag.RowsAffected())
	}
}
