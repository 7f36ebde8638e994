package service

import (
	"context"
	"log/slog"
	"time"
)

type expiredCleaner interface {
	CleanExpired(ctx context.Context, now time.Time) (int64, error)
}

// IdempotencyJanitor periodically deletes expired idempotency cache rows.
type IdempotencyJanitor struct {
	cache    expiredCleaner
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
}

func NewIdempotencyJanitor(cache expiredCleaner, logger *slog.Logger, interval time.Duration) *IdempotencyJanitor {
	return &IdempotencyJanitor{
		cache:    cache,
		logger:   logger,
		interval: interval,
		now:      time.Now,
	}
}

// Start blocks until ctx is cancelled.
func (j *IdempotencyJanitor) Start(ctx context.Context) {
	j.logger.Info("idempotency janitor started", "interval", j.interval)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("idempotency janitor stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *IdempotencyJanitor) sweep(ctx context.Context) {
	n, err := j.cache.CleanExpired(ctx, j.now())
	if err != nil {
		j.logger.Error("failed to clean expired idempotency keys", "error", err)
		return
	}
	if n > 0 {
		j.logger.Debug("expired idempotency keys removed", "count", n)
	}
}
