package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// IdempotencyEntry is a stored response replayed for a repeated Idempotency-Key.
// A zero StatusCode marks a request that is still running.
type IdempotencyEntry struct {
	Key          string
	RequestHash  string
	StatusCode   int
	ResponseBody []byte
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

func (e *IdempotencyEntry) Pending() bool { return e.StatusCode == 0 }

type IdempotencyRepository struct {
	db *sql.DB
}

func NewIdempotencyRepository(db *sql.DB) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

// Get returns nil, nil when no live entry exists for key.
func (r *IdempotencyRepository) Get(ctx context.Context, key string, now time.Time) (*IdempotencyEntry, error) {
	var e IdempotencyEntry
	err := r.db.QueryRowContext(ctx,
		`SELECT idempotency_key, request_hash, status_code, response_body, created_at, expires_at
		FROM idempotency_cache
		WHERE idempotency_key = $1 AND expires_at > $2`,
		key, now,
	).Scan(&e.Key, &e.RequestHash, &e.StatusCode, &e.ResponseBody, &e.CreatedAt, &e.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &e, nil
}

// Claim reserves key for a request still in flight. It reports false when a
// live row for the key already exists; an expired row is taken over.
func (r *IdempotencyRepository) Claim(ctx context.Context, key, requestHash string, now, expiresAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO idempotency_cache (idempotency_key, request_hash, status_code, response_body, created_at, expires_at)
		VALUES ($1, $2, 0, ''::bytea, $3, $4)
		ON CONFLICT (idempotency_key) DO UPDATE
		SET request_hash = EXCLUDED.request_hash,
			status_code = 0,
			response_body = EXCLUDED.response_body,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at
		WHERE idempotency_cache.expires_at <= EXCLUDED.created_at`,
		key, requestHash, now, expiresAt,
	)
	if err != nil {
		return false, fmt.Errorf("Claim: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("Claim: rows affected: %w", err)
	}
	return n == 1, nil
}

// Complete stores the response for a key claimed with the same request hash.
func (r *IdempotencyRepository) Complete(ctx context.Context, entry *IdempotencyEntry) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE idempotency_cache
		SET status_code = $3, response_body = $4, expires_at = $5
		WHERE idempotency_key = $1 AND request_hash = $2 AND status_code = 0`,
		entry.Key, entry.RequestHash, entry.StatusCode, entry.ResponseBody, entry.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("Complete: %w", err)
	}
	return nil
}

// Release drops a pending claim so the key can be retried.
func (r *IdempotencyRepository) Release(ctx context.Context, key, requestHash string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM idempotency_cache
		WHERE idempotency_key = $1 AND request_hash = $2 AND status_code = 0`,
		key, requestHash,
	)
	if err != nil {
		return fmt.Errorf("Release: %w", err)
	}
	return nil
}

func (r *IdempotencyRepository) CleanExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM idempotency_cache WHERE expires_at <= $1`, now,
	)
	if err != nil {
		return 0, fmt.Errorf("CleanExpired: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("CleanExpired: rows affected: %w", err)
	}
	return n, nil
}
