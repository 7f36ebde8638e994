package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/logging"
)

type transactionTypeSource interface {
	GetByID(ctx context.Context, id int64) (*domain.TransactionType, error)
	GetByName(ctx context.Context, name string) (*domain.TransactionType, error)
	List(ctx context.Context) ([]domain.TransactionType, error)
}

// TransactionTypes is a read-through cache in front of the transaction type
// table. Rows never change at runtime, so entries only expire by TTL.
// Redis errors degrade to a direct read.
type TransactionTypes struct {
	source transactionTypeSource
	client *redis.Client
	ttl    time.Duration
}

func NewTransactionTypes(source transactionTypeSource, client *redis.Client, ttl time.Duration) *TransactionTypes {
	return &TransactionTypes{source: source, client: client, ttl: ttl}
}

func idKey(id int64) string { return fmt.Sprintf("txtype:id:%d", id) }

func nameKey(name string) string { return "txtype:name:" + name }

const listKey = "txtype:all"

func (c *TransactionTypes) GetByID(ctx context.Context, id int64) (*domain.TransactionType, error) {
	var t domain.TransactionType
	if c.load(ctx, idKey(id), &t) {
		return &t, nil
	}

	fresh, err := c.source.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	c.store(ctx, idKey(id), fresh)
	return fresh, nil
}

func (c *TransactionTypes) GetByName(ctx context.Context, name string) (*domain.TransactionType, error) {
	var t domain.TransactionType
	if c.load(ctx, nameKey(name), &t) {
		return &t, nil
	}

	fresh, err := c.source.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("GetByName: %w", err)
	}
	c.store(ctx, nameKey(name), fresh)
	return fresh, nil
}

func (c *TransactionTypes) List(ctx context.Context) ([]domain.TransactionType, error) {
	var types []domain.TransactionType
	if c.load(ctx, listKey, &types) {
		return types, nil
	}

	fresh, err := c.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	c.store(ctx, listKey, fresh)
	return fresh, nil
}

func (c *TransactionTypes) load(ctx context.Context, key string, dst any) bool {
	if c.client == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logging.FromContext(ctx).Warn("transaction type cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logging.FromContext(ctx).Warn("transaction type cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (c *TransactionTypes) store(ctx context.Context, key string, v any) {
	if c.client == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		logging.FromContext(ctx).Warn("transaction type cache write failed", "key", key, "error", err)
	}
}
