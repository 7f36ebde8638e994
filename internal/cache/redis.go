package cache

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// OpenRedis returns nil, nil when url is empty; callers treat a nil client as
// "no cache".
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("OpenRedis: parse: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("OpenRedis: ping: %w", err)
	}
	return client, nil
}
