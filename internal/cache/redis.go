// Package cache holds the catalog's caching layer: the in-process Store that
// answers scope reads, typed invalidation tags, and the Redis client used to
// fan invalidations out to other instances and to rate limit requests.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client provides Redis access for the cache layer.
type Client struct {
	client *redis.Client
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Pub/Sub holds one connection per subscriber on top of the pool.
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &Client{client: client}, nil
}

// Ping checks Redis connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Client) Close() error {
	return c.client.Close()
}

// Redis returns the underlying client.
// Use sparingly - prefer adding methods to Client.
func (c *Client) Redis() *redis.Client {
	return c.client
}
