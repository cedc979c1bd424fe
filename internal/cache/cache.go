// Package cache owns the Redis connection used for admission control
// and event deduplication.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Manager owns the Redis client lifecycle; constructed once at startup
// and passed to the components that need it.
type Manager struct {
	client *redis.Client
}

// Open parses a redis:// URL, connects, and verifies the connection.
func Open(url string) (*Manager, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &Manager{client: client}, nil
}

// Client exposes the underlying Redis client.
func (m *Manager) Client() *redis.Client {
	return m.client
}

// Close shuts the connection down.
func (m *Manager) Close() error {
	return m.client.Close()
}
