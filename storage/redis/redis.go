// Package redis provides a Redis-backed deduper for webhook notifications.
// Providers redeliver push notifications on timeout; SET NX with a TTL gives
// an atomic first-observation check that is shared across relay replicas.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper records notification keys in Redis with a TTL
type Deduper struct {
	client redis.UniversalClient
	config Config
}

// Config holds Redis deduper configuration
type Config struct {
	// KeyPrefix is prepended to all Redis keys (default: "orbyt:seen:")
	KeyPrefix string

	// DefaultTTL is used when Seen is called with a zero TTL
	DefaultTTL time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		KeyPrefix:  "orbyt:seen:",
		DefaultTTL: 24 * time.Hour,
	}
}

// New creates a new Redis deduper
// The client can be *redis.Client, *redis.ClusterClient, or *redis.Ring
func New(client redis.UniversalClient, config Config) (*Deduper, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}

	if config.KeyPrefix == "" {
		config.KeyPrefix = "orbyt:seen:"
	}
	if config.DefaultTTL == 0 {
		config.DefaultTTL = 24 * time.Hour
	}

	return &Deduper{client: client, config: config}, nil
}

// Seen reports whether key was recorded within ttl, recording it if not.
// SET NX makes the check-and-record atomic across concurrent deliveries.
func (d *Deduper) Seen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = d.config.DefaultTTL
	}

	set, err := d.client.SetNX(ctx, d.config.KeyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record notification key: %w", err)
	}

	// SETNX succeeded means this is the first observation
	return !set, nil
}

// Ping checks the Redis connection
func (d *Deduper) Ping(ctx context.Context) error {
	return d.client.Ping(ctx).Err()
}
