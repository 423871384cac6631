// Package redis stores sites and pages as JSON documents in Redis.
//
// Keys, relative to the configured prefix:
//
//	site:{site_id}            site document
//	owner:{owner_id}:sites    set of site ids
//	page:{page_id}            page document
//	site:{site_id}:pages      set of page ids
//
// Updates run inside WATCH/MULTI so concurrent patches of one document
// are serialized rather than lost.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection configuration.
type Config struct {
	Address  string `env:"REDIS_ADDRESS"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB"`
}

// ErrEmptyAddress is returned when Redis address is not configured.
var ErrEmptyAddress = errors.New("redis address is required")

// DefaultKeyPrefix namespaces every key the repositories write.
const DefaultKeyPrefix = "simplesite:"

const connectionTimeout = 5 * time.Second

// maxTxRetries bounds optimistic transaction retries on contention.
const maxTxRetries = 5

// NewClient creates a Redis client and verifies the connection.
func NewClient(cfg Config) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}
