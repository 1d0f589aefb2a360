// Package redis holds the Redis-backed booking lock and provider
// directory cache.
package redis

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "bookify:"

// Connect opens a client and pings it.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Printf("✅ Connected to Redis (addr: %s)", addr)
	return client, nil
}
