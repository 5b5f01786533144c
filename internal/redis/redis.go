package redis

import (
	"context"
	"fmt"

	redisv9 "github.com/redis/go-redis/v9"
)

// NewClient returns a client for addr. No connection is made until first use.
func NewClient(addr string) *redisv9.Client {
	return redisv9.NewClient(&redisv9.Options{
		Addr: addr,
	})
}

// Ping checks that the server behind client is reachable.
func Ping(ctx context.Context, client redisv9.Cmdable) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
