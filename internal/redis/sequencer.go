package redis

import (
	"context"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

const seqKeyPrefix = "dashboard:seq:"

// Sequencer hands out request tokens with INCR so every replica serving a
// dashboard agrees on which trigger is the latest.
type Sequencer struct {
	client redisv9.Cmdable
	ttl    time.Duration
}

func NewSequencer(client redisv9.Cmdable, ttl time.Duration) *Sequencer {
	return &Sequencer{client: client, ttl: ttl}
}

// Next increments and returns the counter for the dashboard. The key expiry is
// refreshed on every call; a ttl of zero leaves the key persistent.
func (s *Sequencer) Next(ctx context.Context, dashboardID string) (uint64, error) {
	key := seqKeyPrefix + dashboardID
	var incr *redisv9.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redisv9.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("next sequence for %s: %w", dashboardID, err)
	}
	return uint64(incr.Val()), nil
}

// Forget drops the counter when a dashboard is closed.
func (s *Sequencer) Forget(ctx context.Context, dashboardID string) error {
	return s.client.Del(ctx, seqKeyPrefix+dashboardID).Err()
}
