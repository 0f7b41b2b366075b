package database

import (
	"context"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ConnectRedis opens the optional Redis connection. An empty URL returns nil
// clients, and callers fall back to in-process behavior.
func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, *redislock.Client, error) {
	if redisURL == "" {
		log.Warn().Msg("⚠️  REDIS_URL not set - geocode cache and cross-replica batch locks disabled")
		return nil, nil, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info().Str("addr", opts.Addr).Msg("✅ Connected to Redis")
	return rdb, redislock.New(rdb), nil
}
