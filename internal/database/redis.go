package database

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/placementboard/backend/internal/config"
)

// InitRedis returns nil when Redis is not configured or does not answer. The
// service then runs without the sweep lock and token revocation.
func InitRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *redis.Client {
	addr := cfg.RedisAddr()
	if addr == "" {
		logger.Info().Msg("redis not configured")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", addr).Msg("redis connection failed, continuing without redis")
		rdb.Close()
		return nil
	}

	logger.Info().Str("addr", addr).Msg("redis connection established")
	return rdb
}
