package lock

import (
	"context"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fiscalware/fiscalway/internal/config"
)

var Module = fx.Module("lock",
	fx.Provide(NewLocker),
)

// NewLocker picks the redis-backed locker when a redis address is
// configured and falls back to the process-local one otherwise.
func NewLocker(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) Locker {
	if cfg.RedisAddr == "" {
		log.Info("device locks using in-process locker")
		return NewLocalLocker()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = ctx
			return client.Close()
		},
	})

	log.Info("device locks using redis locker", zap.String("addr", cfg.RedisAddr))
	return NewRedisLocker(client)
}
