package redis_fx

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"tripwise/internal/config"
	"tripwise/internal/infra"
)

var Module = fx.Provide(provideRedis)

// provideRedis returns nil when REDIS_URL is unset; events are then
// delivered only to sessions of this instance.
func provideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		slog.Info("REDIS_URL not set, realtime fan-out stays in process")
		return nil, nil
	}
	client, err := infra.InitRedis(cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}
