package realtime_fx

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"tripwise/internal/realtime"
	"tripwise/internal/services"
)

var Module = fx.Options(
	fx.Provide(realtime.NewHub, providePublisher),
	fx.Invoke(startHub),
)

// providePublisher routes events through Redis when it is configured so that
// sessions held by other instances receive them too.
func providePublisher(hub *realtime.Hub, client *redis.Client) services.Publisher {
	if client == nil {
		return hub
	}
	return services.NewRedisPublisher(client)
}

func startHub(lc fx.Lifecycle, hub *realtime.Hub, client *redis.Client) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if client != nil {
				go hub.Subscribe(ctx, client)
			}
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			hub.Close()
			return nil
		},
	})
}
