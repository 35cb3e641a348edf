package memcache_fx

import (
	"go.uber.org/fx"

	"tripwise/internal/config"
	"tripwise/pkg/memcache"
)

var Module = fx.Provide(provideReplanGuard)

func provideReplanGuard(cfg *config.Config) memcache.ReplanGuard {
	return memcache.NewReplanGuards(cfg.ReplanCooldown)
}
