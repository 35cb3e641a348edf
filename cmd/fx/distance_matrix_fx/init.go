package distance_matrix_fx

import (
	"go.uber.org/fx"

	"tripwise/internal/config"
	"tripwise/internal/services"
)

var Module = fx.Provide(provideDistanceTable)

func provideDistanceTable(cfg *config.Config) services.DistanceTable {
	static := services.NewStaticDistanceTable()
	if cfg.MapboxAccessToken == "" {
		return static
	}
	return services.NewMapboxDistanceTable(cfg.MapboxAccessToken, static)
}
