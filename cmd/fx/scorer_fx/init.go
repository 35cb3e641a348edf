package scorer_fx

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"tripwise/internal/config"
	"tripwise/internal/repositories"
	"tripwise/internal/services"
	"tripwise/pkg/utils"
)

var Module = fx.Provide(
	provideEmbeddingRepo,
	providePersonalizationScorer,
	provideDestinationScorer,
)

func provideEmbeddingRepo(db *gorm.DB) repositories.DestinationEmbeddingRepository {
	return repositories.NewDestinationEmbeddingRepository(db)
}

func providePersonalizationScorer(lc fx.Lifecycle, cfg *config.Config, repo repositories.DestinationEmbeddingRepository) services.PersonalizationScorer {
	if cfg.EmbeddingProvider == "" || cfg.EmbeddingProvider == "none" {
		return services.NeutralPersonalizationScorer{}
	}
	client, err := utils.NewEmbeddingClient(cfg.EmbeddingProvider, cfg.EmbeddingAPIKey, cfg.EmbeddingModel)
	if err != nil {
		slog.Warn("embedding client unavailable, using neutral personalization", "provider", cfg.EmbeddingProvider, "error", err)
		return services.NeutralPersonalizationScorer{}
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return services.NewEmbeddingPersonalizationScorer(client, repo)
}

func provideDestinationScorer(cfg *config.Config, external services.PersonalizationScorer) *services.DestinationScorer {
	return services.NewDestinationScorer(external, cfg.ScorerTimeout)
}
