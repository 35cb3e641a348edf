package goal_fx

import (
	"context"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"tripwise/internal/config"
	"tripwise/internal/repositories"
	"tripwise/internal/services"
	"tripwise/pkg/memcache"
)

var Module = fx.Provide(
	provideGoalRepo,
	provideItineraryRepo,
	services.NewProgressTracker,
	services.NewAdaptivePlanner,
	provideGoalService,
)

func provideGoalRepo(db *gorm.DB) repositories.GoalRepository {
	return repositories.NewGoalRepository(db)
}

func provideItineraryRepo(db *gorm.DB) repositories.ItineraryRepository {
	return repositories.NewItineraryRepository(db)
}

func provideGoalService(
	lc fx.Lifecycle,
	cfg *config.Config,
	goals repositories.GoalRepository,
	itineraries repositories.ItineraryRepository,
	tracker *services.ProgressTracker,
	planner *services.AdaptivePlanner,
	guard memcache.ReplanGuard,
	publisher services.Publisher,
) services.GoalServiceInterface {
	svc := services.NewGoalService(goals, itineraries, tracker, planner, guard, publisher, cfg.ReplanAsync)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			svc.Wait()
			return nil
		},
	})
	return svc
}
