package itinerary_fx

import (
	"go.uber.org/fx"

	"tripwise/internal/config"
	dm "tripwise/internal/models/domain_models"
	"tripwise/internal/services"
)

var Module = fx.Provide(provideDayScheduler, provideItineraryService)

func provideDayScheduler(cfg *config.Config, distances services.DistanceTable) *services.DayScheduler {
	buffer := int(cfg.Buffer.Minutes())
	return services.NewDayScheduler(distances, dm.ScheduleWindow{
		StartTime:     cfg.DayStart,
		EndTime:       cfg.DayEnd,
		BufferMinutes: &buffer,
	})
}

func provideItineraryService(
	scorer *services.DestinationScorer,
	scheduler *services.DayScheduler,
	goals services.GoalServiceInterface,
) services.ItineraryServiceInterface {
	return services.NewItineraryService(scorer, scheduler, goals)
}
