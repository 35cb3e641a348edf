package services

import (
	"time"

	"tripwise/internal/models/db_models"
	resp "tripwise/internal/models/response_models"
)

func ToMilestoneResponses(list []db_models.Milestone) []resp.MilestoneResponse {
	out := make([]resp.MilestoneResponse, 0, len(list))
	for _, m := range list {
		out = append(out, resp.MilestoneResponse{
			ID:           m.ID.String(),
			Type:         m.Type,
			Label:        m.Label,
			TargetValue:  m.TargetValue,
			CurrentValue: m.CurrentValue,
			Achieved:     m.Achieved,
			AchievedAt:   m.AchievedAt,
		})
	}
	return out
}

func ToGoalSnapshot(g *db_models.Goal) *resp.GoalSnapshot {
	if g == nil {
		return nil
	}
	return &resp.GoalSnapshot{
		ID:     g.ID.String(),
		UserID: g.UserID,
		Type:   g.Type,
		Status: g.Status,
		Targets: resp.GoalTargets{
			MaxBudget:             g.MaxBudget,
			MinRating:             g.MinRating,
			AccommodationTier:     g.AccommodationTier,
			MaxDailyActivities:    g.MaxDailyActivities,
			PreferredDestinations: g.PreferredDestinations,
		},
		Progress: resp.GoalProgress{
			CurrentBudget:         g.CurrentBudget,
			AverageRating:         g.AverageRating,
			Accommodation:         g.CurrentAccommodation,
			ActivitiesCompleted:   g.ActivitiesCompleted,
			DestinationsVisited:   g.DestinationsVisited,
			VisitedDestinationIDs: g.VisitedDestinationIDs,
			LastUpdated:           g.ProgressUpdatedAt,
		},
		OverallProgress: g.OverallProgress,
		CreatedAt:       g.CreatedTime(),
	}
}

func ToVersionResponse(s *db_models.ItinerarySnapshot) *resp.ItineraryVersionResponse {
	if s == nil {
		return nil
	}
	return &resp.ItineraryVersionResponse{
		GoalID:    s.GoalID.String(),
		Version:   s.Version,
		Reason:    s.Reason,
		Days:      s.Days.Data(),
		Budget:    s.Budget.Data(),
		Changes:   s.Changes.Data(),
		CreatedAt: time.Unix(s.CreatedAt, 0),
	}
}
