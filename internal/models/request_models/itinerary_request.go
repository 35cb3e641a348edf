package request_models

import "tripwise/internal/models/domain_models"

type GenerateItineraryRequest struct {
	Preferences  domain_models.Preferences        `json:"preferences" binding:"required"`
	Destinations []domain_models.Destination      `json:"destinations" binding:"dive"`
	Profile      *domain_models.PreferenceProfile `json:"profile"`
	GoalType     string                           `json:"goal_type"`
	Overrides    *domain_models.MetricOverrides   `json:"overrides"`
	Schedule     *domain_models.ScheduleWindow    `json:"schedule"`
	// Count caps the recommendation list; 0 means no cap.
	Count int `json:"count"`
}
