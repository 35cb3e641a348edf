package request_models

import (
	"time"

	"tripwise/internal/models/domain_models"
)

type CreateGoalRequest struct {
	GoalType  string                         `json:"goal_type" binding:"required"`
	Overrides *domain_models.MetricOverrides `json:"overrides"`
}

type UpdateGoalStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type UpdateProgressRequest struct {
	Metric     string     `json:"metric" binding:"required"`
	Value      float64    `json:"value"`
	Text       string     `json:"text"`
	VisitedIDs []string   `json:"visited_ids"`
	Timestamp  *time.Time `json:"timestamp"`
}

type BatchProgressRequest struct {
	Updates []domain_models.ProgressUpdate `json:"updates" binding:"required"`
}
