package response_models

import (
	"time"

	"tripwise/internal/models/domain_models"
)

type OptimizationMetrics struct {
	CandidateCount   int      `json:"candidate_count"`
	RecommendedCount int      `json:"recommended_count"`
	ScheduledCount   int      `json:"scheduled_count"`
	AverageScore     float64  `json:"average_score"`
	Reasoning        []string `json:"reasoning,omitempty"`
}

type ItineraryResult struct {
	Days                 []domain_models.ItineraryDay  `json:"days"`
	TotalCost            float64                       `json:"total_cost"`
	TotalDurationMinutes int                           `json:"total_duration_minutes"`
	Budget               domain_models.BudgetBreakdown `json:"budget"`
	Metrics              OptimizationMetrics           `json:"metrics"`
	Warnings             []string                      `json:"warnings,omitempty"`

	GoalAware     bool                     `json:"goal_aware"`
	Goal          *GoalSnapshot            `json:"goal,omitempty"`
	GoalAlignment float64                  `json:"goal_alignment,omitempty"`
	Milestones    []MilestoneResponse      `json:"milestones,omitempty"`
	Version       int                      `json:"version,omitempty"`
	SyncStatus    domain_models.SyncStatus `json:"sync_status"`
}

type ItineraryVersionResponse struct {
	GoalID    string                        `json:"goal_id"`
	Version   int                           `json:"version"`
	Reason    string                        `json:"reason"`
	Days      []domain_models.ItineraryDay  `json:"days"`
	Budget    domain_models.BudgetBreakdown `json:"budget"`
	Changes   []domain_models.DayChange     `json:"changes,omitempty"`
	CreatedAt time.Time                     `json:"created_at"`
}

type AdaptationResult struct {
	GoalID    string                        `json:"goal_id"`
	Reasons   []domain_models.TriggerReason `json:"reasons"`
	Version   int                           `json:"version"`
	Days      []domain_models.ItineraryDay  `json:"days"`
	Budget    domain_models.BudgetBreakdown `json:"budget"`
	Changes   []domain_models.DayChange     `json:"changes"`
	Timestamp time.Time                     `json:"timestamp"`
}
