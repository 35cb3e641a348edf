package domain_models

import "time"

type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusPaused    GoalStatus = "paused"
	GoalStatusCancelled GoalStatus = "cancelled"
)

func (s GoalStatus) Valid() bool {
	switch s {
	case GoalStatusActive, GoalStatusCompleted, GoalStatusPaused, GoalStatusCancelled:
		return true
	}
	return false
}

// Metric names a progress field; milestones of the same name track it.
type Metric string

const (
	MetricBudget        Metric = "budget"
	MetricRating        Metric = "rating"
	MetricActivities    Metric = "activities"
	MetricDestinations  Metric = "destinations"
	MetricAccommodation Metric = "accommodation"
)

func (m Metric) Valid() bool {
	switch m {
	case MetricBudget, MetricRating, MetricActivities, MetricDestinations, MetricAccommodation:
		return true
	}
	return false
}

// ProgressUpdate is one observation pushed by the trip tracker.
type ProgressUpdate struct {
	GoalID     string    `json:"goal_id"`
	Metric     Metric    `json:"metric"`
	Value      float64   `json:"value"`
	Text       string    `json:"text,omitempty"`
	VisitedIDs []string  `json:"visited_ids,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

type TriggerReason string

const (
	TriggerBudgetOverrun   TriggerReason = "budget_overrun"
	TriggerLowRating       TriggerReason = "low_rating"
	TriggerLowActivity     TriggerReason = "low_activity"
	TriggerManualRollback  TriggerReason = "rollback"
	TriggerInitialPlanning TriggerReason = "initial"
)

type SyncStatus string

const (
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusPending SyncStatus = "pending"
	SyncStatusError   SyncStatus = "error"
	SyncStatusNone    SyncStatus = "none"
)
