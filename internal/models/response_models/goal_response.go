package response_models

import "time"

type GoalTargets struct {
	MaxBudget             float64  `json:"max_budget"`
	MinRating             float64  `json:"min_rating"`
	AccommodationTier     string   `json:"accommodation_tier"`
	MaxDailyActivities    int      `json:"max_daily_activities"`
	PreferredDestinations []string `json:"preferred_destinations,omitempty"`
}

type GoalProgress struct {
	CurrentBudget         float64    `json:"current_budget"`
	AverageRating         float64    `json:"average_rating"`
	Accommodation         string     `json:"accommodation,omitempty"`
	ActivitiesCompleted   int        `json:"activities_completed"`
	DestinationsVisited   int        `json:"destinations_visited"`
	VisitedDestinationIDs []string   `json:"visited_destination_ids,omitempty"`
	LastUpdated           *time.Time `json:"last_updated,omitempty"`
}

type GoalSnapshot struct {
	ID              string       `json:"id"`
	UserID          string       `json:"user_id"`
	Type            string       `json:"type"`
	Status          string       `json:"status"`
	Targets         GoalTargets  `json:"targets"`
	Progress        GoalProgress `json:"progress"`
	OverallProgress float64      `json:"overall_progress"`
	CreatedAt       time.Time    `json:"created_at"`
}

type MilestoneResponse struct {
	ID           string     `json:"id"`
	Type         string     `json:"type"`
	Label        string     `json:"label"`
	TargetValue  float64    `json:"target_value"`
	CurrentValue float64    `json:"current_value"`
	Achieved     bool       `json:"achieved"`
	AchievedAt   *time.Time `json:"achieved_at,omitempty"`
}

type ProgressReport struct {
	GoalID          string              `json:"goal_id"`
	Status          string              `json:"status"`
	OverallProgress float64             `json:"overall_progress"`
	Milestones      []MilestoneResponse `json:"milestones"`
	NextMilestones  []MilestoneResponse `json:"next_milestones"`
	Insights        []string            `json:"insights,omitempty"`
	Recommendations []string            `json:"recommendations,omitempty"`
	Timestamp       time.Time           `json:"timestamp"`
}

// ProgressUpdateResult is returned to the caller that pushed an update.
// Replan is one of none, applied, scheduled or suppressed.
type ProgressUpdateResult struct {
	Report     ProgressReport    `json:"report"`
	Completed  bool              `json:"completed"`
	Replan     string            `json:"replan"`
	Adaptation *AdaptationResult `json:"adaptation,omitempty"`
}

type BatchProgressResult struct {
	Applied int      `json:"applied"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}
