package domain_models

import "time"

type GoalType string

const (
	GoalTypeBudget     GoalType = "budget"
	GoalTypeBalanced   GoalType = "balanced"
	GoalTypeLuxury     GoalType = "luxury"
	GoalTypeBackpacker GoalType = "backpacker"
)

func (t GoalType) Valid() bool {
	switch t {
	case GoalTypeBudget, GoalTypeBalanced, GoalTypeLuxury, GoalTypeBackpacker:
		return true
	}
	return false
}

// Preferences is the raw traveler input.
type Preferences struct {
	Budget            float64   `json:"budget"`
	Days              int       `json:"days"`
	Travelers         int       `json:"travelers"`
	AccommodationTier string    `json:"accommodation_tier,omitempty"`
	Cities            []string  `json:"cities,omitempty"`
	Interests         []string  `json:"interests,omitempty"`
	PreferredSpots    []string  `json:"preferred_spots,omitempty"`
	StartDate         time.Time `json:"start_date"`
}

// MetricOverrides replace template targets field by field; nil means keep.
type MetricOverrides struct {
	MaxBudget             *float64 `json:"max_budget,omitempty"`
	MinRating             *float64 `json:"min_rating,omitempty"`
	AccommodationTier     *string  `json:"accommodation_tier,omitempty"`
	MaxDailyActivities    *int     `json:"max_daily_activities,omitempty"`
	PreferredDestinations []string `json:"preferred_destinations,omitempty"`
}

// Constraints is the single resolved constraint set every planning stage reads.
type Constraints struct {
	GoalType              GoalType           `json:"goal_type"`
	GoalAware             bool               `json:"goal_aware"`
	Budget                float64            `json:"budget"`
	Days                  int                `json:"days"`
	Travelers             int                `json:"travelers"`
	StartDate             time.Time          `json:"start_date"`
	Cities                []string           `json:"cities,omitempty"`
	Interests             []string           `json:"interests,omitempty"`
	PreferredSpots        []string           `json:"preferred_spots,omitempty"`
	MaxBudget             float64            `json:"max_budget"`
	MinRating             float64            `json:"min_rating"`
	AccommodationTier     string             `json:"accommodation_tier"`
	MaxDailyActivities    int                `json:"max_daily_activities"`
	PreferredDestinations []string           `json:"preferred_destinations,omitempty"`
	CategoryWeights       map[string]float64 `json:"category_weights,omitempty"`
}

// ScheduleWindow bounds every day of an itinerary. Empty fields fall back
// to the planner defaults; a nil buffer means the default buffer.
type ScheduleWindow struct {
	StartTime     string   `json:"start_time,omitempty"`
	EndTime       string   `json:"end_time,omitempty"`
	BufferMinutes *int     `json:"buffer_minutes,omitempty"`
	AllowRepeat   []string `json:"allow_repeat,omitempty"`
}
