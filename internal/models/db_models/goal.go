package db_models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// MetricTimestamps records the observation time of the last accepted
// update per metric name.
type MetricTimestamps map[string]time.Time

type Goal struct {
	BaseModel
	UserID string `gorm:"type:varchar(64);not null;uniqueIndex:idx_goal_user_type"`
	Type   string `gorm:"type:varchar(20);not null;uniqueIndex:idx_goal_user_type"`
	Status string `gorm:"type:varchar(20);not null;default:'active'"`

	// Targets
	MaxBudget             float64
	MinRating             float64
	AccommodationTier     string         `gorm:"type:varchar(20)"`
	MaxDailyActivities    int
	PreferredDestinations pq.StringArray `gorm:"type:text[]"`

	// Progress
	CurrentBudget         float64
	AverageRating         float64
	CurrentAccommodation  string                               `gorm:"type:varchar(20)"`
	ActivitiesCompleted   int
	DestinationsVisited   int
	VisitedDestinationIDs pq.StringArray                       `gorm:"type:text[]"`
	MetricTimestamps      datatypes.JSONType[MetricTimestamps] `gorm:"type:jsonb"`
	ProgressUpdatedAt     *time.Time
	OverallProgress       float64

	Milestones []Milestone `gorm:"foreignKey:GoalID"`
}

// Reported tells whether an update for the metric was ever accepted.
func (g *Goal) Reported(metric string) bool {
	_, ok := g.MetricTimestamps.Data()[metric]
	return ok
}

type Milestone struct {
	BaseModel
	GoalID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Type         string    `gorm:"type:varchar(20);not null"`
	Label        string
	TargetValue  float64
	CurrentValue float64
	Achieved     bool
	AchievedAt   *time.Time
}
