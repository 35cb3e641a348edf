package db_models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"tripwise/internal/models/domain_models"
)

// ItinerarySnapshot is one immutable version of a goal's itinerary.
// Exactly one version per goal is active.
type ItinerarySnapshot struct {
	BaseModel
	GoalID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_snapshot_goal_version"`
	UserID  string    `gorm:"type:varchar(64);not null;index"`
	Version int       `gorm:"not null;uniqueIndex:idx_snapshot_goal_version"`
	Active  bool      `gorm:"not null;default:false"`
	Reason  string    `gorm:"type:varchar(64)"`

	Days    datatypes.JSONType[[]domain_models.ItineraryDay]  `gorm:"type:jsonb"`
	Budget  datatypes.JSONType[domain_models.BudgetBreakdown] `gorm:"type:jsonb"`
	Context datatypes.JSONType[domain_models.PlanningContext] `gorm:"type:jsonb"`
	Changes datatypes.JSONType[[]domain_models.DayChange]     `gorm:"type:jsonb"`
}
