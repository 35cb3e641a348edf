package domain_models

// ScoredDestination carries the Scorer's base relevance for a candidate.
type ScoredDestination struct {
	Destination Destination `json:"destination"`
	BaseScore   float64     `json:"base_score"`
}

// Recommendation is a candidate after goal-aware adjustment.
type Recommendation struct {
	Destination      Destination `json:"destination"`
	BaseScore        float64     `json:"base_score"`
	PriceAdjustment  float64     `json:"price_adjustment"`
	RatingBoost      float64     `json:"rating_boost"`
	CategoryPriority float64     `json:"category_priority"`
	AdjustedScore    float64     `json:"adjusted_score"`
	GoalAlignment    float64     `json:"goal_alignment"`
}

type ScheduledDestination struct {
	Destination     Destination `json:"destination"`
	StartTime       string      `json:"start_time"`
	EndTime         string      `json:"end_time"`
	DurationMinutes int         `json:"duration_minutes"`
	Score           float64     `json:"score"`
}

type TransportLeg struct {
	From            string  `json:"from"`
	To              string  `json:"to"`
	Mode            string  `json:"mode"`
	DistanceKm      float64 `json:"distance_km"`
	Cost            float64 `json:"cost"`
	DurationMinutes int     `json:"duration_minutes"`
}

// ItineraryDay is produced fresh on every generation and never edited in place.
type ItineraryDay struct {
	DayIndex          int                    `json:"day_index"`
	Date              string                 `json:"date,omitempty"`
	Destinations      []ScheduledDestination `json:"destinations"`
	Transportation    *TransportLeg          `json:"transportation,omitempty"`
	TotalCost         float64                `json:"total_cost"`
	TotalTimeMinutes  int                    `json:"total_time_minutes"`
	ConfidenceScore   float64                `json:"confidence_score"`
	OptimizationNotes []string               `json:"optimization_notes,omitempty"`
	Warnings          []string               `json:"warnings,omitempty"`
}

// DestinationIDs lists the scheduled destination ids in visiting order.
func (d ItineraryDay) DestinationIDs() []string {
	ids := make([]string, 0, len(d.Destinations))
	for _, s := range d.Destinations {
		ids = append(ids, s.Destination.ID)
	}
	return ids
}

type BudgetCategory string

const (
	BudgetAccommodation  BudgetCategory = "accommodation"
	BudgetFood           BudgetCategory = "food"
	BudgetTransportation BudgetCategory = "transportation"
	BudgetActivities     BudgetCategory = "activities"
	BudgetMiscellaneous  BudgetCategory = "miscellaneous"
)

type BudgetLine struct {
	Category BudgetCategory `json:"category"`
	Percent  int            `json:"percent"`
	Amount   float64        `json:"amount"`
}

type BudgetBreakdown struct {
	GoalType GoalType     `json:"goal_type"`
	Total    float64      `json:"total"`
	Lines    []BudgetLine `json:"lines"`
}

type ChangeType string

const (
	ChangeAdded     ChangeType = "added"
	ChangeRemoved   ChangeType = "removed"
	ChangeReordered ChangeType = "reordered"
	ChangeModified  ChangeType = "modified"
)

// DayChange describes how one day differs between two itinerary versions.
type DayChange struct {
	Type     ChangeType `json:"type"`
	DayIndex int        `json:"day_index"`
	Before   []string   `json:"before,omitempty"`
	After    []string   `json:"after,omitempty"`
}

// PlanningContext is everything a replan needs to rerun the pipeline
// without calling the personalization scorer again.
type PlanningContext struct {
	Constraints Constraints         `json:"constraints"`
	Pool        []ScoredDestination `json:"pool"`
	Window      ScheduleWindow      `json:"window"`
}
