package services

import (
	"fmt"
	"slices"
	"time"

	"tripwise/internal/models/db_models"
	dm "tripwise/internal/models/domain_models"
	"tripwise/pkg/utils"
)

const (
	overrunBudgetRatio   = 0.9
	overrunProgressBelow = 50.0
	lowRatingRatio       = 0.8
)

type AdaptivePlanner struct {
	scheduler *DayScheduler
}

func NewAdaptivePlanner(scheduler *DayScheduler) *AdaptivePlanner {
	return &AdaptivePlanner{scheduler: scheduler}
}

// Triggers lists the drift conditions currently met by an active goal.
func (p *AdaptivePlanner) Triggers(goal *db_models.Goal, at time.Time) []dm.TriggerReason {
	if goal.Status != string(dm.GoalStatusActive) {
		return nil
	}
	var reasons []dm.TriggerReason
	if goal.MaxBudget > 0 && goal.CurrentBudget > overrunBudgetRatio*goal.MaxBudget && goal.OverallProgress < overrunProgressBelow {
		reasons = append(reasons, dm.TriggerBudgetOverrun)
	}
	if goal.Reported(string(dm.MetricRating)) && goal.MinRating > 0 && goal.AverageRating < lowRatingRatio*goal.MinRating {
		reasons = append(reasons, dm.TriggerLowRating)
	}
	if goal.Reported(string(dm.MetricActivities)) {
		if target := ProRatedActivityTarget(goal, at); float64(goal.ActivitiesCompleted) < lowActivityRatio*target {
			reasons = append(reasons, dm.TriggerLowActivity)
		}
	}
	return reasons
}

// Replan is a regenerated itinerary together with its diff against the
// version it replaces.
type Replan struct {
	Days    []dm.ItineraryDay
	Budget  dm.BudgetBreakdown
	Changes []dm.DayChange
	Context dm.PlanningContext
}

// Replan reruns adjustment, scheduling and allocation over the unvisited part
// of the stored pool. Days before the current trip day are kept as they were.
func (p *AdaptivePlanner) Replan(prev *db_models.ItinerarySnapshot, goal *db_models.Goal, at time.Time) (*Replan, error) {
	if prev == nil {
		return nil, fmt.Errorf("%w: goal %s has no itinerary to adapt", utils.ErrSnapshotNotFound, goal.ID)
	}
	pc := prev.Context.Data()
	prevDays := prev.Days.Data()

	c := pc.Constraints
	c.MaxBudget = goal.MaxBudget
	c.MinRating = goal.MinRating
	c.AccommodationTier = goal.AccommodationTier
	c.MaxDailyActivities = goal.MaxDailyActivities
	c.PreferredDestinations = slices.Clone([]string(goal.PreferredDestinations))

	frozen := 0
	if !c.StartDate.IsZero() {
		frozen = min(c.Days, utils.ElapsedDays(c.StartDate, at)-1, len(prevDays))
	}

	exclude := make(map[string]bool)
	for _, id := range goal.VisitedDestinationIDs {
		exclude[id] = true
	}
	for _, day := range prevDays[:frozen] {
		for _, id := range day.DestinationIDs() {
			exclude[id] = true
		}
	}
	remaining := make([]dm.ScoredDestination, 0, len(pc.Pool))
	for _, sd := range pc.Pool {
		if !exclude[sd.Destination.ID] {
			remaining = append(remaining, sd)
		}
	}

	recs := AdjustRecommendations(c.GoalType, remaining, 0)
	sched, err := p.scheduler.Schedule(recs, c, pc.Window, frozen)
	if err != nil {
		return nil, fmt.Errorf("reschedule goal %s: %w", goal.ID, err)
	}

	days := make([]dm.ItineraryDay, 0, c.Days)
	days = append(days, prevDays[:frozen]...)
	days = append(days, sched.Days...)

	left := c.Budget - goal.CurrentBudget
	if left < 0 {
		left = 0
	}

	return &Replan{
		Days:    days,
		Budget:  AllocateBudget(c.GoalType, left),
		Changes: DiffDays(prevDays, days),
		Context: dm.PlanningContext{Constraints: c, Pool: pc.Pool, Window: pc.Window},
	}, nil
}

// DiffDays compares two itinerary versions day by day.
func DiffDays(before, after []dm.ItineraryDay) []dm.DayChange {
	changes := []dm.DayChange{}
	n := max(len(before), len(after))
	for i := 0; i < n; i++ {
		switch {
		case i >= len(after):
			changes = append(changes, dm.DayChange{Type: dm.ChangeRemoved, DayIndex: before[i].DayIndex, Before: before[i].DestinationIDs()})
		case i >= len(before):
			changes = append(changes, dm.DayChange{Type: dm.ChangeAdded, DayIndex: after[i].DayIndex, After: after[i].DestinationIDs()})
		default:
			b, a := before[i].DestinationIDs(), after[i].DestinationIDs()
			if slices.Equal(b, a) {
				continue
			}
			kind := dm.ChangeModified
			if sameMembers(b, a) {
				kind = dm.ChangeReordered
			}
			changes = append(changes, dm.DayChange{Type: kind, DayIndex: after[i].DayIndex, Before: b, After: a})
		}
	}
	return changes
}

func sameMembers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x, y := slices.Clone(a), slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}
