package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"gorm.io/datatypes"

	dbm "tripwise/internal/models/db_models"
	dm "tripwise/internal/models/domain_models"
	"tripwise/internal/models/request_models"
	resp "tripwise/internal/models/response_models"
)

type ItineraryServiceInterface interface {
	Generate(ctx context.Context, userID string, req request_models.GenerateItineraryRequest) (*resp.ItineraryResult, error)
}

type ItineraryService struct {
	scorer    *DestinationScorer
	scheduler *DayScheduler
	goals     GoalServiceInterface
}

func NewItineraryService(scorer *DestinationScorer, scheduler *DayScheduler, goals GoalServiceInterface) ItineraryServiceInterface {
	return &ItineraryService{scorer: scorer, scheduler: scheduler, goals: goals}
}

// Generate runs resolve, score, adjust, schedule and allocate. Goal
// persistence failures never fail the request; they show up in SyncStatus.
func (s *ItineraryService) Generate(ctx context.Context, userID string, req request_models.GenerateItineraryRequest) (*resp.ItineraryResult, error) {
	c, err := ResolveConstraints(req.Preferences, req.GoalType, req.Overrides)
	if err != nil {
		return nil, err
	}
	window := s.scheduler.ResolveWindow(req.Schedule)
	if _, err := parseWindow(window); err != nil {
		return nil, err
	}

	sync := dm.SyncStatusNone
	var goal *dbm.Goal
	var ignored []string
	if c.GoalAware {
		goal, err = s.goals.EnsureGoal(ctx, userID, c.GoalType, req.Overrides)
		if err != nil {
			sync = syncStatusFor(err)
			slog.Warn("goal persistence failed during generation", "user_id", userID, "goal_type", c.GoalType, "error", err)
		} else {
			ignored = overridesNotApplied(req.Overrides, goal)
			applyGoalTargets(&c, goal)
		}
	}

	scored := s.scorer.Score(ctx, userID, c, req.Profile, req.Destinations)
	recs := AdjustRecommendations(c.GoalType, scored.Ranked, req.Count)
	sched, err := s.scheduler.Schedule(recs, c, window, 0)
	if err != nil {
		return nil, err
	}
	budget := AllocateBudget(c.GoalType, c.Budget)

	result := assembleResult(c, req.Destinations, scored, recs, sched, budget)
	result.SyncStatus = sync
	if len(ignored) > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"the %s goal already exists; overrides for %s were not applied", c.GoalType, strings.Join(ignored, ", ")))
	}
	if !c.GoalAware {
		return result, nil
	}

	result.GoalAlignment = MeanAlignment(recs)
	if goal == nil {
		return result, nil
	}
	result.Goal = ToGoalSnapshot(goal)
	result.Milestones = ToMilestoneResponses(goal.Milestones)

	snap := &dbm.ItinerarySnapshot{
		GoalID: goal.ID,
		UserID: goal.UserID,
		Reason: string(dm.TriggerInitialPlanning),
		Days:   datatypes.NewJSONType(sched.Days),
		Budget: datatypes.NewJSONType(budget),
		Context: datatypes.NewJSONType(dm.PlanningContext{
			Constraints: c,
			Pool:        scored.Ranked,
			Window:      window,
		}),
		Changes: datatypes.NewJSONType([]dm.DayChange{}),
	}
	if err := s.goals.SaveItinerary(ctx, snap); err != nil {
		result.SyncStatus = syncStatusFor(err)
		slog.Warn("itinerary snapshot not stored", "goal_id", goal.ID, "error", err)
		return result, nil
	}
	result.Version = snap.Version
	result.SyncStatus = dm.SyncStatusSynced
	return result, nil
}

func applyGoalTargets(c *dm.Constraints, goal *dbm.Goal) {
	c.MaxBudget = goal.MaxBudget
	c.MinRating = goal.MinRating
	c.AccommodationTier = goal.AccommodationTier
	c.MaxDailyActivities = goal.MaxDailyActivities
	if len(goal.PreferredDestinations) > 0 {
		c.PreferredDestinations = slices.Clone([]string(goal.PreferredDestinations))
	}
}

// overridesNotApplied lists the requested overrides that differ from the
// targets stored on an existing goal.
func overridesNotApplied(o *dm.MetricOverrides, goal *dbm.Goal) []string {
	if o == nil {
		return nil
	}
	var out []string
	if o.MaxBudget != nil && *o.MaxBudget != goal.MaxBudget {
		out = append(out, "max_budget")
	}
	if o.MinRating != nil && *o.MinRating != goal.MinRating {
		out = append(out, "min_rating")
	}
	if o.AccommodationTier != nil && *o.AccommodationTier != "" && *o.AccommodationTier != goal.AccommodationTier {
		out = append(out, "accommodation_tier")
	}
	if o.MaxDailyActivities != nil && *o.MaxDailyActivities != goal.MaxDailyActivities {
		out = append(out, "max_daily_activities")
	}
	if len(o.PreferredDestinations) > 0 && !slices.Equal(o.PreferredDestinations, []string(goal.PreferredDestinations)) {
		out = append(out, "preferred_destinations")
	}
	return out
}

func syncStatusFor(err error) dm.SyncStatus {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return dm.SyncStatusPending
	}
	return dm.SyncStatusError
}

func assembleResult(
	c dm.Constraints,
	candidates []dm.Destination,
	scored ScoreResult,
	recs []dm.Recommendation,
	sched ScheduleResult,
	budget dm.BudgetBreakdown,
) *resp.ItineraryResult {
	result := &resp.ItineraryResult{
		Days:      sched.Days,
		Budget:    budget,
		GoalAware: c.GoalAware,
	}
	result.Warnings = append(result.Warnings, scored.Warnings...)
	result.Warnings = append(result.Warnings, sched.Warnings...)

	scheduled := 0
	scoreSum := 0.0
	for _, day := range sched.Days {
		result.TotalCost += day.TotalCost
		result.TotalDurationMinutes += day.TotalTimeMinutes
		if day.Transportation != nil {
			result.TotalDurationMinutes += day.Transportation.DurationMinutes
		}
		for _, sd := range day.Destinations {
			scheduled++
			scoreSum += sd.Score
		}
	}
	if result.TotalCost > c.Budget {
		result.Warnings = append(result.Warnings, fmt.Sprintf("estimated cost %.0f exceeds the budget of %.0f", result.TotalCost, c.Budget))
	}

	m := resp.OptimizationMetrics{
		CandidateCount:   len(candidates),
		RecommendedCount: len(recs),
		ScheduledCount:   scheduled,
	}
	if scheduled > 0 {
		m.AverageScore = scoreSum / float64(scheduled)
	}
	f := filterFor(c.GoalType)
	m.Reasoning = append(m.Reasoning,
		fmt.Sprintf("%s filter: price window %.0f-%.0f, rating threshold %.1f", c.GoalType, f.PriceMin, f.PriceMax, f.RatingThreshold))
	if dropped := len(scored.Ranked) - len(recs); dropped > 0 {
		m.Reasoning = append(m.Reasoning, fmt.Sprintf("%d candidate(s) dropped by goal-aware adjustment or count cap", dropped))
	}
	if skipped := len(recs) - scheduled; skipped > 0 {
		m.Reasoning = append(m.Reasoning, fmt.Sprintf("%d recommendation(s) not scheduled due to duplicates, daily caps or day windows", skipped))
	}
	result.Metrics = m
	return result
}
