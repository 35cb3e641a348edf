package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	dbm "tripwise/internal/models/db_models"
	dm "tripwise/internal/models/domain_models"
	resp "tripwise/internal/models/response_models"
	"tripwise/internal/repositories"
	"tripwise/pkg/memcache"
	"tripwise/pkg/utils"
)

const (
	ReplanNone       = "none"
	ReplanApplied    = "applied"
	ReplanScheduled  = "scheduled"
	ReplanSuppressed = "suppressed"
	ReplanFailed     = "failed"

	backgroundReplanTimeout = 30 * time.Second
)

type GoalServiceInterface interface {
	EnsureGoal(ctx context.Context, userID string, goalType dm.GoalType, overrides *dm.MetricOverrides) (*dbm.Goal, error)
	GetGoal(ctx context.Context, userID, goalID string) (*resp.GoalSnapshot, error)
	GetReport(ctx context.Context, userID, goalID string) (*resp.ProgressReport, error)
	SetStatus(ctx context.Context, userID, goalID, status string) (*resp.GoalSnapshot, error)
	UpdateProgress(ctx context.Context, userID string, u dm.ProgressUpdate) (*resp.ProgressUpdateResult, error)
	ApplyUpdates(ctx context.Context, updates []dm.ProgressUpdate) resp.BatchProgressResult
	SaveItinerary(ctx context.Context, snap *dbm.ItinerarySnapshot) error
	LatestItinerary(ctx context.Context, userID, goalID string) (*resp.ItineraryVersionResponse, error)
	RollbackItinerary(ctx context.Context, userID, goalID string) (*resp.ItineraryVersionResponse, error)
	// Wait blocks until background replans have finished.
	Wait()
}

type GoalService struct {
	goals       repositories.GoalRepository
	itineraries repositories.ItineraryRepository
	tracker     *ProgressTracker
	planner     *AdaptivePlanner
	guard       memcache.ReplanGuard
	publisher   Publisher
	async       bool

	locks *keyedMutex
	wg    sync.WaitGroup
	now   func() time.Time
}

func NewGoalService(
	goals repositories.GoalRepository,
	itineraries repositories.ItineraryRepository,
	tracker *ProgressTracker,
	planner *AdaptivePlanner,
	guard memcache.ReplanGuard,
	publisher Publisher,
	async bool,
) GoalServiceInterface {
	return &GoalService{
		goals:       goals,
		itineraries: itineraries,
		tracker:     tracker,
		planner:     planner,
		guard:       guard,
		publisher:   publisher,
		async:       async,
		locks:       newKeyedMutex(),
		now:         time.Now,
	}
}

func (s *GoalService) EnsureGoal(ctx context.Context, userID string, goalType dm.GoalType, overrides *dm.MetricOverrides) (*dbm.Goal, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", utils.ErrInvalidInput)
	}
	targets, err := GoalTargets(goalType, overrides)
	if err != nil {
		return nil, err
	}

	goal := &dbm.Goal{
		UserID:                userID,
		Type:                  string(goalType),
		Status:                string(dm.GoalStatusActive),
		MaxBudget:             targets.MaxBudget,
		MinRating:             targets.MinRating,
		AccommodationTier:     targets.AccommodationTier,
		MaxDailyActivities:    targets.MaxDailyActivities,
		PreferredDestinations: targets.PreferredDestinations,
	}
	goal.ID = uuid.New()
	goal.Milestones = DeriveMilestones(goal)

	stored, created, err := s.goals.CreateIfAbsent(ctx, goal)
	if err != nil {
		return nil, fmt.Errorf("%w: ensure goal: %w", utils.ErrDatabaseError, err)
	}
	if stored == nil {
		return nil, fmt.Errorf("%w: goal for user %s vanished after insert conflict", utils.ErrDatabaseError, userID)
	}
	if created {
		slog.Info("goal created", "goal_id", stored.ID, "user_id", userID, "type", goalType)
	}
	return stored, nil
}

func (s *GoalService) loadOwned(ctx context.Context, userID, goalID string) (*dbm.Goal, error) {
	if _, err := uuid.Parse(goalID); err != nil {
		return nil, fmt.Errorf("%w: goal id %q", utils.ErrGoalNotFound, goalID)
	}
	goal, err := s.goals.GetByID(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("%w: load goal: %w", utils.ErrDatabaseError, err)
	}
	if goal == nil || (userID != "" && goal.UserID != userID) {
		return nil, fmt.Errorf("%w: %s", utils.ErrGoalNotFound, goalID)
	}
	return goal, nil
}

func (s *GoalService) GetGoal(ctx context.Context, userID, goalID string) (*resp.GoalSnapshot, error) {
	goal, err := s.loadOwned(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	return ToGoalSnapshot(goal), nil
}

func (s *GoalService) GetReport(ctx context.Context, userID, goalID string) (*resp.ProgressReport, error) {
	goal, err := s.loadOwned(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	report := BuildReport(goal, nil, s.now())
	return &report, nil
}

func (s *GoalService) SetStatus(ctx context.Context, userID, goalID, status string) (*resp.GoalSnapshot, error) {
	st := dm.GoalStatus(strings.ToLower(strings.TrimSpace(status)))
	if !st.Valid() {
		return nil, fmt.Errorf("%w: %q", utils.ErrInvalidStatus, status)
	}
	if _, err := s.loadOwned(ctx, userID, goalID); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(goalID)
	defer unlock()

	goal, err := s.goals.UpdateLocked(ctx, goalID, func(g *dbm.Goal) error {
		g.Status = string(st)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: set status: %w", utils.ErrDatabaseError, err)
	}
	if goal == nil {
		return nil, fmt.Errorf("%w: %s", utils.ErrGoalNotFound, goalID)
	}
	return ToGoalSnapshot(goal), nil
}

// UpdateProgress applies one update for a goal owned by userID, publishes the
// resulting events and replans when drift triggers fire.
func (s *GoalService) UpdateProgress(ctx context.Context, userID string, u dm.ProgressUpdate) (*resp.ProgressUpdateResult, error) {
	if _, err := s.loadOwned(ctx, userID, u.GoalID); err != nil {
		return nil, err
	}
	return s.updateProgress(ctx, u)
}

func (s *GoalService) updateProgress(ctx context.Context, u dm.ProgressUpdate) (*resp.ProgressUpdateResult, error) {
	if _, err := uuid.Parse(u.GoalID); err != nil {
		return nil, fmt.Errorf("%w: goal id %q", utils.ErrGoalNotFound, u.GoalID)
	}
	if u.Timestamp.IsZero() {
		u.Timestamp = s.now()
	}

	var track TrackResult
	unlock := s.locks.Lock(u.GoalID)
	goal, err := s.goals.UpdateLocked(ctx, u.GoalID, func(g *dbm.Goal) error {
		var err error
		track, err = s.tracker.Apply(g, u)
		return err
	})
	unlock()
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: update progress: %w", utils.ErrDatabaseError, err)
	}
	if goal == nil {
		return nil, fmt.Errorf("%w: %s", utils.ErrGoalNotFound, u.GoalID)
	}

	s.publish(ctx, goal.UserID, EventProgressUpdated, track.Report)
	for _, m := range track.NewlyAchieved {
		s.publish(ctx, goal.UserID, EventMilestoneAchieved, ToMilestoneResponses([]dbm.Milestone{m})[0])
	}
	if track.Completed {
		s.publish(ctx, goal.UserID, EventGoalCompleted, ToGoalSnapshot(goal))
	}

	result := &resp.ProgressUpdateResult{
		Report:    track.Report,
		Completed: track.Completed,
		Replan:    ReplanNone,
	}

	reasons := s.planner.Triggers(goal, u.Timestamp)
	if len(reasons) == 0 {
		return result, nil
	}
	key := goal.ID.String()
	if !s.guard.TryAcquire(key) {
		slog.Info("replan suppressed", "goal_id", key, "reasons", reasons)
		result.Replan = ReplanSuppressed
		return result, nil
	}

	if s.async {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.guard.Release(key)
			bg, cancel := context.WithTimeout(context.Background(), backgroundReplanTimeout)
			defer cancel()
			if _, err := s.adapt(bg, key, reasons, u.Timestamp); err != nil {
				slog.Error("background replan failed", "goal_id", key, "error", err)
			}
		}()
		result.Replan = ReplanScheduled
		return result, nil
	}

	defer s.guard.Release(key)
	adaptation, err := s.adapt(ctx, key, reasons, u.Timestamp)
	switch {
	case err != nil:
		slog.Error("replan failed", "goal_id", key, "error", err)
		result.Replan = ReplanFailed
	case adaptation != nil:
		result.Replan = ReplanApplied
		result.Adaptation = adaptation
	}
	return result, nil
}

// adapt regenerates the active itinerary of the goal. It returns nil when the
// goal has no itinerary yet. On error the active itinerary is left as it was.
func (s *GoalService) adapt(ctx context.Context, goalID string, reasons []dm.TriggerReason, at time.Time) (*resp.AdaptationResult, error) {
	unlock := s.locks.Lock(goalID)
	defer unlock()

	goal, err := s.goals.GetByID(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("%w: load goal: %w", utils.ErrDatabaseError, err)
	}
	if goal == nil {
		return nil, fmt.Errorf("%w: %s", utils.ErrGoalNotFound, goalID)
	}
	prev, err := s.itineraries.GetActive(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("%w: load itinerary: %w", utils.ErrDatabaseError, err)
	}
	if prev == nil {
		slog.Debug("no itinerary to adapt", "goal_id", goalID)
		return nil, nil
	}

	plan, err := s.planner.Replan(prev, goal, at)
	if err != nil {
		return nil, err
	}

	snap := &dbm.ItinerarySnapshot{
		GoalID:  goal.ID,
		UserID:  goal.UserID,
		Reason:  joinReasons(reasons),
		Days:    datatypes.NewJSONType(plan.Days),
		Budget:  datatypes.NewJSONType(plan.Budget),
		Context: datatypes.NewJSONType(plan.Context),
		Changes: datatypes.NewJSONType(plan.Changes),
	}
	if err := s.itineraries.SaveVersion(ctx, snap); err != nil {
		return nil, fmt.Errorf("%w: save adapted itinerary: %w", utils.ErrDatabaseError, err)
	}

	result := &resp.AdaptationResult{
		GoalID:    goalID,
		Reasons:   reasons,
		Version:   snap.Version,
		Days:      plan.Days,
		Budget:    plan.Budget,
		Changes:   plan.Changes,
		Timestamp: s.now(),
	}
	slog.Info("itinerary adapted", "goal_id", goalID, "version", snap.Version, "reasons", snap.Reason, "changes", len(plan.Changes))
	s.publish(ctx, goal.UserID, EventItineraryAdapted, result)
	return result, nil
}

// ApplyUpdates ingests a batch from the push channel. Unknown goals and
// rejected updates are logged and skipped.
func (s *GoalService) ApplyUpdates(ctx context.Context, updates []dm.ProgressUpdate) resp.BatchProgressResult {
	sorted := slices.Clone(updates)
	slices.SortStableFunc(sorted, func(a, b dm.ProgressUpdate) int { return a.Timestamp.Compare(b.Timestamp) })

	var out resp.BatchProgressResult
	for _, u := range sorted {
		if _, err := s.updateProgress(ctx, u); err != nil {
			out.Skipped++
			out.Errors = append(out.Errors, fmt.Sprintf("%s/%s: %v", u.GoalID, u.Metric, err))
			slog.Warn("progress update skipped", "goal_id", u.GoalID, "metric", u.Metric, "error", err)
			continue
		}
		out.Applied++
	}
	return out
}

func (s *GoalService) SaveItinerary(ctx context.Context, snap *dbm.ItinerarySnapshot) error {
	unlock := s.locks.Lock(snap.GoalID.String())
	defer unlock()
	return s.itineraries.SaveVersion(ctx, snap)
}

func (s *GoalService) LatestItinerary(ctx context.Context, userID, goalID string) (*resp.ItineraryVersionResponse, error) {
	if _, err := s.loadOwned(ctx, userID, goalID); err != nil {
		return nil, err
	}
	snap, err := s.itineraries.GetActive(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("%w: load itinerary: %w", utils.ErrDatabaseError, err)
	}
	if snap == nil {
		return nil, fmt.Errorf("%w: goal %s", utils.ErrSnapshotNotFound, goalID)
	}
	return ToVersionResponse(snap), nil
}

func (s *GoalService) RollbackItinerary(ctx context.Context, userID, goalID string) (*resp.ItineraryVersionResponse, error) {
	goal, err := s.loadOwned(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if s.guard.InFlight(goalID) {
		return nil, fmt.Errorf("%w: goal %s", utils.ErrReplanInFlight, goalID)
	}

	unlock := s.locks.Lock(goalID)
	snap, err := s.itineraries.Rollback(ctx, goalID)
	unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: rollback itinerary: %w", utils.ErrDatabaseError, err)
	}
	if snap == nil {
		return nil, fmt.Errorf("%w: no earlier version for goal %s", utils.ErrSnapshotNotFound, goalID)
	}

	out := ToVersionResponse(snap)
	s.publish(ctx, goal.UserID, EventItineraryRollback, out)
	return out, nil
}

func (s *GoalService) Wait() {
	s.wg.Wait()
}

func (s *GoalService) publish(ctx context.Context, userID, event string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, userID, event, payload); err != nil {
		slog.Warn("publish event failed", "user_id", userID, "event", event, "error", err)
	}
}

func isDomainError(err error) bool {
	for _, target := range []error{
		utils.ErrStaleUpdate, utils.ErrInvalidMetric, utils.ErrInvalidInput,
		utils.ErrGoalNotFound, utils.ErrInvalidStatus,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func joinReasons(reasons []dm.TriggerReason) string {
	parts := make([]string, 0, len(reasons))
	for _, r := range reasons {
		parts = append(parts, string(r))
	}
	return strings.Join(parts, ",")
}
