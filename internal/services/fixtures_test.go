package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	dbm "tripwise/internal/models/db_models"
	dm "tripwise/internal/models/domain_models"
)

func newGoal(t *testing.T, userID string, gt dm.GoalType, created time.Time) *dbm.Goal {
	t.Helper()
	targets, err := GoalTargets(gt, nil)
	require.NoError(t, err)

	g := &dbm.Goal{
		UserID:             userID,
		Type:               string(gt),
		Status:             string(dm.GoalStatusActive),
		MaxBudget:          targets.MaxBudget,
		MinRating:          targets.MinRating,
		AccommodationTier:  targets.AccommodationTier,
		MaxDailyActivities: targets.MaxDailyActivities,
	}
	g.ID = uuid.New()
	g.CreatedAt = created.Unix()
	g.Milestones = DeriveMilestones(g)
	return g
}

func cloneGoal(g *dbm.Goal) *dbm.Goal {
	c := *g
	c.Milestones = slices.Clone(g.Milestones)
	c.PreferredDestinations = slices.Clone(g.PreferredDestinations)
	c.VisitedDestinationIDs = slices.Clone(g.VisitedDestinationIDs)
	return &c
}

// memGoalRepo keeps goals in memory and only stores the result of a
// successful update, like a rolled back transaction.
type memGoalRepo struct {
	mu    sync.Mutex
	goals map[string]*dbm.Goal
	err   error
}

func newMemGoalRepo() *memGoalRepo {
	return &memGoalRepo{goals: map[string]*dbm.Goal{}}
}

func (r *memGoalRepo) put(g *dbm.Goal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.goals[g.ID.String()] = cloneGoal(g)
}

func (r *memGoalRepo) CreateIfAbsent(_ context.Context, goal *dbm.Goal) (*dbm.Goal, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, false, r.err
	}
	for _, g := range r.goals {
		if g.UserID == goal.UserID && g.Type == goal.Type {
			return cloneGoal(g), false, nil
		}
	}
	if goal.CreatedAt == 0 {
		goal.CreatedAt = time.Now().Unix()
	}
	r.goals[goal.ID.String()] = cloneGoal(goal)
	return cloneGoal(goal), true, nil
}

func (r *memGoalRepo) GetByID(_ context.Context, id string) (*dbm.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	g, ok := r.goals[id]
	if !ok {
		return nil, nil
	}
	return cloneGoal(g), nil
}

func (r *memGoalRepo) GetByUserAndType(_ context.Context, userID, goalType string) (*dbm.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.goals {
		if g.UserID == userID && g.Type == goalType {
			return cloneGoal(g), nil
		}
	}
	return nil, nil
}

func (r *memGoalRepo) UpdateLocked(_ context.Context, id string, fn func(goal *dbm.Goal) error) (*dbm.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	g, ok := r.goals[id]
	if !ok {
		return nil, nil
	}
	work := cloneGoal(g)
	if err := fn(work); err != nil {
		return nil, err
	}
	r.goals[id] = cloneGoal(work)
	return work, nil
}

type memItineraryRepo struct {
	mu      sync.Mutex
	byGoal  map[string][]*dbm.ItinerarySnapshot
	saveErr error
}

func newMemItineraryRepo() *memItineraryRepo {
	return &memItineraryRepo{byGoal: map[string][]*dbm.ItinerarySnapshot{}}
}

func (r *memItineraryRepo) SaveVersion(_ context.Context, snap *dbm.ItinerarySnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	key := snap.GoalID.String()
	versions := r.byGoal[key]
	for _, v := range versions {
		v.Active = false
	}
	snap.Version = len(versions) + 1
	snap.Active = true
	if snap.ID == uuid.Nil {
		snap.ID = uuid.New()
	}
	snap.CreatedAt = time.Now().Unix()
	stored := *snap
	r.byGoal[key] = append(versions, &stored)
	return nil
}

func (r *memItineraryRepo) GetActive(_ context.Context, goalID string) (*dbm.ItinerarySnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.byGoal[goalID] {
		if v.Active {
			out := *v
			return &out, nil
		}
	}
	return nil, nil
}

func (r *memItineraryRepo) Rollback(_ context.Context, goalID string) (*dbm.ItinerarySnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	versions := r.byGoal[goalID]
	active := -1
	for i, v := range versions {
		if v.Active {
			active = i
		}
	}
	if active <= 0 {
		return nil, nil
	}
	versions[active].Active = false
	versions[active-1].Active = true
	out := *versions[active-1]
	return &out, nil
}

func (r *memItineraryRepo) versions(goalID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byGoal[goalID])
}

type publishedEvent struct {
	UserID  string
	Event   string
	Payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, userID, event string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{UserID: userID, Event: event, Payload: payload})
	return p.err
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Event)
	}
	return out
}

var errBoom = errors.New("boom")

// planPool is a pool the budget filter keeps in full.
func planPool(n int) []dm.ScoredDestination {
	cats := []string{"street_food", "market", "park", "temple"}
	out := make([]dm.ScoredDestination, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, dm.ScoredDestination{
			Destination: dm.Destination{
				ID:              fmt.Sprintf("p%d", i),
				Name:            fmt.Sprintf("Place %d", i),
				Category:        cats[i%len(cats)],
				Location:        "Hanoi",
				EstimatedCost:   30_000,
				DurationMinutes: 60,
				Rating:          4.5,
			},
			BaseScore: 0.7 - float64(i)*0.01,
		})
	}
	return out
}

// seedSnapshot schedules pool for the goal and returns the resulting snapshot.
func seedSnapshot(t *testing.T, sched *DayScheduler, goal *dbm.Goal, c dm.Constraints, pool []dm.ScoredDestination) *dbm.ItinerarySnapshot {
	t.Helper()
	w := sched.ResolveWindow(nil)
	res, err := sched.Schedule(AdjustRecommendations(c.GoalType, pool, 0), c, w, 0)
	require.NoError(t, err)

	return &dbm.ItinerarySnapshot{
		GoalID:  goal.ID,
		UserID:  goal.UserID,
		Reason:  string(dm.TriggerInitialPlanning),
		Days:    datatypes.NewJSONType(res.Days),
		Budget:  datatypes.NewJSONType(AllocateBudget(c.GoalType, c.Budget)),
		Context: datatypes.NewJSONType(dm.PlanningContext{Constraints: c, Pool: pool, Window: w}),
		Changes: datatypes.NewJSONType([]dm.DayChange{}),
	}
}
