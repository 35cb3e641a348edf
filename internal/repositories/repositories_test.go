package repositories

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	dbm "tripwise/internal/models/db_models"
	dm "tripwise/internal/models/domain_models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "tripwise.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&dbm.Goal{}, &dbm.Milestone{}, &dbm.ItinerarySnapshot{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newGoalRow(userID, goalType string) *dbm.Goal {
	return &dbm.Goal{
		UserID:             userID,
		Type:               goalType,
		Status:             "active",
		MaxBudget:          2_000_000,
		MinRating:          3.5,
		MaxDailyActivities: 5,
		Milestones: []dbm.Milestone{
			{Type: "budget", Label: "25% of budget spent", TargetValue: 500_000},
			{Type: "budget", Label: "50% of budget spent", TargetValue: 1_000_000},
		},
	}
}

func TestGoalRepository_CreateIfAbsent(t *testing.T) {
	repo := NewGoalRepository(newTestDB(t))
	ctx := context.Background()

	first, created, err := repo.CreateIfAbsent(ctx, newGoalRow("u1", "budget"))
	require.NoError(t, err)
	require.True(t, created)
	require.NotEqual(t, uuid.Nil, first.ID)

	again, created, err := repo.CreateIfAbsent(ctx, newGoalRow("u1", "budget"))
	require.NoError(t, err)
	assert.False(t, created)
	require.NotNil(t, again)
	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, again.Milestones, 2)

	other, created, err := repo.CreateIfAbsent(ctx, newGoalRow("u1", "luxury"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, other.ID)

	got, err := repo.GetByUserAndType(ctx, "u1", "budget")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)
	require.Len(t, got.Milestones, 2)
	assert.Equal(t, 500_000.0, got.Milestones[0].TargetValue)
}

func TestGoalRepository_GetByIDUnknown(t *testing.T) {
	repo := NewGoalRepository(newTestDB(t))

	got, err := repo.GetByID(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGoalRepository_UpdateLocked(t *testing.T) {
	repo := NewGoalRepository(newTestDB(t))
	ctx := context.Background()
	goal, _, err := repo.CreateIfAbsent(ctx, newGoalRow("u1", "budget"))
	require.NoError(t, err)
	id := goal.ID.String()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	updated, err := repo.UpdateLocked(ctx, id, func(g *dbm.Goal) error {
		g.CurrentBudget = 600_000
		g.MetricTimestamps = datatypes.NewJSONType(dbm.MetricTimestamps{"budget": now})
		g.Milestones[0].CurrentValue = 600_000
		g.Milestones[0].Achieved = true
		g.Milestones[0].AchievedAt = &now
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, updated)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 600_000.0, got.CurrentBudget)
	assert.True(t, got.Reported("budget"))
	require.Len(t, got.Milestones, 2)
	assert.True(t, got.Milestones[0].Achieved)
	assert.False(t, got.Milestones[1].Achieved)

	_, err = repo.UpdateLocked(ctx, id, func(g *dbm.Goal) error {
		g.CurrentBudget = 1_900_000
		g.Milestones[1].Achieved = true
		return errors.New("rejected")
	})
	require.Error(t, err)

	got, err = repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 600_000.0, got.CurrentBudget)
	assert.False(t, got.Milestones[1].Achieved)

	missing, err := repo.UpdateLocked(ctx, uuid.NewString(), func(*dbm.Goal) error {
		t.Fatal("fn must not run for an unknown goal")
		return nil
	})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func newSnapshot(goalID uuid.UUID, reason string) *dbm.ItinerarySnapshot {
	return &dbm.ItinerarySnapshot{
		GoalID:  goalID,
		UserID:  "u1",
		Reason:  reason,
		Days:    datatypes.NewJSONType([]dm.ItineraryDay{{DayIndex: 1}}),
		Budget:  datatypes.NewJSONType(dm.BudgetBreakdown{}),
		Context: datatypes.NewJSONType(dm.PlanningContext{}),
		Changes: datatypes.NewJSONType([]dm.DayChange{}),
	}
}

func activeVersions(t *testing.T, db *gorm.DB, goalID uuid.UUID) []int {
	t.Helper()
	var versions []int
	require.NoError(t, db.Model(&dbm.ItinerarySnapshot{}).
		Where("goal_id = ? AND active = ?", goalID, true).
		Order("version").
		Pluck("version", &versions).Error)
	return versions
}

func TestItineraryRepository_VersionsAndRollback(t *testing.T) {
	db := newTestDB(t)
	repo := NewItineraryRepository(db)
	ctx := context.Background()
	goalID := uuid.New()

	for i, reason := range []string{"initial_planning", "budget_overrun", "low_activity"} {
		snap := newSnapshot(goalID, reason)
		require.NoError(t, repo.SaveVersion(ctx, snap))
		assert.Equal(t, i+1, snap.Version)
		assert.True(t, snap.Active)
		assert.Equal(t, []int{i + 1}, activeVersions(t, db, goalID))
	}

	active, err := repo.GetActive(ctx, goalID.String())
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, 3, active.Version)
	assert.Equal(t, "low_activity", active.Reason)
	assert.Len(t, active.Days.Data(), 1)

	prev, err := repo.Rollback(ctx, goalID.String())
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, 2, prev.Version)
	assert.Equal(t, []int{2}, activeVersions(t, db, goalID))

	prev, err = repo.Rollback(ctx, goalID.String())
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, 1, prev.Version)

	prev, err = repo.Rollback(ctx, goalID.String())
	require.NoError(t, err)
	assert.Nil(t, prev)
	assert.Equal(t, []int{1}, activeVersions(t, db, goalID))

	next := newSnapshot(goalID, "rating_below_floor")
	require.NoError(t, repo.SaveVersion(ctx, next))
	assert.Equal(t, 4, next.Version)
	assert.Equal(t, []int{4}, activeVersions(t, db, goalID))
}

func TestItineraryRepository_EmptyGoal(t *testing.T) {
	repo := NewItineraryRepository(newTestDB(t))
	ctx := context.Background()
	goalID := uuid.NewString()

	active, err := repo.GetActive(ctx, goalID)
	require.NoError(t, err)
	assert.Nil(t, active)

	prev, err := repo.Rollback(ctx, goalID)
	require.NoError(t, err)
	assert.Nil(t, prev)
}
