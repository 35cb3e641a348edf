package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dm "tripwise/internal/models/domain_models"
	"tripwise/pkg/utils"
)

func TestGenerate_GoalAware(t *testing.T) {
	env := newServiceEnv(t, false)
	ctx := context.Background()

	res, err := env.generator.Generate(ctx, "u1", budgetRequest())
	require.NoError(t, err)

	assert.True(t, res.GoalAware)
	assert.Equal(t, dm.SyncStatusSynced, res.SyncStatus)
	assert.Equal(t, 1, res.Version)
	require.NotNil(t, res.Goal)
	assert.Equal(t, "budget", res.Goal.Type)
	assert.NotEmpty(t, res.Milestones)
	assert.Greater(t, res.GoalAlignment, 0.0)
	require.Len(t, res.Days, 2)
	assert.Equal(t, 6, res.Metrics.CandidateCount)
	assert.Equal(t, 6, res.Metrics.ScheduledCount)
	assert.Equal(t, 180_000.0, res.TotalCost)
	assert.Equal(t, 2_000_000.0, res.Budget.Total)

	again, err := env.generator.Generate(ctx, "u1", budgetRequest())
	require.NoError(t, err)
	assert.Equal(t, res.Goal.ID, again.Goal.ID)
	assert.Equal(t, 2, again.Version)
}

func TestGenerate_WithoutGoal(t *testing.T) {
	env := newServiceEnv(t, false)
	req := budgetRequest()
	req.GoalType = ""

	res, err := env.generator.Generate(context.Background(), "u1", req)
	require.NoError(t, err)
	assert.False(t, res.GoalAware)
	assert.Equal(t, dm.SyncStatusNone, res.SyncStatus)
	assert.Nil(t, res.Goal)
	assert.Zero(t, res.Version)
	assert.Equal(t, dm.GoalTypeBalanced, res.Budget.GoalType)
	assert.Empty(t, env.goals.goals)
}

func TestGenerate_GoalStoreFailureDegrades(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want dm.SyncStatus
	}{
		{"store error", errBoom, dm.SyncStatusError},
		{"store timeout", context.DeadlineExceeded, dm.SyncStatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newServiceEnv(t, false)
			env.goals.err = tt.err

			res, err := env.generator.Generate(context.Background(), "u1", budgetRequest())
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.SyncStatus)
			assert.Nil(t, res.Goal)
			assert.NotEmpty(t, res.Days)
		})
	}
}

func TestGenerate_SnapshotFailureDegrades(t *testing.T) {
	env := newServiceEnv(t, false)
	env.itineraries.saveErr = errBoom

	res, err := env.generator.Generate(context.Background(), "u1", budgetRequest())
	require.NoError(t, err)
	assert.Equal(t, dm.SyncStatusError, res.SyncStatus)
	assert.NotNil(t, res.Goal)
	assert.Zero(t, res.Version)
}

func TestGenerate_RejectsInvalidInput(t *testing.T) {
	env := newServiceEnv(t, false)

	req := budgetRequest()
	req.Preferences.Budget = 0
	_, err := env.generator.Generate(context.Background(), "u1", req)
	assert.ErrorIs(t, err, utils.ErrInvalidPreferences)

	req = budgetRequest()
	req.GoalType = "weekend"
	_, err = env.generator.Generate(context.Background(), "u1", req)
	assert.ErrorIs(t, err, utils.ErrInvalidGoalType)

	req = budgetRequest()
	req.Schedule = &dm.ScheduleWindow{StartTime: "20:00", EndTime: "08:00"}
	_, err = env.generator.Generate(context.Background(), "u1", req)
	assert.ErrorIs(t, err, utils.ErrInvalidInput)
	assert.Empty(t, env.goals.goals, "nothing is persisted for rejected requests")
}

func TestGenerate_CountCapAndOverBudgetWarning(t *testing.T) {
	env := newServiceEnv(t, false)
	req := budgetRequest()
	req.Count = 2
	req.Preferences.Budget = 10_000

	res, err := env.generator.Generate(context.Background(), "u1", req)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Metrics.RecommendedCount)
	assert.Equal(t, 2, res.Metrics.ScheduledCount)
	assert.Contains(t, res.Warnings, "estimated cost 60000 exceeds the budget of 10000")
}

func TestGenerate_WarnsWhenOverridesMeetExistingGoal(t *testing.T) {
	env := newServiceEnv(t, false)
	ctx := context.Background()

	req := budgetRequest()
	req.Overrides = &dm.MetricOverrides{MaxDailyActivities: intPtr(3)}
	first, err := env.generator.Generate(ctx, "u1", req)
	require.NoError(t, err)
	for _, w := range first.Warnings {
		assert.NotContains(t, w, "were not applied")
	}

	maxBudget := 3_000_000.0
	req.Overrides = &dm.MetricOverrides{MaxDailyActivities: intPtr(5), MaxBudget: &maxBudget}
	again, err := env.generator.Generate(ctx, "u1", req)
	require.NoError(t, err)
	assert.Contains(t, again.Warnings, "the budget goal already exists; overrides for max_budget, max_daily_activities were not applied")
	assert.Equal(t, 3, again.Goal.Targets.MaxDailyActivities)

	req.Overrides = &dm.MetricOverrides{MaxDailyActivities: intPtr(3)}
	same, err := env.generator.Generate(ctx, "u1", req)
	require.NoError(t, err)
	for _, w := range same.Warnings {
		assert.NotContains(t, w, "were not applied")
	}
}
