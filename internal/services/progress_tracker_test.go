package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbm "tripwise/internal/models/db_models"
	dm "tripwise/internal/models/domain_models"
	"tripwise/pkg/utils"
)

func milestonesOf(g *dbm.Goal, metric dm.Metric) []dbm.Milestone {
	var out []dbm.Milestone
	for _, m := range g.Milestones {
		if m.Type == string(metric) {
			out = append(out, m)
		}
	}
	return out
}

func TestDeriveMilestones(t *testing.T) {
	g := newGoal(t, "u1", dm.GoalTypeBudget, time.Now())

	budget := milestonesOf(g, dm.MetricBudget)
	require.Len(t, budget, 3)
	assert.Equal(t, 500_000.0, budget[0].TargetValue)
	assert.Equal(t, 1_000_000.0, budget[1].TargetValue)
	assert.Equal(t, 1_500_000.0, budget[2].TargetValue)

	rating := milestonesOf(g, dm.MetricRating)
	require.Len(t, rating, 1)
	assert.Equal(t, 3.5, rating[0].TargetValue)

	activities := milestonesOf(g, dm.MetricActivities)
	require.Len(t, activities, 2)
	assert.Equal(t, 18.0, activities[0].TargetValue)
	assert.Equal(t, 35.0, activities[1].TargetValue)

	assert.Empty(t, milestonesOf(g, dm.MetricDestinations))

	g.PreferredDestinations = []string{"a", "b"}
	g.Milestones = DeriveMilestones(g)
	dest := milestonesOf(g, dm.MetricDestinations)
	require.Len(t, dest, 1)
	assert.Equal(t, 2.0, dest[0].TargetValue)
}

func TestApply_BudgetMilestones(t *testing.T) {
	tr := NewProgressTracker()
	g := newGoal(t, "u1", dm.GoalTypeBudget, time.Now())
	at := time.Now()

	res, err := tr.Apply(g, dm.ProgressUpdate{GoalID: g.ID.String(), Metric: dm.MetricBudget, Value: 500_000, Timestamp: at})
	require.NoError(t, err)

	budget := milestonesOf(g, dm.MetricBudget)
	assert.True(t, budget[0].Achieved)
	assert.NotNil(t, budget[0].AchievedAt)
	assert.False(t, budget[1].Achieved)
	assert.False(t, budget[2].Achieved)
	for _, m := range budget {
		assert.Equal(t, 500_000.0, m.CurrentValue)
	}

	require.Len(t, res.NewlyAchieved, 1)
	assert.Equal(t, "25% of budget spent", res.NewlyAchieved[0].Label)
	assert.False(t, res.Completed)
	assert.InDelta(t, 100.0/12, g.OverallProgress, 1e-9)
	assert.Contains(t, res.Report.Insights, "Milestone reached: 25% of budget spent")
}

func TestApply_AchievedMilestonesStayAchieved(t *testing.T) {
	tr := NewProgressTracker()
	g := newGoal(t, "u1", dm.GoalTypeBudget, time.Now())
	at := time.Now()

	_, err := tr.Apply(g, dm.ProgressUpdate{Metric: dm.MetricBudget, Value: 600_000, Timestamp: at})
	require.NoError(t, err)
	res, err := tr.Apply(g, dm.ProgressUpdate{Metric: dm.MetricBudget, Value: 100_000, Timestamp: at.Add(time.Minute)})
	require.NoError(t, err)

	budget := milestonesOf(g, dm.MetricBudget)
	assert.True(t, budget[0].Achieved)
	assert.Equal(t, 100_000.0, budget[0].CurrentValue)
	assert.Empty(t, res.NewlyAchieved)
	assert.Equal(t, 100_000.0, g.CurrentBudget)
}

func TestApply_StaleUpdatesRejectedPerMetric(t *testing.T) {
	tr := NewProgressTracker()
	g := newGoal(t, "u1", dm.GoalTypeBudget, time.Now())
	at := time.Now()

	_, err := tr.Apply(g, dm.ProgressUpdate{Metric: dm.MetricBudget, Value: 300_000, Timestamp: at})
	require.NoError(t, err)

	_, err = tr.Apply(g, dm.ProgressUpdate{Metric: dm.MetricBudget, Value: 900_000, Timestamp: at.Add(-time.Hour)})
	assert.ErrorIs(t, err, utils.ErrStaleUpdate)
	assert.Equal(t, 300_000.0, g.CurrentBudget)

	// equal timestamps are accepted
	_, err = tr.Apply(g, dm.ProgressUpdate{Metric: dm.MetricBudget, Value: 350_000, Timestamp: at})
	require.NoError(t, err)
	assert.Equal(t, 350_000.0, g.CurrentBudget)

	// another metric has its own clock
	_, err = tr.Apply(g, dm.ProgressUpdate{Metric: dm.MetricRating, Value: 4, Timestamp: at.Add(-time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, 4.0, g.AverageRating)
	assert.True(t, g.Reported(string(dm.MetricRating)))
	require.NotNil(t, g.ProgressUpdatedAt)
	assert.True(t, g.ProgressUpdatedAt.Equal(at))
}

func TestApply_RejectsInvalidInput(t *testing.T) {
	tr := NewProgressTracker()
	g := newGoal(t, "u1", dm.GoalTypeBalanced, time.Now())

	_, err := tr.Apply(g, dm.ProgressUpdate{Metric: "steps", Value: 1})
	assert.ErrorIs(t, err, utils.ErrInvalidMetric)

	_, err = tr.Apply(g, dm.ProgressUpdate{Metric: dm.MetricBudget, Value: -1})
	assert.ErrorIs(t, err, utils.ErrInvalidInput)

	_, err = tr.Apply(g, dm.ProgressUpdate{Metric: dm.MetricRating, Value: 5.5})
	assert.ErrorIs(t, err, utils.ErrInvalidInput)
}

func TestApply_CompletesActiveGoal(t *testing.T) {
	tr := NewProgressTracker()
	g := newGoal(t, "u1", dm.GoalTypeBudget, time.Now())
	at := time.Now()

	for i, u := range []dm.ProgressUpdate{
		{Metric: dm.MetricBudget, Value: 5_000_000},
		{Metric: dm.MetricRating, Value: 3.5},
	} {
		u.Timestamp = at.Add(time.Duration(i) * time.Second)
		res, err := tr.Apply(g, u)
		require.NoError(t, err)
		assert.False(t, res.Completed)
	}
	assert.InDelta(t, 200.0/3, g.OverallProgress, 1e-9)

	res, err := tr.Apply(g, dm.ProgressUpdate{Metric: dm.MetricActivities, Value: 40, Timestamp: at.Add(time.Minute)})
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Equal(t, 100.0, g.OverallProgress, "ratios are capped at 1")
	assert.Equal(t, string(dm.GoalStatusCompleted), g.Status)
	assert.Contains(t, res.Report.Insights, "Great progress, the goal is almost reached")

	res, err = tr.Apply(g, dm.ProgressUpdate{Metric: dm.MetricActivities, Value: 41, Timestamp: at.Add(2 * time.Minute)})
	require.NoError(t, err)
	assert.False(t, res.Completed, "completion is reported once")
}

func TestApply_PausedGoalIsNotCompleted(t *testing.T) {
	tr := NewProgressTracker()
	g := newGoal(t, "u1", dm.GoalTypeLuxury, time.Now())
	g.Status = string(dm.GoalStatusPaused)
	g.CurrentBudget = g.MaxBudget
	g.AverageRating = g.MinRating

	res, err := tr.Apply(g, dm.ProgressUpdate{Metric: dm.MetricActivities, Value: 21, Timestamp: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, 100.0, g.OverallProgress)
	assert.False(t, res.Completed)
	assert.Equal(t, string(dm.GoalStatusPaused), g.Status)
}

func TestApply_DestinationsMergeVisitedIDs(t *testing.T) {
	tr := NewProgressTracker()
	g := newGoal(t, "u1", dm.GoalTypeBalanced, time.Now())
	g.PreferredDestinations = []string{"a", "b", "c"}
	g.Milestones = DeriveMilestones(g)
	at := time.Now()

	_, err := tr.Apply(g, dm.ProgressUpdate{Metric: dm.MetricDestinations, Value: 1, VisitedIDs: []string{"a", "a"}, Timestamp: at})
	require.NoError(t, err)
	res, err := tr.Apply(g, dm.ProgressUpdate{Metric: dm.MetricDestinations, Value: 0, VisitedIDs: []string{"b", "c"}, Timestamp: at.Add(time.Second)})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, []string(g.VisitedDestinationIDs))
	assert.Equal(t, 3, g.DestinationsVisited)
	require.Len(t, res.NewlyAchieved, 1)
	assert.Equal(t, string(dm.MetricDestinations), res.NewlyAchieved[0].Type)
}

func TestApply_AccommodationAndDefaultTimestamp(t *testing.T) {
	fixed := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	tr := &ProgressTracker{now: func() time.Time { return fixed }}
	g := newGoal(t, "u1", dm.GoalTypeLuxury, fixed)

	res, err := tr.Apply(g, dm.ProgressUpdate{Metric: dm.MetricAccommodation, Text: "resort"})
	require.NoError(t, err)
	assert.Equal(t, "resort", g.CurrentAccommodation)
	assert.True(t, res.Report.Timestamp.Equal(fixed))
	assert.Empty(t, res.NewlyAchieved)
}

func TestBuildReport_BudgetWarningAndNextMilestones(t *testing.T) {
	tr := NewProgressTracker()
	g := newGoal(t, "u1", dm.GoalTypeBudget, time.Now())

	res, err := tr.Apply(g, dm.ProgressUpdate{Metric: dm.MetricBudget, Value: 1_700_000, Timestamp: time.Now()})
	require.NoError(t, err)

	assert.Less(t, g.OverallProgress, 50.0)
	require.NotEmpty(t, res.Report.Recommendations)
	assert.Contains(t, res.Report.Recommendations[0], "cost-saving")

	assert.LessOrEqual(t, len(res.Report.NextMilestones), 3)
	for _, m := range res.Report.NextMilestones {
		assert.False(t, m.Achieved)
	}
}

func TestBuildReport_LowActivity(t *testing.T) {
	tr := NewProgressTracker()
	created := time.Now().Add(-72 * time.Hour)
	g := newGoal(t, "u1", dm.GoalTypeBalanced, created)

	res, err := tr.Apply(g, dm.ProgressUpdate{Metric: dm.MetricActivities, Value: 1, Timestamp: time.Now()})
	require.NoError(t, err)
	require.NotEmpty(t, res.Report.Recommendations)
	assert.Contains(t, res.Report.Recommendations[len(res.Report.Recommendations)-1], "consider adding activities")
}

func TestProRatedActivityTarget(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, utils.TripLocation())
	g := &dbm.Goal{MaxDailyActivities: 4}
	g.CreatedAt = created.Unix()

	assert.Equal(t, 4.0, ProRatedActivityTarget(g, created.Add(time.Hour)))
	assert.Equal(t, 12.0, ProRatedActivityTarget(g, created.AddDate(0, 0, 2)))
	assert.Equal(t, 28.0, ProRatedActivityTarget(g, created.AddDate(0, 0, 30)))
}
