package services

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"
	"time"

	"gorm.io/datatypes"

	"tripwise/internal/models/db_models"
	dm "tripwise/internal/models/domain_models"
	resp "tripwise/internal/models/response_models"
	"tripwise/pkg/utils"
)

const (
	trackedWeekDays         = 7
	completionThreshold     = 90.0
	budgetWarnSpentRatio    = 0.8
	budgetWarnProgress      = 50.0
	lowActivityRatio        = 0.3
	positiveInsightProgress = 75.0
	maxNextMilestones       = 3
)

var budgetMilestoneShares = []float64{0.25, 0.5, 0.75}
var activityMilestoneShares = []float64{0.5, 1.0}

type ProgressTracker struct {
	now func() time.Time
}

func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{now: time.Now}
}

// TrackResult is the outcome of one accepted progress update.
type TrackResult struct {
	NewlyAchieved []db_models.Milestone
	Completed     bool
	Report        resp.ProgressReport
}

// DeriveMilestones builds the milestone set of a freshly created goal.
func DeriveMilestones(goal *db_models.Goal) []db_models.Milestone {
	var out []db_models.Milestone
	add := func(metric dm.Metric, label string, target float64) {
		out = append(out, db_models.Milestone{
			GoalID:      goal.ID,
			Type:        string(metric),
			Label:       label,
			TargetValue: target,
		})
	}

	if goal.MaxBudget > 0 {
		for _, share := range budgetMilestoneShares {
			add(dm.MetricBudget, fmt.Sprintf("%.0f%% of budget spent", share*100), math.Round(goal.MaxBudget*share))
		}
	}
	if goal.MinRating > 0 {
		add(dm.MetricRating, fmt.Sprintf("Average rating of at least %.1f", goal.MinRating), goal.MinRating)
	}
	if weekly := weeklyActivityTarget(goal); weekly > 0 {
		for _, share := range activityMilestoneShares {
			target := math.Ceil(weekly * share)
			add(dm.MetricActivities, fmt.Sprintf("%.0f activities completed", target), target)
		}
	}
	if n := len(goal.PreferredDestinations); n > 0 {
		add(dm.MetricDestinations, fmt.Sprintf("%d preferred destinations visited", n), float64(n))
	}
	return out
}

func weeklyActivityTarget(goal *db_models.Goal) float64 {
	return float64(goal.MaxDailyActivities * trackedWeekDays)
}

// ProRatedActivityTarget scales the daily cap by the days elapsed since the
// goal was created, capped at one week.
func ProRatedActivityTarget(goal *db_models.Goal, at time.Time) float64 {
	days := min(trackedWeekDays, utils.ElapsedDays(goal.CreatedTime(), at))
	return float64(goal.MaxDailyActivities * days)
}

// Apply records one update on the goal and its milestones. Updates strictly
// older than the stored timestamp of the same metric are rejected.
func (t *ProgressTracker) Apply(goal *db_models.Goal, u dm.ProgressUpdate) (TrackResult, error) {
	if !u.Metric.Valid() {
		return TrackResult{}, fmt.Errorf("%w: %q", utils.ErrInvalidMetric, u.Metric)
	}
	if u.Value < 0 || (u.Metric == dm.MetricRating && u.Value > 5) {
		return TrackResult{}, fmt.Errorf("%w: %s value %v out of range", utils.ErrInvalidInput, u.Metric, u.Value)
	}
	if u.Timestamp.IsZero() {
		u.Timestamp = t.now()
	}

	stamps := maps.Clone(goal.MetricTimestamps.Data())
	if stamps == nil {
		stamps = db_models.MetricTimestamps{}
	}
	if prev, ok := stamps[string(u.Metric)]; ok && u.Timestamp.Before(prev) {
		return TrackResult{}, fmt.Errorf("%w: %s at %s is older than %s",
			utils.ErrStaleUpdate, u.Metric, u.Timestamp.Format(time.RFC3339), prev.Format(time.RFC3339))
	}

	current := applyMetric(goal, u)
	stamps[string(u.Metric)] = u.Timestamp
	goal.MetricTimestamps = datatypes.NewJSONType(stamps)
	if goal.ProgressUpdatedAt == nil || u.Timestamp.After(*goal.ProgressUpdatedAt) {
		ts := u.Timestamp
		goal.ProgressUpdatedAt = &ts
	}

	var newly []db_models.Milestone
	for i := range goal.Milestones {
		m := &goal.Milestones[i]
		if m.Type != string(u.Metric) {
			continue
		}
		m.CurrentValue = current
		if !m.Achieved && current >= m.TargetValue {
			ts := u.Timestamp
			m.Achieved = true
			m.AchievedAt = &ts
			newly = append(newly, *m)
		}
	}

	goal.OverallProgress = OverallProgress(goal)
	completed := false
	if goal.Status == string(dm.GoalStatusActive) && goal.OverallProgress >= completionThreshold {
		goal.Status = string(dm.GoalStatusCompleted)
		completed = true
	}

	return TrackResult{
		NewlyAchieved: newly,
		Completed:     completed,
		Report:        BuildReport(goal, newly, u.Timestamp),
	}, nil
}

// applyMetric overwrites the progress field of the metric and returns the
// value milestones of that metric compare against.
func applyMetric(goal *db_models.Goal, u dm.ProgressUpdate) float64 {
	switch u.Metric {
	case dm.MetricBudget:
		goal.CurrentBudget = u.Value
		return goal.CurrentBudget
	case dm.MetricRating:
		goal.AverageRating = u.Value
		return goal.AverageRating
	case dm.MetricActivities:
		goal.ActivitiesCompleted = int(math.Round(u.Value))
		return float64(goal.ActivitiesCompleted)
	case dm.MetricDestinations:
		visited := slices.Clone([]string(goal.VisitedDestinationIDs))
		for _, id := range u.VisitedIDs {
			if id != "" && !slices.Contains(visited, id) {
				visited = append(visited, id)
			}
		}
		goal.VisitedDestinationIDs = visited
		goal.DestinationsVisited = max(int(math.Round(u.Value)), len(visited))
		return float64(goal.DestinationsVisited)
	case dm.MetricAccommodation:
		goal.CurrentAccommodation = u.Text
	}
	return 0
}

// OverallProgress averages, over the metrics the goal defines, the ratio of
// progress to target with each ratio capped at 1.
func OverallProgress(goal *db_models.Goal) float64 {
	var ratios []float64
	if goal.MaxBudget > 0 {
		ratios = append(ratios, goal.CurrentBudget/goal.MaxBudget)
	}
	if goal.MinRating > 0 {
		ratios = append(ratios, goal.AverageRating/goal.MinRating)
	}
	if weekly := weeklyActivityTarget(goal); weekly > 0 {
		ratios = append(ratios, float64(goal.ActivitiesCompleted)/weekly)
	}
	if n := len(goal.PreferredDestinations); n > 0 {
		ratios = append(ratios, float64(goal.DestinationsVisited)/float64(n))
	}
	if len(ratios) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range ratios {
		sum += math.Min(r, 1)
	}
	return math.Max(0, math.Min(100, sum/float64(len(ratios))*100))
}

// BuildReport renders the current state of the goal. newly lists the
// milestones achieved by the update that produced the report.
func BuildReport(goal *db_models.Goal, newly []db_models.Milestone, at time.Time) resp.ProgressReport {
	report := resp.ProgressReport{
		GoalID:          goal.ID.String(),
		Status:          goal.Status,
		OverallProgress: math.Round(goal.OverallProgress*100) / 100,
		Milestones:      ToMilestoneResponses(goal.Milestones),
		NextMilestones:  nextMilestones(goal.Milestones),
		Timestamp:       at,
	}

	for _, m := range newly {
		report.Insights = append(report.Insights, fmt.Sprintf("Milestone reached: %s", m.Label))
	}
	if goal.MaxBudget > 0 && goal.CurrentBudget > budgetWarnSpentRatio*goal.MaxBudget && goal.OverallProgress < budgetWarnProgress {
		report.Insights = append(report.Insights, fmt.Sprintf("%.0f%% of the budget is spent with less than half of the goal reached", goal.CurrentBudget/goal.MaxBudget*100))
		report.Recommendations = append(report.Recommendations, "Consider cost-saving alternatives such as street food, markets and free attractions")
	}
	if goal.Reported(string(dm.MetricRating)) && goal.MinRating > 0 && goal.AverageRating < goal.MinRating {
		report.Recommendations = append(report.Recommendations, fmt.Sprintf("Average rating %.1f is below the %.1f target; prefer higher-rated destinations", goal.AverageRating, goal.MinRating))
	}
	if goal.Reported(string(dm.MetricActivities)) {
		if target := ProRatedActivityTarget(goal, at); target > 0 && float64(goal.ActivitiesCompleted) < lowActivityRatio*target {
			report.Recommendations = append(report.Recommendations, fmt.Sprintf("Only %d of about %.0f planned activities done so far; consider adding activities", goal.ActivitiesCompleted, target))
		}
	}
	if goal.OverallProgress >= positiveInsightProgress {
		report.Insights = append(report.Insights, "Great progress, the goal is almost reached")
	}
	return report
}

func nextMilestones(list []db_models.Milestone) []resp.MilestoneResponse {
	var open []db_models.Milestone
	for _, m := range list {
		if !m.Achieved {
			open = append(open, m)
		}
	}
	closeness := func(m db_models.Milestone) float64 {
		if m.TargetValue <= 0 {
			return 1
		}
		return m.CurrentValue / m.TargetValue
	}
	sort.SliceStable(open, func(i, j int) bool {
		ci, cj := closeness(open[i]), closeness(open[j])
		if ci != cj {
			return ci > cj
		}
		return open[i].TargetValue < open[j].TargetValue
	})
	if len(open) > maxNextMilestones {
		open = open[:maxNextMilestones]
	}
	return ToMilestoneResponses(open)
}
