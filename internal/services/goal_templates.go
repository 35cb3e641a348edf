package services

import (
	"fmt"
	"slices"
	"strings"

	dm "tripwise/internal/models/domain_models"
	"tripwise/pkg/utils"
)

type goalTemplate struct {
	MaxBudget          float64
	MinRating          float64
	AccommodationTier  string
	MaxDailyActivities int
	// CategoryWeights feed the scorer's category affinity. The adjuster keeps
	// its own priority table.
	CategoryWeights map[string]float64
}

var goalTemplates = map[dm.GoalType]goalTemplate{
	dm.GoalTypeBudget: {
		MaxBudget:          2_000_000,
		MinRating:          3.5,
		AccommodationTier:  "hostel",
		MaxDailyActivities: 5,
		CategoryWeights: map[string]float64{
			"street_food": 0.85, "market": 0.75, "park": 0.7, "temple": 0.65,
			"museum": 0.55, "shopping": 0.35, "spa": 0.2, "fine_dining": 0.15,
		},
	},
	dm.GoalTypeBalanced: {
		MaxBudget:          5_000_000,
		MinRating:          4.0,
		AccommodationTier:  "hotel",
		MaxDailyActivities: 4,
		CategoryWeights: map[string]float64{
			"museum": 0.65, "restaurant": 0.65, "nature": 0.65, "temple": 0.6,
			"shopping": 0.55, "spa": 0.5,
		},
	},
	dm.GoalTypeLuxury: {
		MaxBudget:          15_000_000,
		MinRating:          4.5,
		AccommodationTier:  "resort",
		MaxDailyActivities: 3,
		CategoryWeights: map[string]float64{
			"fine_dining": 0.85, "spa": 0.85, "resort": 0.85, "shopping": 0.7,
			"museum": 0.6, "street_food": 0.3,
		},
	},
	dm.GoalTypeBackpacker: {
		MaxBudget:          1_000_000,
		MinRating:          3.0,
		AccommodationTier:  "hostel",
		MaxDailyActivities: 6,
		CategoryWeights: map[string]float64{
			"nature": 0.85, "hiking": 0.85, "street_food": 0.75, "park": 0.75,
			"market": 0.7, "fine_dining": 0.15, "spa": 0.15,
		},
	},
}

// ParseGoalType normalizes a goal type string. Empty input yields "" with no error.
func ParseGoalType(raw string) (dm.GoalType, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return "", nil
	}
	t := dm.GoalType(raw)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", utils.ErrInvalidGoalType, raw)
	}
	return t, nil
}

// ResolveConstraints overlays traveler preferences and metric overrides on the
// template of the requested goal type. Without a goal type the balanced
// template supplies defaults and the result is not goal-aware.
func ResolveConstraints(prefs dm.Preferences, goalType string, overrides *dm.MetricOverrides) (dm.Constraints, error) {
	if prefs.Budget <= 0 || prefs.Days <= 0 {
		return dm.Constraints{}, fmt.Errorf("%w: budget=%v days=%d", utils.ErrInvalidPreferences, prefs.Budget, prefs.Days)
	}

	gt, err := ParseGoalType(goalType)
	if err != nil {
		return dm.Constraints{}, err
	}
	aware := gt != ""
	if !aware {
		gt = dm.GoalTypeBalanced
	}
	tpl := goalTemplates[gt]

	travelers := prefs.Travelers
	if travelers <= 0 {
		travelers = 1
	}

	c := dm.Constraints{
		GoalType:           gt,
		GoalAware:          aware,
		Budget:             prefs.Budget,
		Days:               prefs.Days,
		Travelers:          travelers,
		StartDate:          prefs.StartDate,
		Cities:             slices.Clone(prefs.Cities),
		Interests:          slices.Clone(prefs.Interests),
		PreferredSpots:     slices.Clone(prefs.PreferredSpots),
		MaxBudget:          tpl.MaxBudget,
		MinRating:          tpl.MinRating,
		AccommodationTier:  tpl.AccommodationTier,
		MaxDailyActivities: tpl.MaxDailyActivities,
		CategoryWeights:    make(map[string]float64, len(tpl.CategoryWeights)),
	}
	for k, v := range tpl.CategoryWeights {
		c.CategoryWeights[k] = v
	}
	if prefs.AccommodationTier != "" {
		c.AccommodationTier = prefs.AccommodationTier
	}

	if err := applyOverrides(&c, overrides); err != nil {
		return dm.Constraints{}, err
	}
	return c, nil
}

func applyOverrides(c *dm.Constraints, o *dm.MetricOverrides) error {
	if o == nil {
		return nil
	}
	if o.MaxBudget != nil {
		if *o.MaxBudget <= 0 {
			return fmt.Errorf("%w: max budget override must be positive", utils.ErrInvalidPreferences)
		}
		c.MaxBudget = *o.MaxBudget
	}
	if o.MinRating != nil {
		if *o.MinRating < 0 || *o.MinRating > 5 {
			return fmt.Errorf("%w: min rating override must be within 0..5", utils.ErrInvalidPreferences)
		}
		c.MinRating = *o.MinRating
	}
	if o.AccommodationTier != nil && *o.AccommodationTier != "" {
		c.AccommodationTier = *o.AccommodationTier
	}
	if o.MaxDailyActivities != nil {
		if *o.MaxDailyActivities <= 0 {
			return fmt.Errorf("%w: max daily activities override must be positive", utils.ErrInvalidPreferences)
		}
		c.MaxDailyActivities = *o.MaxDailyActivities
	}
	if len(o.PreferredDestinations) > 0 {
		c.PreferredDestinations = slices.Clone(o.PreferredDestinations)
	}
	return nil
}

// GoalTargets resolves the targets of a goal with no traveler preferences,
// used when a goal is created before any itinerary is generated.
func GoalTargets(goalType dm.GoalType, overrides *dm.MetricOverrides) (dm.Constraints, error) {
	if !goalType.Valid() {
		return dm.Constraints{}, fmt.Errorf("%w: %q", utils.ErrInvalidGoalType, goalType)
	}
	tpl := goalTemplates[goalType]
	return ResolveConstraints(dm.Preferences{Budget: tpl.MaxBudget, Days: 1}, string(goalType), overrides)
}
