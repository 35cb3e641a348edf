package services

import (
	"sort"

	dm "tripwise/internal/models/domain_models"
)

type goalFilter struct {
	PriceMin         float64
	PriceMax         float64
	RatingThreshold  float64
	CategoryPriority map[string]float64
}

var goalFilters = map[dm.GoalType]goalFilter{
	dm.GoalTypeBudget: {
		PriceMin: 0, PriceMax: 100_000, RatingThreshold: 3.5,
		CategoryPriority: map[string]float64{
			"street_food": 0.9, "market": 0.8, "park": 0.8, "museum": 0.6,
			"temple": 0.7, "shopping": 0.3, "spa": 0.2, "fine_dining": 0.1,
		},
	},
	dm.GoalTypeBalanced: {
		PriceMin: 50_000, PriceMax: 500_000, RatingThreshold: 4.0,
		CategoryPriority: map[string]float64{
			"museum": 0.7, "restaurant": 0.7, "nature": 0.7, "temple": 0.6,
			"shopping": 0.5, "spa": 0.5,
		},
	},
	dm.GoalTypeLuxury: {
		PriceMin: 300_000, PriceMax: 5_000_000, RatingThreshold: 4.5,
		CategoryPriority: map[string]float64{
			"fine_dining": 0.9, "spa": 0.9, "resort": 0.9, "shopping": 0.7,
			"museum": 0.6, "street_food": 0.2,
		},
	},
	dm.GoalTypeBackpacker: {
		PriceMin: 0, PriceMax: 50_000, RatingThreshold: 3.0,
		CategoryPriority: map[string]float64{
			"nature": 0.9, "hiking": 0.9, "street_food": 0.8, "market": 0.7,
			"park": 0.8, "fine_dining": 0.1, "spa": 0.1,
		},
	},
}

const (
	priceInWindow    = 0.2
	priceBelowWindow = 0.1
	priceAboveWindow = -0.3

	ratingAboveSlope = 0.2
	ratingBelowSlope = 0.5

	// Candidates at or below this adjusted score are dropped.
	minAdjustedScore = 0.3
)

func filterFor(goalType dm.GoalType) goalFilter {
	if f, ok := goalFilters[goalType]; ok {
		return f
	}
	return goalFilters[dm.GoalTypeBalanced]
}

// AdjustRecommendations re-scores ranked candidates against the goal type's
// filter table, drops weak ones and caps the list. count <= 0 keeps all.
func AdjustRecommendations(goalType dm.GoalType, ranked []dm.ScoredDestination, count int) []dm.Recommendation {
	f := filterFor(goalType)

	out := make([]dm.Recommendation, 0, len(ranked))
	for _, sd := range ranked {
		rec := adjustOne(f, sd)
		if rec.AdjustedScore <= minAdjustedScore {
			continue
		}
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.AdjustedScore != b.AdjustedScore {
			return a.AdjustedScore > b.AdjustedScore
		}
		if a.Destination.Rating != b.Destination.Rating {
			return a.Destination.Rating > b.Destination.Rating
		}
		return a.Destination.ID < b.Destination.ID
	})

	if count > 0 && len(out) > count {
		out = out[:count]
	}
	return out
}

func adjustOne(f goalFilter, sd dm.ScoredDestination) dm.Recommendation {
	d := sd.Destination
	priority, ok := f.CategoryPriority[d.Category]
	if !ok {
		priority = neutralScore
	}

	inWindow := d.EstimatedCost >= f.PriceMin && d.EstimatedCost <= f.PriceMax
	var priceAdj float64
	switch {
	case inWindow:
		priceAdj = priceInWindow
	case d.EstimatedCost < f.PriceMin:
		priceAdj = priceBelowWindow
	default:
		priceAdj = priceAboveWindow
	}

	ratingOK := d.Rating >= f.RatingThreshold
	var boost float64
	if ratingOK {
		boost = (d.Rating - f.RatingThreshold) * ratingAboveSlope
	} else {
		boost = (d.Rating - f.RatingThreshold) * ratingBelowSlope
	}

	adjusted := sd.BaseScore + priceAdj*0.2 + boost*0.3 + (priority-0.5)*0.4

	alignment := 0.4 * priority
	if inWindow {
		alignment += 0.3
	}
	if ratingOK {
		alignment += 0.3
	}

	return dm.Recommendation{
		Destination:      d,
		BaseScore:        sd.BaseScore,
		PriceAdjustment:  priceAdj,
		RatingBoost:      boost,
		CategoryPriority: priority,
		AdjustedScore:    clamp01(adjusted),
		GoalAlignment:    clamp01(alignment),
	}
}

// MeanAlignment averages goal alignment over the recommendations.
func MeanAlignment(recs []dm.Recommendation) float64 {
	if len(recs) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range recs {
		sum += r.GoalAlignment
	}
	return sum / float64(len(recs))
}
