package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	dm "tripwise/internal/models/domain_models"
)

// PersonalizationScorer supplies the opaque per-user base relevance of a
// destination in [0,1].
type PersonalizationScorer interface {
	BaseScore(ctx context.Context, userID string, c dm.Constraints, d dm.Destination) (float64, error)
}

const (
	weightCategory = 0.35
	weightLocation = 0.15
	weightPrice    = 0.20
	weightExternal = 0.30

	neutralScore       = 0.5
	interestBonus      = 0.05
	maxInterestBonus   = 0.15
	preferredBonus     = 0.1
	profileShare       = 0.7
	templateShare      = 0.3
	requestedCityFit   = 0.8
	otherCityFit       = 0.2
	belowRangePriceFit = 0.8
)

type DestinationScorer struct {
	external PersonalizationScorer
	timeout  time.Duration
}

func NewDestinationScorer(external PersonalizationScorer, timeout time.Duration) *DestinationScorer {
	return &DestinationScorer{external: external, timeout: timeout}
}

type ScoreResult struct {
	Ranked   []dm.ScoredDestination
	Warnings []string
}

// Score ranks candidates by base relevance. Scorer failures fall back to a
// neutral external score and are reported as a warning.
func (s *DestinationScorer) Score(
	ctx context.Context,
	userID string,
	c dm.Constraints,
	profile *dm.PreferenceProfile,
	candidates []dm.Destination,
) ScoreResult {
	if profile == nil {
		profile = &dm.PreferenceProfile{}
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	ranked := make([]dm.ScoredDestination, 0, len(candidates))
	failed := 0
	for _, d := range candidates {
		ext, ok := s.externalScore(ctx, userID, c, d)
		if !ok {
			failed++
		}
		ranked = append(ranked, dm.ScoredDestination{
			Destination: d,
			BaseScore:   baseScore(c, profile, d, ext),
		})
	}
	SortScored(ranked)

	var warnings []string
	if failed > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"personalization scorer unavailable for %d of %d destinations, neutral score used", failed, len(candidates)))
	}
	return ScoreResult{Ranked: ranked, Warnings: warnings}
}

func (s *DestinationScorer) externalScore(ctx context.Context, userID string, c dm.Constraints, d dm.Destination) (float64, bool) {
	if s.external == nil {
		return neutralScore, true
	}
	if ctx.Err() != nil {
		return neutralScore, false
	}
	v, err := s.external.BaseScore(ctx, userID, c, d)
	if err != nil {
		slog.Warn("personalization scorer failed", "destination_id", d.ID, "error", err)
		return neutralScore, false
	}
	return clamp01(v), true
}

func baseScore(c dm.Constraints, profile *dm.PreferenceProfile, d dm.Destination, external float64) float64 {
	score := weightCategory*categoryAffinity(c, profile, d) +
		weightLocation*locationAffinity(c, profile, d) +
		weightPrice*priceFit(profile.PriceRange, d.EstimatedCost) +
		weightExternal*external
	if isPreferred(c, d) {
		score += preferredBonus
	}
	return clamp01(score)
}

func categoryAffinity(c dm.Constraints, profile *dm.PreferenceProfile, d dm.Destination) float64 {
	p, ok := profile.CategoryWeights[d.Category]
	if !ok {
		p = neutralScore
	}
	t, ok := c.CategoryWeights[d.Category]
	if !ok {
		t = neutralScore
	}
	bonus := 0.0
	for _, interest := range c.Interests {
		if strings.EqualFold(interest, d.Category) || containsFold(d.Tags, interest) {
			bonus += interestBonus
		}
	}
	if bonus > maxInterestBonus {
		bonus = maxInterestBonus
	}
	return clamp01(profileShare*p + templateShare*t + bonus)
}

func locationAffinity(c dm.Constraints, profile *dm.PreferenceProfile, d dm.Destination) float64 {
	if w, ok := profile.LocationWeights[d.Location]; ok {
		return clamp01(w)
	}
	if len(c.Cities) == 0 {
		return neutralScore
	}
	if containsFold(c.Cities, d.Location) {
		return requestedCityFit
	}
	return otherCityFit
}

func priceFit(r dm.PriceRange, cost float64) float64 {
	if r.Max <= 0 {
		return neutralScore
	}
	switch {
	case cost < r.Min:
		return belowRangePriceFit
	case cost <= r.Max:
		return 1
	default:
		fit := 1 - (cost-r.Max)/r.Max
		if fit < 0 {
			return 0
		}
		return fit
	}
}

func isPreferred(c dm.Constraints, d dm.Destination) bool {
	for _, list := range [][]string{c.PreferredSpots, c.PreferredDestinations} {
		if containsFold(list, d.ID) || (d.Name != "" && containsFold(list, d.Name)) {
			return true
		}
	}
	return false
}

// SortScored orders by score desc, then rating desc, then id asc.
func SortScored(list []dm.ScoredDestination) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.BaseScore != b.BaseScore {
			return a.BaseScore > b.BaseScore
		}
		if a.Destination.Rating != b.Destination.Rating {
			return a.Destination.Rating > b.Destination.Rating
		}
		return a.Destination.ID < b.Destination.ID
	})
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
