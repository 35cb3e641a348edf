package services

import (
	"fmt"
	"math"
	"strings"

	dm "tripwise/internal/models/domain_models"
	"tripwise/pkg/utils"
)

const defaultDurationMinutes = 60

type DayScheduler struct {
	distances DistanceTable
	defaults  dm.ScheduleWindow
}

func NewDayScheduler(distances DistanceTable, defaults dm.ScheduleWindow) *DayScheduler {
	if distances == nil {
		distances = NewStaticDistanceTable()
	}
	return &DayScheduler{distances: distances, defaults: defaults}
}

type ScheduleResult struct {
	Days     []dm.ItineraryDay
	Window   dm.ScheduleWindow
	Warnings []string
}

type dayWindow struct {
	start       int
	end         int
	buffer      int
	allowRepeat map[string]bool
}

// ResolveWindow fills the request window from the scheduler defaults.
func (s *DayScheduler) ResolveWindow(w *dm.ScheduleWindow) dm.ScheduleWindow {
	out := s.defaults
	if w == nil {
		return out
	}
	if w.StartTime != "" {
		out.StartTime = w.StartTime
	}
	if w.EndTime != "" {
		out.EndTime = w.EndTime
	}
	if w.BufferMinutes != nil {
		b := *w.BufferMinutes
		out.BufferMinutes = &b
	}
	if len(w.AllowRepeat) > 0 {
		out.AllowRepeat = append([]string(nil), w.AllowRepeat...)
	}
	return out
}

func parseWindow(w dm.ScheduleWindow) (dayWindow, error) {
	start, err := utils.ParseClock(w.StartTime)
	if err != nil {
		return dayWindow{}, err
	}
	end, err := utils.ParseClock(w.EndTime)
	if err != nil {
		return dayWindow{}, err
	}
	if end <= start {
		return dayWindow{}, fmt.Errorf("%w: day window %s-%s is empty", utils.ErrInvalidInput, w.StartTime, w.EndTime)
	}
	buffer := 30
	if w.BufferMinutes != nil {
		buffer = *w.BufferMinutes
	}
	if buffer < 0 {
		return dayWindow{}, fmt.Errorf("%w: negative buffer", utils.ErrInvalidInput)
	}
	allow := make(map[string]bool, len(w.AllowRepeat))
	for _, id := range w.AllowRepeat {
		allow[id] = true
	}
	return dayWindow{start: start, end: end, buffer: buffer, allowRepeat: allow}, nil
}

// Schedule distributes recommendations over the days from firstDay up to
// c.Days, orders each day and packs it into the day window.
func (s *DayScheduler) Schedule(recs []dm.Recommendation, c dm.Constraints, w dm.ScheduleWindow, firstDay int) (ScheduleResult, error) {
	win, err := parseWindow(w)
	if err != nil {
		return ScheduleResult{}, err
	}
	days := c.Days - firstDay
	if days <= 0 {
		return ScheduleResult{Window: w}, nil
	}

	pool := dedupe(recs, win.allowRepeat)
	if c.MaxDailyActivities > 0 && len(pool) > days*c.MaxDailyActivities {
		pool = pool[:days*c.MaxDailyActivities]
	}

	res := ScheduleResult{Window: w, Days: make([]dm.ItineraryDay, 0, days)}
	if len(pool) == 0 {
		res.Warnings = append(res.Warnings, "no candidate destinations available; days are left empty")
	}

	chunk := int(math.Ceil(float64(len(pool)) / float64(days)))
	var last *Place
	for i := 0; i < days; i++ {
		index := firstDay + i
		var part []dm.Recommendation
		if lo := i * chunk; lo < len(pool) {
			part = pool[lo:min(lo+chunk, len(pool))]
		}

		day := dm.ItineraryDay{
			DayIndex:     index,
			Date:         utils.FormatDate(utils.TripDay(c.StartDate, index)),
			Destinations: []dm.ScheduledDestination{},
		}
		if len(part) == 0 {
			if len(pool) > 0 {
				day.Warnings = append(day.Warnings, "no destinations left for this day")
			}
			res.Days = append(res.Days, day)
			continue
		}

		ordered, note := orderDay(part)
		day.OptimizationNotes = append(day.OptimizationNotes, note)
		s.pack(&day, ordered, win, c.Travelers)
		res.Warnings = append(res.Warnings, prefixed(index, day.Warnings)...)

		if place := dayPlace(day); place != nil {
			if last != nil && !strings.EqualFold(normalizeCity(last.Label), normalizeCity(place.Label)) {
				km := s.distances.DistanceKm(*last, *place)
				leg := TransportLeg(*last, *place, km, c.Travelers)
				day.Transportation = &leg
				day.TotalCost += leg.Cost
				day.OptimizationNotes = append(day.OptimizationNotes,
					fmt.Sprintf("%s from %s (%.0f km)", leg.Mode, leg.From, leg.DistanceKm))
			}
			last = place
		}
		res.Days = append(res.Days, day)
	}
	return res, nil
}

func (s *DayScheduler) pack(day *dm.ItineraryDay, ordered []dm.Recommendation, win dayWindow, travelers int) {
	if travelers <= 0 {
		travelers = 1
	}
	clock := win.start
	scoreSum := 0.0
	for i, r := range ordered {
		dur := r.Destination.DurationMinutes
		if dur <= 0 {
			dur = defaultDurationMinutes
		}
		if dur > win.end-clock {
			if i == 0 {
				day.Warnings = append(day.Warnings, fmt.Sprintf(
					"%s needs %d minutes and does not fit the day window", displayName(r.Destination), dur))
			} else {
				day.OptimizationNotes = append(day.OptimizationNotes,
					fmt.Sprintf("%d destination(s) did not fit the day window and were dropped", len(ordered)-i))
			}
			break
		}
		day.Destinations = append(day.Destinations, dm.ScheduledDestination{
			Destination:     r.Destination,
			StartTime:       utils.FormatClock(clock),
			EndTime:         utils.FormatClock(clock + dur),
			DurationMinutes: dur,
			Score:           r.AdjustedScore,
		})
		day.TotalCost += r.Destination.EstimatedCost * float64(travelers)
		scoreSum += r.AdjustedScore
		clock += dur
		if win.buffer > win.end-clock {
			clock = win.end
		} else {
			clock += win.buffer
		}
	}
	if n := len(day.Destinations); n > 0 {
		first, _ := utils.ParseClock(day.Destinations[0].StartTime)
		lastEnd, _ := utils.ParseClock(day.Destinations[n-1].EndTime)
		day.TotalTimeMinutes = lastEnd - first
		day.ConfidenceScore = scoreSum / float64(n)
	}
}

func dedupe(recs []dm.Recommendation, allow map[string]bool) []dm.Recommendation {
	seen := make(map[string]bool, len(recs))
	out := make([]dm.Recommendation, 0, len(recs))
	for _, r := range recs {
		id := r.Destination.ID
		if seen[id] && !allow[id] {
			continue
		}
		seen[id] = true
		out = append(out, r)
	}
	return out
}

// orderDay walks nearest-neighbor from the best candidate when every
// candidate has coordinates, otherwise keeps score order while avoiding
// consecutive visits of the same category.
func orderDay(part []dm.Recommendation) ([]dm.Recommendation, string) {
	for _, r := range part {
		if r.Destination.Coordinates == nil {
			return diversify(part), "ordered by score with category diversity"
		}
	}
	return nearestNeighbor(part), "ordered by nearest-neighbor walk"
}

func nearestNeighbor(part []dm.Recommendation) []dm.Recommendation {
	n := len(part)
	used := make([]bool, n)
	out := make([]dm.Recommendation, 0, n)
	cur := 0
	used[0] = true
	out = append(out, part[0])
	for len(out) < n {
		best, bestKm := -1, math.Inf(1)
		for j := 0; j < n; j++ {
			if used[j] {
				continue
			}
			km := haversineKm(*part[cur].Destination.Coordinates, *part[j].Destination.Coordinates)
			if km < bestKm {
				best, bestKm = j, km
			}
		}
		used[best] = true
		out = append(out, part[best])
		cur = best
	}
	return out
}

func diversify(part []dm.Recommendation) []dm.Recommendation {
	rest := append([]dm.Recommendation(nil), part...)
	out := make([]dm.Recommendation, 0, len(part))
	prev := ""
	for len(rest) > 0 {
		pick := 0
		for j, r := range rest {
			if r.Destination.Category != prev {
				pick = j
				break
			}
		}
		out = append(out, rest[pick])
		prev = rest[pick].Destination.Category
		rest = append(rest[:pick], rest[pick+1:]...)
	}
	return out
}

// dayPlace reports the dominant location of a scheduled day.
func dayPlace(day dm.ItineraryDay) *Place {
	if len(day.Destinations) == 0 {
		return nil
	}
	counts := map[string]int{}
	label, best := "", 0
	var lat, lng float64
	withCoords := true
	for _, sd := range day.Destinations {
		loc := sd.Destination.Location
		counts[loc]++
		if counts[loc] > best {
			label, best = loc, counts[loc]
		}
		if sd.Destination.Coordinates == nil {
			withCoords = false
			continue
		}
		lat += sd.Destination.Coordinates.Lat
		lng += sd.Destination.Coordinates.Lng
	}
	p := &Place{Label: label}
	if withCoords {
		n := float64(len(day.Destinations))
		p.Centroid = &dm.Coordinates{Lat: lat / n, Lng: lng / n}
	}
	return p
}

func displayName(d dm.Destination) string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

func prefixed(dayIndex int, msgs []string) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, fmt.Sprintf("day %d: %s", dayIndex+1, m))
	}
	return out
}
