// utils/timeutil.go
package utils

import (
	"fmt"
	"time"
)

// Vietnam time location (ICT, +07:00), used for trip dates.
var vnLoc = func() *time.Location {
	if loc, err := time.LoadLocation("Asia/Ho_Chi_Minh"); err == nil {
		return loc
	}
	return time.FixedZone("ICT", 7*3600)
}()

func TripLocation() *time.Location { return vnLoc }

// ParseClock converts "HH:MM" into minutes after midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: bad clock %q", ErrInvalidInput, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes after midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// TripDay returns the calendar date of the given zero-based day offset,
// normalized to midnight in the trip location.
func TripDay(start time.Time, offset int) time.Time {
	if start.IsZero() {
		return time.Time{}
	}
	s := start.In(vnLoc)
	base := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, vnLoc)
	return base.AddDate(0, 0, offset)
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(vnLoc).Format("2006-01-02")
}

// ElapsedDays counts calendar days from start to now, inclusive of the first day.
func ElapsedDays(start, now time.Time) int {
	if start.IsZero() || now.Before(start) {
		return 1
	}
	s := TripDay(start, 0)
	n := TripDay(now, 0)
	return int(n.Sub(s).Hours()/24) + 1
}
