package utils

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidPreferences = errors.New("invalid preferences")
	ErrInvalidGoalType    = errors.New("invalid goal type")
	ErrInvalidMetric      = errors.New("invalid progress metric")
	ErrInvalidStatus      = errors.New("invalid goal status")
	ErrGoalNotFound       = errors.New("goal not found")
	ErrSnapshotNotFound   = errors.New("itinerary snapshot not found")
	ErrStaleUpdate        = errors.New("stale progress update")
	ErrReplanInFlight     = errors.New("replan already in flight")
	ErrScorerUnavailable  = errors.New("personalization scorer unavailable")
	ErrDatabaseError      = errors.New("database error")
)
