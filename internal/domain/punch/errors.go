package punch

import (
	"errors"
	"fmt"
)

var (
	ErrPunchNotFound   = errors.New("punch record not found")
	ErrWorkDayNotFound = errors.New("no work day summary for this date")
	ErrEditLogNotFound = errors.New("edit log entry not found")
)

// SequenceError reports an illegal punch transition with a human-readable
// next-step hint. It is never retried automatically.
type SequenceError struct {
	Last      Type
	Requested Type
	Reason    string
}

func (e *SequenceError) Error() string {
	return e.Reason
}

// GeofenceError reports a punch attempted outside the company geofence.
// Distance and radius are surfaced so the client can show both.
type GeofenceError struct {
	DistanceMeters float64
	RadiusMeters   float64
}

func (e *GeofenceError) Error() string {
	return fmt.Sprintf("you are outside the allowed radius: %.0fm away, allowed %.0fm", e.DistanceMeters, e.RadiusMeters)
}
