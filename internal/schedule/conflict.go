// Package schedule decides whether a candidate flight assignment
// double-books an aircraft.  The check is a pure function over the
// candidate window and the aircraft's existing flights; rejecting the
// flight on conflict is the caller's responsibility.
package schedule

import (
    "fmt"
    "time"

    "github.com/avialta/airline-reservation/internal/model"
)

// ConflictError describes which existing flight the candidate window
// collides with.  It is returned by CheckConflict so callers can
// surface a descriptive rejection.
type ConflictError struct {
    CandidateID uint64
    ExistingID  uint64
    FlightNo    string
    DepartsAt   time.Time
    ArrivesAt   time.Time
}

func (e *ConflictError) Error() string {
    return fmt.Sprintf("schedule conflict: aircraft already assigned to flight %s (%s to %s)",
        e.FlightNo, e.DepartsAt.UTC().Format(time.RFC3339), e.ArrivesAt.UTC().Format(time.RFC3339))
}

// Overlaps reports whether two half-open intervals [aStart, aEnd) and
// [bStart, bEnd) overlap.  Touching endpoints do not overlap: a flight
// arriving at 12:00 does not conflict with one departing at 12:00.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
    return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// CheckConflict validates the candidate flight's window against every
// existing flight on the same aircraft.  Cancelled flights never
// conflict, and the candidate never conflicts with itself (relevant
// when rescheduling).  It returns nil when the window is free, or a
// *ConflictError naming the first colliding flight.
func CheckConflict(candidate *model.Flight, existing []model.Flight) error {
    for i := range existing {
        ex := &existing[i]
        if ex.ID == candidate.ID {
            continue
        }
        if ex.AircraftID != candidate.AircraftID {
            continue
        }
        if ex.Status == model.FlightStatusCancelled {
            continue
        }
        if Overlaps(candidate.DepartsAt, candidate.ArrivesAt, ex.DepartsAt, ex.ArrivesAt) {
            return &ConflictError{
                CandidateID: candidate.ID,
                ExistingID:  ex.ID,
                FlightNo:    ex.FlightNumber,
                DepartsAt:   ex.DepartsAt,
                ArrivesAt:   ex.ArrivesAt,
            }
        }
    }
    return nil
}
