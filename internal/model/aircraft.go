package model

import "time"

// Aircraft is a read-only input to seat provisioning and schedule
// conflict checks: its capacity sizes the seat map and its identity
// anchors the non-overlap rule for flight windows.
type Aircraft struct {
    ID           uint64    // aircraft.id
    TailNumber   string    // aircraft.tail_number (unique)
    Manufacturer string    // aircraft.manufacturer
    Model        string    // aircraft.model
    TotalSeats   uint32    // aircraft.total_seats
    CreatedAt    time.Time // aircraft.created_at
}
