package model

import "time"

// Flight statuses.  A flight moves forward through the boarding
// lifecycle; CANCELLED is terminal and removes the flight from
// schedule-conflict consideration.
const (
    FlightStatusScheduled = "SCHEDULED"
    FlightStatusBoarding  = "BOARDING"
    FlightStatusDeparted  = "DEPARTED"
    FlightStatusArrived   = "ARRIVED"
    FlightStatusDelayed   = "DELAYED"
    FlightStatusCancelled = "CANCELLED"
)

// Flight represents one scheduled leg flown by a single aircraft.
// The departure/arrival window is what the schedule conflict check
// operates on; AvailableSeats is a derived counter kept consistent
// with the seat inventory by the booking transactions.
//
// Fields:
//  ID             – primary key identifier.
//  FlightNumber   – public flight designator (e.g. AV214).
//  AircraftID     – aircraft assigned to this leg.
//  Origin         – IATA code of the departure airport.
//  Destination    – IATA code of the arrival airport.
//  DepartsAt      – scheduled departure (UTC); arrival must be after it.
//  ArrivesAt      – scheduled arrival (UTC).
//  BaseFareCents  – economy fare in cents; cabin multipliers apply.
//  Status         – lifecycle state (see constants above).
//  AvailableSeats – seats currently AVAILABLE for sale.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Flight struct {
    ID             uint64    // flights.id
    FlightNumber   string    // flights.flight_number
    AircraftID     uint64    // flights.aircraft_id
    Origin         string    // flights.origin
    Destination    string    // flights.destination
    DepartsAt      time.Time // flights.departs_at
    ArrivesAt      time.Time // flights.arrives_at
    BaseFareCents  uint32    // flights.base_fare_cents
    Status         string    // flights.status
    AvailableSeats uint32    // flights.available_seats
    CreatedAt      time.Time // flights.created_at
    UpdatedAt      time.Time // flights.updated_at
}

// ValidFlightStatus reports whether s is one of the defined flight statuses.
func ValidFlightStatus(s string) bool {
    switch s {
    case FlightStatusScheduled, FlightStatusBoarding, FlightStatusDeparted,
        FlightStatusArrived, FlightStatusDelayed, FlightStatusCancelled:
        return true
    }
    return false
}
