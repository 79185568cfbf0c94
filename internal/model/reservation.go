package model

import "time"

// Reservation statuses.  CANCELLED and COMPLETED are terminal;
// cancelling a reservation that is already terminal is an invalid
// state transition, not a no-op.
const (
    ReservationStatusPending   = "PENDING"
    ReservationStatusConfirmed = "CONFIRMED"
    ReservationStatusCancelled = "CANCELLED"
    ReservationStatusCompleted = "COMPLETED"
)

// Reservation records a customer's booking on a flight.  It owns its
// passengers exclusively; they are written and removed together with
// the reservation.  TotalFareCents is the sum of the held seats'
// prices at hold time and is immutable after commit.
//
// Fields:
//  ID             – primary key identifier.
//  ConfirmationNo – unique human-facing booking reference.
//  CustomerID     – customer who made the booking.
//  FlightID       – flight being booked.
//  Status         – PENDING, CONFIRMED, CANCELLED or COMPLETED.
//  TotalFareCents – total fare in cents, pinned at hold time.
//  Passengers     – ordered passenger list, one seat each.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Reservation struct {
    ID             uint64      // reservations.id
    ConfirmationNo string      // reservations.confirmation_no (unique)
    CustomerID     uint64      // reservations.customer_id
    FlightID       uint64      // reservations.flight_id
    Status         string      // reservations.status
    TotalFareCents uint32      // reservations.total_fare_cents
    Passengers     []Passenger // owned rows from passengers
    CreatedAt      time.Time   // reservations.created_at
    UpdatedAt      time.Time   // reservations.updated_at
}

// Passenger is one traveller on a reservation with exactly one seat
// assignment.  A passenger cannot outlive its reservation.
type Passenger struct {
    ID            uint64 // passengers.id
    ReservationID uint64 // passengers.reservation_id
    FullName      string // passengers.full_name
    Age           uint8  // passengers.age
    DocumentNo    string // passengers.document_no
    SeatID        uint64 // passengers.seat_id
    SeatNumber    string // denormalised seat number for display
    FareCents     uint32 // passengers.fare_cents (price pinned at hold)
}
