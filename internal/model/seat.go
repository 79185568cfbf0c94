package model

import "time"

// Seat statuses.  Within a single booking attempt the transition is
// monotonic: AVAILABLE -> RESERVED (hold) -> OCCUPIED (commit), or
// back to AVAILABLE when the hold is released or expires.  BLOCKED
// seats are withheld from sale entirely.
const (
    SeatStatusAvailable = "AVAILABLE"
    SeatStatusReserved  = "RESERVED"
    SeatStatusOccupied  = "OCCUPIED"
    SeatStatusBlocked   = "BLOCKED"
)

// Cabin classes, in descending order of fare multiplier.
const (
    CabinFirst    = "FIRST"
    CabinBusiness = "BUSINESS"
    CabinEconomy  = "ECONOMY"
)

// Seat positions within a row.
const (
    PositionWindow = "WINDOW"
    PositionMiddle = "MIDDLE"
    PositionAisle  = "AISLE"
)

// Seat is one sellable seat on one flight.  The price is pinned when
// the seat map is provisioned and again copied onto the passenger row
// at hold time, so later price changes never alter a committed fare.
//
// Fields:
//  ID            – primary key identifier.
//  FlightID      – flight this seat belongs to (exactly one).
//  SeatNumber    – row number plus letter, e.g. "12A".
//  CabinClass    – ECONOMY, BUSINESS or FIRST.
//  Position      – WINDOW, MIDDLE or AISLE.
//  PriceCents    – price in cents for this seat.
//  Status        – AVAILABLE, RESERVED, OCCUPIED or BLOCKED.
//  HoldExpiresAt – when a RESERVED hold lapses; nil unless RESERVED.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Seat struct {
    ID            uint64     // seats.id
    FlightID      uint64     // seats.flight_id
    SeatNumber    string     // seats.seat_number
    CabinClass    string     // seats.cabin_class
    Position      string     // seats.position
    PriceCents    uint32     // seats.price_cents
    Status        string     // seats.status
    HoldExpiresAt *time.Time // seats.hold_expires_at (nullable)
    CreatedAt     time.Time  // seats.created_at
    UpdatedAt     time.Time  // seats.updated_at
}
