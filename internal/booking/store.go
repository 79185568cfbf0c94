package booking

import (
    "context"
    "time"

    "github.com/avialta/airline-reservation/internal/model"
)

// Store is the persistence port consumed by the saga.  Implementations
// must provide atomic conditional state transitions: two concurrent
// HoldSeat calls for the same seat must never both succeed, and
// CommitReservation, ConfirmReservation and CancelReservation must
// each apply all of their effects in a single transaction or none.
// No other code path may write seat status.
type Store interface {
    // FlightByID returns the flight or an error wrapping ErrNotFound.
    FlightByID(ctx context.Context, flightID uint64) (*model.Flight, error)

    // HoldSeat transitions one seat AVAILABLE -> RESERVED with the
    // given hold expiry, as a single conditional update.  A seat whose
    // previous hold has lapsed counts as available.  It returns the
    // held seat with its current price (the price the fare is pinned
    // at), an error wrapping ErrConflict when the seat is taken, or
    // ErrNotFound when the seat does not exist on the flight.
    HoldSeat(ctx context.Context, flightID uint64, seatNumber string, expiresAt time.Time) (*model.Seat, error)

    // ReleaseSeats transitions the named seats RESERVED -> AVAILABLE
    // and clears their hold expiry.  Releasing a seat that is not
    // RESERVED is a no-op, so compensation stays idempotent.
    ReleaseSeats(ctx context.Context, flightID uint64, seatNumbers []string) error

    // ReleaseExpiredHolds returns lapsed RESERVED seats on the flight
    // to AVAILABLE and reports which seat numbers were freed.
    ReleaseExpiredHolds(ctx context.Context, flightID uint64) ([]string, error)

    // CommitReservation durably persists the reservation and its
    // passengers, transitions the passengers' held seats RESERVED ->
    // OCCUPIED and decrements the flight's available-seat counter by
    // the passenger count, all atomically.  It returns an error
    // wrapping ErrDuplicateConfirmation when the confirmation number
    // is already taken, ErrConflict when a hold lapsed before commit,
    // or ErrPersistence for any other write failure.  On success the
    // reservation's ID and timestamps are populated.
    CommitReservation(ctx context.Context, res *model.Reservation) error

    // ConfirmReservation transitions PENDING -> CONFIRMED.  It returns
    // ErrNotFound for an unknown reservation and ErrInvalidState when
    // the reservation is not PENDING.
    ConfirmReservation(ctx context.Context, reservationID uint64) (*model.Reservation, error)

    // CancelReservation transitions PENDING/CONFIRMED -> CANCELLED,
    // returns every seat of the reservation to AVAILABLE and restores
    // the flight's available-seat counter, atomically.  CANCELLED and
    // COMPLETED are terminal: cancelling again yields ErrInvalidState.
    CancelReservation(ctx context.Context, reservationID uint64) (*model.Reservation, error)

    // ReservationByID loads a reservation with its passengers.
    ReservationByID(ctx context.Context, reservationID uint64) (*model.Reservation, error)
}
