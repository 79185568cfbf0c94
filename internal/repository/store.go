package repository

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/avialta/airline-reservation/internal/booking"
    "github.com/avialta/airline-reservation/internal/model"
)

// BookingStore implements the booking.Store port on MySQL.  Seat state
// transitions are expressed as conditional UPDATEs whose WHERE clause
// names the required current state; a RowsAffected of zero means the
// condition did not hold and the caller lost the race.  The database
// is the single arbiter of seat state, so two replicas of this service
// can safely serve booking traffic against the same schema.
type BookingStore struct {
    db           *sql.DB
    flights      *FlightRepo
    reservations *ReservationRepo
}

// NewBookingStore constructs a BookingStore with the given DB handle.
func NewBookingStore(db *sql.DB) *BookingStore {
    return &BookingStore{
        db:           db,
        flights:      NewFlightRepo(db),
        reservations: NewReservationRepo(db),
    }
}

// FlightByID returns the flight or booking.ErrNotFound.
func (s *BookingStore) FlightByID(ctx context.Context, flightID uint64) (*model.Flight, error) {
    f, err := s.flights.GetByID(ctx, flightID)
    if err != nil {
        if errors.Is(err, ErrFlightNotFound) {
            return nil, fmt.Errorf("flight %d: %w", flightID, booking.ErrNotFound)
        }
        return nil, fmt.Errorf("load flight %d: %w", flightID, errors.Join(booking.ErrPersistence, err))
    }
    return f, nil
}

// HoldSeat transitions one seat to RESERVED in a single conditional
// update.  A RESERVED seat whose hold has lapsed counts as available
// and is reclaimed by the same statement.
func (s *BookingStore) HoldSeat(ctx context.Context, flightID uint64, seatNumber string, expiresAt time.Time) (*model.Seat, error) {
    seatNumber = strings.ToUpper(strings.TrimSpace(seatNumber))
    const q = `UPDATE seats
               SET status = 'RESERVED', hold_expires_at = ?, updated_at = CURRENT_TIMESTAMP
               WHERE flight_id = ? AND seat_number = ?
                 AND (status = 'AVAILABLE'
                      OR (status = 'RESERVED' AND hold_expires_at <= UTC_TIMESTAMP()))`
    res, err := s.db.ExecContext(ctx, q, expiresAt.UTC(), flightID, seatNumber)
    if err != nil {
        return nil, fmt.Errorf("hold seat %s: %w", seatNumber, errors.Join(booking.ErrPersistence, err))
    }
    n, err := res.RowsAffected()
    if err != nil {
        return nil, fmt.Errorf("hold seat %s: %w", seatNumber, errors.Join(booking.ErrPersistence, err))
    }
    if n == 0 {
        // Distinguish a missing seat from a lost race.
        var status string
        err := s.db.QueryRowContext(ctx,
            `SELECT status FROM seats WHERE flight_id = ? AND seat_number = ?`,
            flightID, seatNumber,
        ).Scan(&status)
        if errors.Is(err, sql.ErrNoRows) {
            return nil, fmt.Errorf("seat %s on flight %d: %w", seatNumber, flightID, booking.ErrNotFound)
        }
        if err != nil {
            return nil, fmt.Errorf("hold seat %s: %w", seatNumber, errors.Join(booking.ErrPersistence, err))
        }
        return nil, fmt.Errorf("seat %s is %s: %w", seatNumber, status, booking.ErrConflict)
    }

    seat, err := NewSeatRepo(s.db).GetByNumber(ctx, flightID, seatNumber)
    if err != nil {
        return nil, fmt.Errorf("reload held seat %s: %w", seatNumber, errors.Join(booking.ErrPersistence, err))
    }
    return seat, nil
}

// ReleaseSeats returns the named RESERVED seats to AVAILABLE.  Seats
// in any other state are left untouched, which keeps compensation
// idempotent and prevents a late release from clobbering a commit.
func (s *BookingStore) ReleaseSeats(ctx context.Context, flightID uint64, seatNumbers []string) error {
    if len(seatNumbers) == 0 {
        return nil
    }
    q := `UPDATE seats
          SET status = 'AVAILABLE', hold_expires_at = NULL, updated_at = CURRENT_TIMESTAMP
          WHERE flight_id = ? AND status = 'RESERVED' AND seat_number IN (` +
        placeholders(len(seatNumbers)) + `)`
    args := make([]any, 0, len(seatNumbers)+1)
    args = append(args, flightID)
    for _, num := range seatNumbers {
        args = append(args, strings.ToUpper(strings.TrimSpace(num)))
    }
    if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
        return fmt.Errorf("release seats: %w", errors.Join(booking.ErrPersistence, err))
    }
    return nil
}

// ReleaseExpiredHolds sweeps lapsed holds on a flight back to
// AVAILABLE and reports the freed seat numbers.
func (s *BookingStore) ReleaseExpiredHolds(ctx context.Context, flightID uint64) ([]string, error) {
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, fmt.Errorf("begin sweep: %w", errors.Join(booking.ErrPersistence, err))
    }
    defer tx.Rollback()

    rows, err := tx.QueryContext(ctx,
        `SELECT seat_number FROM seats
         WHERE flight_id = ? AND status = 'RESERVED' AND hold_expires_at <= UTC_TIMESTAMP()
         FOR UPDATE`,
        flightID,
    )
    if err != nil {
        return nil, fmt.Errorf("query expired holds: %w", errors.Join(booking.ErrPersistence, err))
    }
    var freed []string
    for rows.Next() {
        var num string
        if err := rows.Scan(&num); err != nil {
            rows.Close()
            return nil, fmt.Errorf("scan expired hold: %w", errors.Join(booking.ErrPersistence, err))
        }
        freed = append(freed, num)
    }
    if err := rows.Close(); err != nil {
        return nil, fmt.Errorf("read expired holds: %w", errors.Join(booking.ErrPersistence, err))
    }
    if len(freed) == 0 {
        return nil, tx.Commit()
    }

    _, err = tx.ExecContext(ctx,
        `UPDATE seats
         SET status = 'AVAILABLE', hold_expires_at = NULL, updated_at = CURRENT_TIMESTAMP
         WHERE flight_id = ? AND status = 'RESERVED' AND hold_expires_at <= UTC_TIMESTAMP()`,
        flightID,
    )
    if err != nil {
        return nil, fmt.Errorf("free expired holds: %w", errors.Join(booking.ErrPersistence, err))
    }
    if err := tx.Commit(); err != nil {
        return nil, fmt.Errorf("commit sweep: %w", errors.Join(booking.ErrPersistence, err))
    }
    return freed, nil
}

// CommitReservation persists the reservation, its passengers, the
// RESERVED -> OCCUPIED seat transitions and the seat-counter decrement
// in one transaction.
func (s *BookingStore) CommitReservation(ctx context.Context, res *model.Reservation) error {
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return fmt.Errorf("begin commit: %w", errors.Join(booking.ErrPersistence, err))
    }
    defer tx.Rollback()

    result, err := tx.ExecContext(ctx,
        `INSERT INTO reservations (confirmation_no, customer_id, flight_id, status, total_fare_cents)
         VALUES (?, ?, ?, ?, ?)`,
        res.ConfirmationNo, res.CustomerID, res.FlightID, res.Status, res.TotalFareCents,
    )
    if err != nil {
        if isDuplicateKey(err) {
            return fmt.Errorf("confirmation %s: %w", res.ConfirmationNo, booking.ErrDuplicateConfirmation)
        }
        return fmt.Errorf("insert reservation: %w", errors.Join(booking.ErrPersistence, err))
    }
    id, err := result.LastInsertId()
    if err != nil {
        return fmt.Errorf("reservation id: %w", errors.Join(booking.ErrPersistence, err))
    }
    res.ID = uint64(id)

    insert := `INSERT INTO passengers (reservation_id, full_name, age, document_no, seat_id, fare_cents) VALUES `
    args := make([]any, 0, len(res.Passengers)*6)
    seatIDs := make([]any, 0, len(res.Passengers))
    for i := range res.Passengers {
        p := &res.Passengers[i]
        p.ReservationID = res.ID
        if i > 0 {
            insert += ","
        }
        insert += "(?, ?, ?, ?, ?, ?)"
        args = append(args, p.ReservationID, p.FullName, p.Age, p.DocumentNo, p.SeatID, p.FareCents)
        seatIDs = append(seatIDs, p.SeatID)
    }
    if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
        return fmt.Errorf("insert passengers: %w", errors.Join(booking.ErrPersistence, err))
    }

    // Every held seat must still be RESERVED; anything less means a
    // hold lapsed and was reclaimed while payment ran.
    occupy := `UPDATE seats
               SET status = 'OCCUPIED', hold_expires_at = NULL, updated_at = CURRENT_TIMESTAMP
               WHERE status = 'RESERVED' AND id IN (` + placeholders(len(seatIDs)) + `)`
    occRes, err := tx.ExecContext(ctx, occupy, seatIDs...)
    if err != nil {
        return fmt.Errorf("occupy seats: %w", errors.Join(booking.ErrPersistence, err))
    }
    if n, _ := occRes.RowsAffected(); n != int64(len(seatIDs)) {
        return fmt.Errorf("hold lapsed before commit: %w", booking.ErrConflict)
    }

    cntRes, err := tx.ExecContext(ctx,
        `UPDATE flights
         SET available_seats = available_seats - ?, updated_at = CURRENT_TIMESTAMP
         WHERE id = ? AND available_seats >= ?`,
        len(seatIDs), res.FlightID, len(seatIDs),
    )
    if err != nil {
        return fmt.Errorf("decrement seat counter: %w", errors.Join(booking.ErrPersistence, err))
    }
    if n, _ := cntRes.RowsAffected(); n == 0 {
        return fmt.Errorf("seat counter underflow on flight %d: %w", res.FlightID, booking.ErrConflict)
    }

    if err := tx.QueryRowContext(ctx,
        `SELECT created_at, updated_at FROM reservations WHERE id = ?`, res.ID,
    ).Scan(&res.CreatedAt, &res.UpdatedAt); err != nil {
        return fmt.Errorf("reload reservation: %w", errors.Join(booking.ErrPersistence, err))
    }

    if err := tx.Commit(); err != nil {
        return fmt.Errorf("commit reservation: %w", errors.Join(booking.ErrPersistence, err))
    }
    return nil
}

// ConfirmReservation transitions PENDING -> CONFIRMED.
func (s *BookingStore) ConfirmReservation(ctx context.Context, reservationID uint64) (*model.Reservation, error) {
    const q = `UPDATE reservations
               SET status = 'CONFIRMED', updated_at = CURRENT_TIMESTAMP
               WHERE id = ? AND status = 'PENDING'`
    res, err := s.db.ExecContext(ctx, q, reservationID)
    if err != nil {
        return nil, fmt.Errorf("confirm reservation %d: %w", reservationID, errors.Join(booking.ErrPersistence, err))
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return nil, s.transitionFailure(ctx, reservationID)
    }
    return s.ReservationByID(ctx, reservationID)
}

// CancelReservation transitions PENDING/CONFIRMED -> CANCELLED,
// frees the reservation's seats and restores the flight's counter in
// one transaction.
func (s *BookingStore) CancelReservation(ctx context.Context, reservationID uint64) (*model.Reservation, error) {
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, fmt.Errorf("begin cancel: %w", errors.Join(booking.ErrPersistence, err))
    }
    defer tx.Rollback()

    upd, err := tx.ExecContext(ctx,
        `UPDATE reservations
         SET status = 'CANCELLED', updated_at = CURRENT_TIMESTAMP
         WHERE id = ? AND status IN ('PENDING', 'CONFIRMED')`,
        reservationID,
    )
    if err != nil {
        return nil, fmt.Errorf("cancel reservation %d: %w", reservationID, errors.Join(booking.ErrPersistence, err))
    }
    if n, _ := upd.RowsAffected(); n == 0 {
        return nil, s.transitionFailure(ctx, reservationID)
    }

    var flightID uint64
    if err := tx.QueryRowContext(ctx,
        `SELECT flight_id FROM reservations WHERE id = ?`, reservationID,
    ).Scan(&flightID); err != nil {
        return nil, fmt.Errorf("load cancelled reservation: %w", errors.Join(booking.ErrPersistence, err))
    }

    seats, err := tx.ExecContext(ctx,
        `UPDATE seats s
         JOIN passengers p ON p.seat_id = s.id
         SET s.status = 'AVAILABLE', s.hold_expires_at = NULL, s.updated_at = CURRENT_TIMESTAMP
         WHERE p.reservation_id = ?`,
        reservationID,
    )
    if err != nil {
        return nil, fmt.Errorf("free cancelled seats: %w", errors.Join(booking.ErrPersistence, err))
    }
    freed, _ := seats.RowsAffected()

    if _, err := tx.ExecContext(ctx,
        `UPDATE flights
         SET available_seats = available_seats + ?, updated_at = CURRENT_TIMESTAMP
         WHERE id = ?`,
        freed, flightID,
    ); err != nil {
        return nil, fmt.Errorf("restore seat counter: %w", errors.Join(booking.ErrPersistence, err))
    }

    if err := tx.Commit(); err != nil {
        return nil, fmt.Errorf("commit cancel: %w", errors.Join(booking.ErrPersistence, err))
    }
    return s.ReservationByID(ctx, reservationID)
}

// ReservationByID loads a reservation with its passengers.
func (s *BookingStore) ReservationByID(ctx context.Context, reservationID uint64) (*model.Reservation, error) {
    res, err := s.reservations.GetByID(ctx, reservationID)
    if err != nil {
        if errors.Is(err, ErrReservationNotFound) {
            return nil, fmt.Errorf("reservation %d: %w", reservationID, booking.ErrNotFound)
        }
        return nil, fmt.Errorf("load reservation %d: %w", reservationID, errors.Join(booking.ErrPersistence, err))
    }
    return res, nil
}

// transitionFailure explains why a conditional status update matched
// no rows: either the reservation does not exist or it is in a state
// that forbids the transition.
func (s *BookingStore) transitionFailure(ctx context.Context, reservationID uint64) error {
    var status string
    err := s.db.QueryRowContext(ctx,
        `SELECT status FROM reservations WHERE id = ?`, reservationID,
    ).Scan(&status)
    if errors.Is(err, sql.ErrNoRows) {
        return fmt.Errorf("reservation %d: %w", reservationID, booking.ErrNotFound)
    }
    if err != nil {
        return fmt.Errorf("inspect reservation %d: %w", reservationID, errors.Join(booking.ErrPersistence, err))
    }
    return fmt.Errorf("reservation %d is %s: %w", reservationID, status, booking.ErrInvalidState)
}

// placeholders returns n comma-separated "?" marks for IN clauses.
func placeholders(n int) string {
    if n <= 0 {
        return ""
    }
    return strings.Repeat("?,", n-1) + "?"
}
