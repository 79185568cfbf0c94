package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/avialta/airline-reservation/internal/model"
)

const reservationColumns = `id, confirmation_no, customer_id, flight_id,
    status, total_fare_cents, created_at, updated_at`

// ReservationRepo provides read access to reservations and their
// passengers. State transitions (commit, confirm, cancel) live in
// BookingStore because they must update seats and counters atomically.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo constructs a ReservationRepo with the given DB handle.
func NewReservationRepo(db *sql.DB) *ReservationRepo {
    return &ReservationRepo{db: db}
}

func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
    var res model.Reservation
    err := row.Scan(
        &res.ID, &res.ConfirmationNo, &res.CustomerID, &res.FlightID,
        &res.Status, &res.TotalFareCents, &res.CreatedAt, &res.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    return &res, nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx so passenger loads
// work inside and outside transactions.
type queryer interface {
    QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// passengersFor loads the passenger rows of one reservation.
func passengersFor(ctx context.Context, q queryer, reservationID uint64) ([]model.Passenger, error) {
    const query = `SELECT p.id, p.reservation_id, p.full_name, p.age, p.document_no,
                          p.seat_id, s.seat_number, p.fare_cents
                   FROM passengers p
                   JOIN seats s ON s.id = p.seat_id
                   WHERE p.reservation_id = ?
                   ORDER BY p.id`
    rows, err := q.QueryContext(ctx, query, reservationID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var result []model.Passenger
    for rows.Next() {
        var p model.Passenger
        if err := rows.Scan(
            &p.ID, &p.ReservationID, &p.FullName, &p.Age, &p.DocumentNo,
            &p.SeatID, &p.SeatNumber, &p.FareCents,
        ); err != nil {
            return nil, err
        }
        result = append(result, p)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return result, nil
}

// GetByID retrieves a reservation with its passengers.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
    res, err := scanReservation(r.db.QueryRowContext(ctx,
        `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrReservationNotFound
        }
        return nil, err
    }
    res.Passengers, err = passengersFor(ctx, r.db, res.ID)
    if err != nil {
        return nil, err
    }
    return res, nil
}

// GetByConfirmation retrieves a reservation by its booking reference.
func (r *ReservationRepo) GetByConfirmation(ctx context.Context, confirmationNo string) (*model.Reservation, error) {
    res, err := scanReservation(r.db.QueryRowContext(ctx,
        `SELECT `+reservationColumns+` FROM reservations WHERE confirmation_no = ?`, confirmationNo))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrReservationNotFound
        }
        return nil, err
    }
    res.Passengers, err = passengersFor(ctx, r.db, res.ID)
    if err != nil {
        return nil, err
    }
    return res, nil
}

// ListByCustomer retrieves all reservations of a customer, newest
// first, each with its passengers.
func (r *ReservationRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + `
               FROM reservations
               WHERE customer_id = ?
               ORDER BY created_at DESC, id DESC`
    rows, err := r.db.QueryContext(ctx, q, customerID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var result []model.Reservation
    for rows.Next() {
        res, err := scanReservation(rows)
        if err != nil {
            return nil, err
        }
        result = append(result, *res)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    for i := range result {
        result[i].Passengers, err = passengersFor(ctx, r.db, result[i].ID)
        if err != nil {
            return nil, err
        }
    }
    return result, nil
}
