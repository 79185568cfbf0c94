package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/avialta/airline-reservation/internal/model"
)

const seatColumns = `id, flight_id, seat_number, cabin_class, position,
    price_cents, status, hold_expires_at, created_at, updated_at`

// SeatRepo provides read access and bulk provisioning for the seats
// table. All status transitions go through BookingStore; this repo
// never writes seat status.
type SeatRepo struct {
    db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
    return &SeatRepo{db: db}
}

// CreateBulkTx inserts a provisioned seat map in a single statement
// inside the given transaction. Passing an empty slice has no effect.
func (r *SeatRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, seats []model.Seat) error {
    if len(seats) == 0 {
        return nil
    }
    query := `INSERT INTO seats (flight_id, seat_number, cabin_class, position, price_cents, status) VALUES `
    args := make([]any, 0, len(seats)*6)
    for i, s := range seats {
        if i > 0 {
            query += ","
        }
        query += "(?, ?, ?, ?, ?, ?)"
        args = append(args, s.FlightID, s.SeatNumber, s.CabinClass, s.Position, s.PriceCents, s.Status)
    }
    _, err := tx.ExecContext(ctx, query, args...)
    return err
}

func scanSeat(row interface{ Scan(...any) error }) (*model.Seat, error) {
    var s model.Seat
    err := row.Scan(
        &s.ID, &s.FlightID, &s.SeatNumber, &s.CabinClass, &s.Position,
        &s.PriceCents, &s.Status, &s.HoldExpiresAt, &s.CreatedAt, &s.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    return &s, nil
}

// ListByFlight retrieves the full seat map of a flight ordered by
// seat number length then value, so "2A" sorts before "10A".
func (r *SeatRepo) ListByFlight(ctx context.Context, flightID uint64) ([]model.Seat, error) {
    const q = `SELECT ` + seatColumns + `
               FROM seats
               WHERE flight_id = ?
               ORDER BY LENGTH(seat_number), seat_number`
    rows, err := r.db.QueryContext(ctx, q, flightID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var result []model.Seat
    for rows.Next() {
        s, err := scanSeat(rows)
        if err != nil {
            return nil, err
        }
        result = append(result, *s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return result, nil
}

// GetByNumber retrieves one seat of a flight by its seat number.
func (r *SeatRepo) GetByNumber(ctx context.Context, flightID uint64, seatNumber string) (*model.Seat, error) {
    s, err := scanSeat(r.db.QueryRowContext(ctx,
        `SELECT `+seatColumns+` FROM seats WHERE flight_id = ? AND seat_number = ?`,
        flightID, seatNumber))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrSeatNotFound
    }
    return s, err
}

// CountByStatus returns how many seats of a flight are in each status.
func (r *SeatRepo) CountByStatus(ctx context.Context, flightID uint64) (map[string]uint32, error) {
    const q = `SELECT status, COUNT(*) FROM seats WHERE flight_id = ? GROUP BY status`
    rows, err := r.db.QueryContext(ctx, q, flightID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    counts := make(map[string]uint32)
    for rows.Next() {
        var status string
        var n uint32
        if err := rows.Scan(&status, &n); err != nil {
            return nil, err
        }
        counts[status] = n
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return counts, nil
}
