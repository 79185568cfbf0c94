package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/avialta/airline-reservation/internal/model"
)

const flightColumns = `id, flight_number, aircraft_id, origin, destination,
    departs_at, arrives_at, base_fare_cents, status, available_seats,
    created_at, updated_at`

// FlightRepo provides data access to the flights table.
type FlightRepo struct {
    db *sql.DB
}

// NewFlightRepo constructs a FlightRepo with the given DB handle.
func NewFlightRepo(db *sql.DB) *FlightRepo {
    return &FlightRepo{db: db}
}

func scanFlight(row interface{ Scan(...any) error }) (*model.Flight, error) {
    var f model.Flight
    err := row.Scan(
        &f.ID, &f.FlightNumber, &f.AircraftID, &f.Origin, &f.Destination,
        &f.DepartsAt, &f.ArrivesAt, &f.BaseFareCents, &f.Status, &f.AvailableSeats,
        &f.CreatedAt, &f.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    return &f, nil
}

// CreateTx inserts a flight inside the given transaction. Seat
// provisioning writes the flight and its seat map in the same
// transaction, so a half-provisioned flight is never visible.
func (r *FlightRepo) CreateTx(ctx context.Context, tx *sql.Tx, f *model.Flight) error {
    const q = `INSERT INTO flights
               (flight_number, aircraft_id, origin, destination, departs_at, arrives_at,
                base_fare_cents, status, available_seats)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q,
        f.FlightNumber, f.AircraftID, f.Origin, f.Destination,
        f.DepartsAt.UTC(), f.ArrivesAt.UTC(),
        f.BaseFareCents, f.Status, f.AvailableSeats,
    )
    if err != nil {
        if isDuplicateKey(err) {
            return ErrDuplicate
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    f.ID = uint64(id)
    return nil
}

// GetByID retrieves a flight by its id.
func (r *FlightRepo) GetByID(ctx context.Context, id uint64) (*model.Flight, error) {
    f, err := scanFlight(r.db.QueryRowContext(ctx,
        `SELECT `+flightColumns+` FROM flights WHERE id = ?`, id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrFlightNotFound
    }
    return f, err
}

// ListByAircraft retrieves all non-cancelled flights assigned to an
// aircraft. The schedule conflict check runs against this set.
func (r *FlightRepo) ListByAircraft(ctx context.Context, aircraftID uint64) ([]model.Flight, error) {
    return listByAircraft(ctx, r.db, aircraftID)
}

// ListByAircraftTx is the transactional variant of ListByAircraft,
// used to check the schedule under the aircraft row lock.
func (r *FlightRepo) ListByAircraftTx(ctx context.Context, tx *sql.Tx, aircraftID uint64) ([]model.Flight, error) {
    return listByAircraft(ctx, tx, aircraftID)
}

func listByAircraft(ctx context.Context, qr queryer, aircraftID uint64) ([]model.Flight, error) {
    const q = `SELECT ` + flightColumns + `
               FROM flights
               WHERE aircraft_id = ? AND status <> 'CANCELLED'
               ORDER BY departs_at`
    rows, err := qr.QueryContext(ctx, q, aircraftID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var result []model.Flight
    for rows.Next() {
        f, err := scanFlight(rows)
        if err != nil {
            return nil, err
        }
        result = append(result, *f)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return result, nil
}

// Search retrieves flights by route, optionally restricted to
// departures on a given UTC day. Cancelled flights are excluded.
func (r *FlightRepo) Search(ctx context.Context, origin, destination string, day *time.Time) ([]model.Flight, error) {
    q := `SELECT ` + flightColumns + `
          FROM flights
          WHERE origin = ? AND destination = ? AND status <> 'CANCELLED'`
    args := []any{origin, destination}
    if day != nil {
        start := day.UTC().Truncate(24 * time.Hour)
        q += ` AND departs_at >= ? AND departs_at < ?`
        args = append(args, start, start.Add(24*time.Hour))
    }
    q += ` ORDER BY departs_at`

    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var result []model.Flight
    for rows.Next() {
        f, err := scanFlight(rows)
        if err != nil {
            return nil, err
        }
        result = append(result, *f)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return result, nil
}

// UpdateStatus changes a flight's lifecycle status.
func (r *FlightRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
    const q = `UPDATE flights
               SET status = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, status, id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrFlightNotFound
    }
    return nil
}
