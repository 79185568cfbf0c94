package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/go-sql-driver/mysql"

    "github.com/avialta/airline-reservation/internal/model"
)

// AircraftRepo provides data access to the aircraft table.
type AircraftRepo struct {
    db *sql.DB
}

// NewAircraftRepo constructs an AircraftRepo with the given DB handle.
func NewAircraftRepo(db *sql.DB) *AircraftRepo {
    return &AircraftRepo{db: db}
}

// Create inserts an aircraft record. On success the aircraft's ID is
// populated. A reused tail number yields ErrDuplicate.
func (r *AircraftRepo) Create(ctx context.Context, a *model.Aircraft) error {
    const q = `INSERT INTO aircraft (tail_number, manufacturer, model, total_seats)
               VALUES (?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, a.TailNumber, a.Manufacturer, a.Model, a.TotalSeats)
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
    a.ID = uint64(id)
    return nil
}

// GetByID retrieves an aircraft by its id.
func (r *AircraftRepo) GetByID(ctx context.Context, id uint64) (*model.Aircraft, error) {
    const q = `SELECT id, tail_number, manufacturer, model, total_seats, created_at
               FROM aircraft WHERE id = ?`
    var a model.Aircraft
    err := r.db.QueryRowContext(ctx, q, id).
        Scan(&a.ID, &a.TailNumber, &a.Manufacturer, &a.Model, &a.TotalSeats, &a.CreatedAt)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrAircraftNotFound
        }
        return nil, err
    }
    return &a, nil
}

// LockTx takes a row lock on the aircraft for the duration of the
// transaction. Concurrent schedule changes for the same aircraft
// serialize on this lock, so a conflict check made after it cannot be
// invalidated by a competing insert.
func (r *AircraftRepo) LockTx(ctx context.Context, tx *sql.Tx, id uint64) error {
    var locked uint64
    err := tx.QueryRowContext(ctx,
        `SELECT id FROM aircraft WHERE id = ? FOR UPDATE`, id,
    ).Scan(&locked)
    if errors.Is(err, sql.ErrNoRows) {
        return ErrAircraftNotFound
    }
    return err
}

// List retrieves all aircraft ordered by tail number.
func (r *AircraftRepo) List(ctx context.Context) ([]model.Aircraft, error) {
    const q = `SELECT id, tail_number, manufacturer, model, total_seats, created_at
               FROM aircraft
               ORDER BY tail_number`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var result []model.Aircraft
    for rows.Next() {
        var a model.Aircraft
        if err := rows.Scan(
            &a.ID, &a.TailNumber, &a.Manufacturer, &a.Model, &a.TotalSeats,
            &a.CreatedAt,
        ); err != nil {
            return nil, err
        }
        result = append(result, a)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return result, nil
}

// Delete removes an aircraft that has no flights. An aircraft still
// referenced by flights yields ErrConflict.
func (r *AircraftRepo) Delete(ctx context.Context, id uint64) error {
    var flights int
    if err := r.db.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM flights WHERE aircraft_id = ?`, id,
    ).Scan(&flights); err != nil {
        return err
    }
    if flights > 0 {
        return ErrConflict
    }
    res, err := r.db.ExecContext(ctx, `DELETE FROM aircraft WHERE id = ?`, id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrAircraftNotFound
    }
    return nil
}

// isDuplicateKey reports whether err is a MySQL unique-key violation
// (error 1062).
func isDuplicateKey(err error) bool {
    var me *mysql.MySQLError
    return errors.As(err, &me) && me.Number == 1062
}
