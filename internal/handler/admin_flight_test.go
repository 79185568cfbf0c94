package handler

import (
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/avialta/airline-reservation/internal/repository"
    "github.com/avialta/airline-reservation/internal/seatmap"
)

func newAdminHandlerWithMock(t *testing.T) (*AdminHandler, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { db.Close() })

    h := NewAdminHandler(
        db,
        repository.NewAircraftRepo(db),
        repository.NewFlightRepo(db),
        repository.NewSeatRepo(db),
        seatmap.NewProvisioner(),
    )
    return h, mock
}

func postFlightContext(body string) (echo.Context, *httptest.ResponseRecorder) {
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/v1/admin/flights", strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    return e.NewContext(req, rec), rec
}

// A competing flight visible only inside the transaction must still
// reject the candidate: the schedule check has to run under the
// aircraft row lock, not before the transaction begins.
func TestCreateFlightConflictDetectedInsideTransaction(t *testing.T) {
    h, mock := newAdminHandlerWithMock(t)

    now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
    mock.ExpectQuery(`SELECT id, tail_number`).
        WithArgs(1).
        WillReturnRows(sqlmock.NewRows(
            []string{"id", "tail_number", "manufacturer", "model", "total_seats", "created_at"},
        ).AddRow(1, "N101AV", "Airbus", "A320", 180, now))

    mock.ExpectBegin()
    mock.ExpectQuery(`SELECT id FROM aircraft WHERE id = \? FOR UPDATE`).
        WithArgs(1).
        WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
    mock.ExpectQuery(`FROM flights`).
        WithArgs(1).
        WillReturnRows(sqlmock.NewRows([]string{
            "id", "flight_number", "aircraft_id", "origin", "destination",
            "departs_at", "arrives_at", "base_fare_cents", "status", "available_seats",
            "created_at", "updated_at",
        }).AddRow(
            11, "AV900", 1, "BOG", "LIM",
            time.Date(2026, 10, 1, 11, 0, 0, 0, time.UTC),
            time.Date(2026, 10, 1, 13, 0, 0, 0, time.UTC),
            20000, "SCHEDULED", 180, now, now,
        ))
    mock.ExpectRollback()

    c, rec := postFlightContext(`{
        "flight_number": "AV101",
        "aircraft_id": 1,
        "origin": "LIM",
        "destination": "BOG",
        "departs_at": "2026-10-01T10:00:00Z",
        "arrives_at": "2026-10-01T12:00:00Z",
        "base_fare_cents": 15000
    }`)

    require.NoError(t, h.CreateFlight(c))
    assert.Equal(t, http.StatusConflict, rec.Code)
    assert.Contains(t, rec.Body.String(), "AV900")
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateFlightAircraftVanishesBeforeLock(t *testing.T) {
    h, mock := newAdminHandlerWithMock(t)

    now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
    mock.ExpectQuery(`SELECT id, tail_number`).
        WithArgs(1).
        WillReturnRows(sqlmock.NewRows(
            []string{"id", "tail_number", "manufacturer", "model", "total_seats", "created_at"},
        ).AddRow(1, "N101AV", "Airbus", "A320", 180, now))

    mock.ExpectBegin()
    mock.ExpectQuery(`SELECT id FROM aircraft WHERE id = \? FOR UPDATE`).
        WithArgs(1).
        WillReturnRows(sqlmock.NewRows([]string{"id"}))
    mock.ExpectRollback()

    c, rec := postFlightContext(`{
        "flight_number": "AV101",
        "aircraft_id": 1,
        "origin": "LIM",
        "destination": "BOG",
        "departs_at": "2026-10-01T10:00:00Z",
        "arrives_at": "2026-10-01T12:00:00Z",
        "base_fare_cents": 15000
    }`)

    require.NoError(t, h.CreateFlight(c))
    assert.Equal(t, http.StatusNotFound, rec.Code)
    assert.NoError(t, mock.ExpectationsWereMet())
}
