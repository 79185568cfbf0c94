package handler

import (
    "database/sql"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/avialta/airline-reservation/internal/model"
    "github.com/avialta/airline-reservation/internal/repository"
    "github.com/avialta/airline-reservation/internal/schedule"
    "github.com/avialta/airline-reservation/internal/seatmap"
)

// AdminHandler bundles the dependencies for fleet and schedule
// management. Flight creation provisions the full seat map in the
// same transaction, so a flight is either fully sellable or absent.
type AdminHandler struct {
    DB           *sql.DB
    AircraftRepo *repository.AircraftRepo
    FlightRepo   *repository.FlightRepo
    SeatRepo     *repository.SeatRepo
    Provisioner  *seatmap.Provisioner
}

// NewAdminHandler constructs an AdminHandler; all dependencies must be
// non-nil.
func NewAdminHandler(db *sql.DB, aircraftRepo *repository.AircraftRepo, flightRepo *repository.FlightRepo, seatRepo *repository.SeatRepo, prov *seatmap.Provisioner) *AdminHandler {
    if db == nil || aircraftRepo == nil || flightRepo == nil || seatRepo == nil || prov == nil {
        panic("nil dependency passed to NewAdminHandler")
    }
    return &AdminHandler{
        DB:           db,
        AircraftRepo: aircraftRepo,
        FlightRepo:   flightRepo,
        SeatRepo:     seatRepo,
        Provisioner:  prov,
    }
}

// CreateFlight handles POST /v1/admin/flights. The flow is: validate
// the window, then in one transaction lock the aircraft row, reject
// schedule conflicts against its other flights, and insert the flight
// with its provisioned seat map.
func (h *AdminHandler) CreateFlight(c echo.Context) error {
    var body struct {
        FlightNumber  string    `json:"flight_number"`
        AircraftID    uint64    `json:"aircraft_id"`
        Origin        string    `json:"origin"`
        Destination   string    `json:"destination"`
        DepartsAt     time.Time `json:"departs_at"`
        ArrivesAt     time.Time `json:"arrives_at"`
        BaseFareCents uint32    `json:"base_fare_cents"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    body.FlightNumber = strings.ToUpper(strings.TrimSpace(body.FlightNumber))
    body.Origin = strings.ToUpper(strings.TrimSpace(body.Origin))
    body.Destination = strings.ToUpper(strings.TrimSpace(body.Destination))
    switch {
    case body.FlightNumber == "":
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "flight_number is required"})
    case body.AircraftID == 0:
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "aircraft_id is required"})
    case len(body.Origin) != 3 || len(body.Destination) != 3:
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "origin and destination must be IATA codes"})
    case body.Origin == body.Destination:
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "origin and destination must differ"})
    case !body.ArrivesAt.After(body.DepartsAt):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "arrives_at must be after departs_at"})
    case body.BaseFareCents == 0:
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "base_fare_cents must be positive"})
    }

    ctx := c.Request().Context()
    aircraft, err := h.AircraftRepo.GetByID(ctx, body.AircraftID)
    if err != nil {
        if errors.Is(err, repository.ErrAircraftNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "aircraft not found"})
        }
        c.Logger().Errorf("load aircraft: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    flight := &model.Flight{
        FlightNumber:  body.FlightNumber,
        AircraftID:    body.AircraftID,
        Origin:        body.Origin,
        Destination:   body.Destination,
        DepartsAt:     body.DepartsAt.UTC(),
        ArrivesAt:     body.ArrivesAt.UTC(),
        BaseFareCents: body.BaseFareCents,
        Status:        model.FlightStatusScheduled,
    }

    tx, err := h.DB.BeginTx(ctx, nil)
    if err != nil {
        c.Logger().Errorf("begin flight create: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    // The conflict check must run under the aircraft row lock:
    // without it two concurrent creators can both see a free window
    // and both insert into it.
    if err := h.AircraftRepo.LockTx(ctx, tx, body.AircraftID); err != nil {
        if errors.Is(err, repository.ErrAircraftNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "aircraft not found"})
        }
        c.Logger().Errorf("lock aircraft: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    existing, err := h.FlightRepo.ListByAircraftTx(ctx, tx, body.AircraftID)
    if err != nil {
        c.Logger().Errorf("list flights for conflict check: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if err := schedule.CheckConflict(flight, existing); err != nil {
        var conflict *schedule.ConflictError
        if errors.As(err, &conflict) {
            return c.JSON(http.StatusConflict, echo.Map{
                "error":            "aircraft is already scheduled in this window",
                "conflicting_with": conflict.FlightNo,
            })
        }
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
    }

    if err := h.FlightRepo.CreateTx(ctx, tx, flight); err != nil {
        if errors.Is(err, repository.ErrDuplicate) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "flight number already exists for this departure"})
        }
        c.Logger().Errorf("insert flight: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    seats, err := h.Provisioner.Provision(flight, aircraft)
    if err != nil {
        c.Logger().Errorf("provision seats: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "seat provisioning failed"})
    }
    if err := h.SeatRepo.CreateBulkTx(ctx, tx, seats); err != nil {
        c.Logger().Errorf("insert seat map: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    // Provision sets AvailableSeats on the flight after the insert, so
    // persist the counter now.
    if _, err := tx.ExecContext(ctx,
        `UPDATE flights SET available_seats = ? WHERE id = ?`,
        flight.AvailableSeats, flight.ID,
    ); err != nil {
        c.Logger().Errorf("set seat counter: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    if err := tx.Commit(); err != nil {
        c.Logger().Errorf("commit flight create: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    committed = true

    return c.JSON(http.StatusCreated, echo.Map{
        "flight":            flight,
        "seats_provisioned": len(seats),
    })
}

// UpdateFlightStatus handles PATCH /v1/admin/flights/:id/status.
func (h *AdminHandler) UpdateFlightStatus(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flight id"})
    }
    var body struct {
        Status string `json:"status"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    body.Status = strings.ToUpper(strings.TrimSpace(body.Status))
    if !model.ValidFlightStatus(body.Status) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown flight status"})
    }

    err := h.FlightRepo.UpdateStatus(c.Request().Context(), id, body.Status)
    switch {
    case err == nil:
        return c.JSON(http.StatusOK, echo.Map{"id": id, "status": body.Status})
    case errors.Is(err, repository.ErrFlightNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
    default:
        c.Logger().Errorf("update flight status: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
}
