package handler

import (
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/avialta/airline-reservation/internal/cache"
    "github.com/avialta/airline-reservation/internal/model"
    "github.com/avialta/airline-reservation/internal/repository"
)

// BrowseHandler serves the unauthenticated read endpoints: flight
// search and seat maps. Seat maps are served from Redis when a fresh
// snapshot exists; the database remains the source of truth and the
// cache is invalidated on every booking state change.
type BrowseHandler struct {
    FlightRepo   *repository.FlightRepo
    SeatRepo     *repository.SeatRepo
    SeatMapCache *cache.SeatMapCache
}

// NewBrowseHandler constructs a BrowseHandler; all dependencies must
// be non-nil.
func NewBrowseHandler(flightRepo *repository.FlightRepo, seatRepo *repository.SeatRepo, seatMapCache *cache.SeatMapCache) *BrowseHandler {
    if flightRepo == nil || seatRepo == nil || seatMapCache == nil {
        panic("nil dependency passed to NewBrowseHandler")
    }
    return &BrowseHandler{
        FlightRepo:   flightRepo,
        SeatRepo:     seatRepo,
        SeatMapCache: seatMapCache,
    }
}

// SearchFlights handles GET /v1/flights?origin=LIM&destination=BOG&date=2026-09-14.
// The date is optional and interpreted as a UTC day.
func (h *BrowseHandler) SearchFlights(c echo.Context) error {
    origin := strings.ToUpper(strings.TrimSpace(c.QueryParam("origin")))
    destination := strings.ToUpper(strings.TrimSpace(c.QueryParam("destination")))
    if len(origin) != 3 || len(destination) != 3 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "origin and destination must be IATA codes"})
    }

    var day *time.Time
    if raw := c.QueryParam("date"); raw != "" {
        d, err := time.Parse("2006-01-02", raw)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
        }
        day = &d
    }

    flights, err := h.FlightRepo.Search(c.Request().Context(), origin, destination, day)
    if err != nil {
        c.Logger().Errorf("search flights: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if flights == nil {
        flights = []model.Flight{}
    }
    return c.JSON(http.StatusOK, flights)
}

// GetSeatMap handles GET /v1/flights/:id/seats.
func (h *BrowseHandler) GetSeatMap(c echo.Context) error {
    flightID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flight id"})
    }
    ctx := c.Request().Context()

    if seats, hit := h.SeatMapCache.Get(ctx, flightID); hit {
        return c.JSON(http.StatusOK, seats)
    }

    if _, err := h.FlightRepo.GetByID(ctx, flightID); err != nil {
        if errors.Is(err, repository.ErrFlightNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
        }
        c.Logger().Errorf("load flight: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    seats, err := h.SeatRepo.ListByFlight(ctx, flightID)
    if err != nil {
        c.Logger().Errorf("load seat map: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if seats == nil {
        seats = []model.Seat{}
    }
    h.SeatMapCache.Put(ctx, flightID, seats)
    return c.JSON(http.StatusOK, seats)
}
