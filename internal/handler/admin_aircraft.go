package handler

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/avialta/airline-reservation/internal/model"
    "github.com/avialta/airline-reservation/internal/repository"
)

// CreateAircraft handles POST /v1/admin/aircraft. It registers a new
// airframe in the fleet; the seat map is not generated here but when
// the aircraft is assigned to a flight.
func (h *AdminHandler) CreateAircraft(c echo.Context) error {
    var body struct {
        TailNumber   string `json:"tail_number"`
        Manufacturer string `json:"manufacturer"`
        Model        string `json:"model"`
        TotalSeats   uint32 `json:"total_seats"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    body.TailNumber = strings.ToUpper(strings.TrimSpace(body.TailNumber))
    if body.TailNumber == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "tail_number is required"})
    }
    if body.TotalSeats == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "total_seats must be positive"})
    }

    a := &model.Aircraft{
        TailNumber:   body.TailNumber,
        Manufacturer: strings.TrimSpace(body.Manufacturer),
        Model:        strings.TrimSpace(body.Model),
        TotalSeats:   body.TotalSeats,
    }
    if err := h.AircraftRepo.Create(c.Request().Context(), a); err != nil {
        if errors.Is(err, repository.ErrDuplicate) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "tail number already registered"})
        }
        c.Logger().Errorf("create aircraft: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusCreated, a)
}

// ListAircraft handles GET /v1/admin/aircraft.
func (h *AdminHandler) ListAircraft(c echo.Context) error {
    fleet, err := h.AircraftRepo.List(c.Request().Context())
    if err != nil {
        c.Logger().Errorf("list aircraft: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if fleet == nil {
        fleet = []model.Aircraft{}
    }
    return c.JSON(http.StatusOK, fleet)
}

// DeleteAircraft handles DELETE /v1/admin/aircraft/:id. An aircraft
// that still has flights cannot be removed.
func (h *AdminHandler) DeleteAircraft(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid aircraft id"})
    }
    err := h.AircraftRepo.Delete(c.Request().Context(), id)
    switch {
    case err == nil:
        return c.NoContent(http.StatusNoContent)
    case errors.Is(err, repository.ErrAircraftNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "aircraft not found"})
    case errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "aircraft still has flights"})
    default:
        c.Logger().Errorf("delete aircraft: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
}
