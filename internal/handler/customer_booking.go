package handler

import (
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/avialta/airline-reservation/internal/booking"
    "github.com/avialta/airline-reservation/internal/cache"
    "github.com/avialta/airline-reservation/internal/model"
    "github.com/avialta/airline-reservation/internal/payment"
    "github.com/avialta/airline-reservation/internal/queue"
    "github.com/avialta/airline-reservation/internal/repository"
    queue_publisher "github.com/avialta/airline-reservation/internal/service"
)

// BookingHandler serves the customer-facing reservation endpoints. It
// drives the booking saga and keeps the seat-map cache coherent by
// invalidating it after every state change.
type BookingHandler struct {
    Saga            *booking.Saga
    ReservationRepo *repository.ReservationRepo
    FlightRepo      *repository.FlightRepo
    SeatMapCache    *cache.SeatMapCache
}

// NewBookingHandler constructs a BookingHandler; the saga and repos
// must be non-nil, the cache may be disabled but not nil.
func NewBookingHandler(saga *booking.Saga, reservationRepo *repository.ReservationRepo, flightRepo *repository.FlightRepo, seatMapCache *cache.SeatMapCache) *BookingHandler {
    if saga == nil || reservationRepo == nil || flightRepo == nil || seatMapCache == nil {
        panic("nil dependency passed to NewBookingHandler")
    }
    return &BookingHandler{
        Saga:            saga,
        ReservationRepo: reservationRepo,
        FlightRepo:      flightRepo,
        SeatMapCache:    seatMapCache,
    }
}

// paymentSpec is the wire shape of the "payment" request object. The
// method field selects the strategy; the remaining fields are read per
// method and validated by the strategy itself.
type paymentSpec struct {
    Method       string `json:"method"`
    CardNumber   string `json:"card_number"`
    Holder       string `json:"holder"`
    ExpMonth     int    `json:"exp_month"`
    ExpYear      int    `json:"exp_year"`
    CVV          string `json:"cvv"`
    BankCode     string `json:"bank_code"`
    WalletID     string `json:"wallet_id"`
    BalanceCents uint32 `json:"balance_cents"`
    IBAN         string `json:"iban"`
    AccountName  string `json:"account_name"`
}

// buildAuthorizer maps a paymentSpec to a concrete strategy.
func buildAuthorizer(spec paymentSpec) (payment.Authorizer, error) {
    switch strings.ToLower(strings.TrimSpace(spec.Method)) {
    case "credit_card":
        return payment.NewCreditCard(spec.CardNumber, spec.Holder, spec.ExpMonth, spec.ExpYear, spec.CVV), nil
    case "debit_card":
        return payment.NewDebitCard(spec.CardNumber, spec.Holder, spec.ExpMonth, spec.ExpYear, spec.CVV, spec.BankCode), nil
    case "wallet":
        return payment.NewWallet(spec.WalletID, spec.BalanceCents), nil
    case "bank_transfer":
        return payment.NewBankTransfer(spec.IBAN, spec.AccountName), nil
    default:
        return nil, fmt.Errorf("unknown payment method %q", spec.Method)
    }
}

// CreateReservation handles POST /v1/flights/:id/reservations. The
// saga holds the requested seats, authorizes payment and commits; any
// partial effect is already compensated by the time an error reaches
// this handler.
func (h *BookingHandler) CreateReservation(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    flightID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flight id"})
    }

    var body struct {
        Passengers []struct {
            FullName   string `json:"full_name"`
            Age        uint8  `json:"age"`
            DocumentNo string `json:"document_no"`
            SeatNumber string `json:"seat_number"`
        } `json:"passengers"`
        Payment paymentSpec `json:"payment"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }

    authorizer, err := buildAuthorizer(body.Payment)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }

    req := booking.Request{
        CustomerID: userID,
        FlightID:   flightID,
        Payment:    authorizer,
    }
    for _, p := range body.Passengers {
        req.Passengers = append(req.Passengers, booking.PassengerSpec{
            FullName:   p.FullName,
            Age:        p.Age,
            DocumentNo: p.DocumentNo,
            SeatNumber: p.SeatNumber,
        })
    }

    res, err := h.Saga.CreateReservation(c.Request().Context(), req)
    if err != nil {
        // A failed attempt can still have released expired holds.
        h.SeatMapCache.Invalidate(c.Request().Context(), flightID)
        return bookingError(c, err)
    }
    h.SeatMapCache.Invalidate(c.Request().Context(), flightID)
    return c.JSON(http.StatusCreated, res)
}

// GetReservation handles GET /v1/reservations/:id. Customers can only
// read their own reservations; admins can read any.
func (h *BookingHandler) GetReservation(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }

    res, err := h.Saga.Reservation(c.Request().Context(), id)
    if err != nil {
        return bookingError(c, err)
    }
    if res.CustomerID != userID && c.Get("role") != "ADMIN" {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    return c.JSON(http.StatusOK, res)
}

// ListMyReservations handles GET /v1/reservations.
func (h *BookingHandler) ListMyReservations(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    list, err := h.ReservationRepo.ListByCustomer(c.Request().Context(), userID)
    if err != nil {
        c.Logger().Errorf("list reservations: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if list == nil {
        list = []model.Reservation{}
    }
    return c.JSON(http.StatusOK, list)
}

// ConfirmReservation handles POST /v1/reservations/:id/confirm. On
// success a reservation.confirmed event is published; a broker outage
// is logged but never fails the confirmation.
func (h *BookingHandler) ConfirmReservation(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }

    ctx := c.Request().Context()
    current, err := h.Saga.Reservation(ctx, id)
    if err != nil {
        return bookingError(c, err)
    }
    if current.CustomerID != userID && c.Get("role") != "ADMIN" {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }

    res, err := h.Saga.ConfirmReservation(ctx, id)
    if err != nil {
        return bookingError(c, err)
    }

    if flight, ferr := h.FlightRepo.GetByID(ctx, res.FlightID); ferr == nil {
        seats := make([]string, 0, len(res.Passengers))
        for _, p := range res.Passengers {
            seats = append(seats, p.SeatNumber)
        }
        ev := queue.ReservationConfirmedEvent{
            ReservationID:  res.ID,
            ConfirmationNo: res.ConfirmationNo,
            CustomerID:     res.CustomerID,
            FlightID:       flight.ID,
            FlightNumber:   flight.FlightNumber,
            Origin:         flight.Origin,
            Destination:    flight.Destination,
            DepartsAt:      flight.DepartsAt.UTC().Format(time.RFC3339),
            ArrivesAt:      flight.ArrivesAt.UTC().Format(time.RFC3339),
            SeatNumbers:    seats,
            TotalFareCents: res.TotalFareCents,
            ConfirmedAt:    time.Now().UTC().Format(time.RFC3339),
        }
        if perr := queue_publisher.PublishReservationConfirmed(ctx, ev); perr != nil {
            c.Logger().Warnf("publish reservation.confirmed: %v", perr)
        }
    } else {
        c.Logger().Warnf("load flight for event: %v", ferr)
    }

    return c.JSON(http.StatusOK, res)
}

// CancelReservation handles POST /v1/reservations/:id/cancel. Seats
// return to the open pool, so the seat map cache is invalidated.
func (h *BookingHandler) CancelReservation(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }

    ctx := c.Request().Context()
    current, err := h.Saga.Reservation(ctx, id)
    if err != nil {
        return bookingError(c, err)
    }
    if current.CustomerID != userID && c.Get("role") != "ADMIN" {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }

    res, err := h.Saga.CancelReservation(ctx, id)
    if err != nil {
        return bookingError(c, err)
    }
    h.SeatMapCache.Invalidate(ctx, res.FlightID)
    return c.JSON(http.StatusOK, res)
}
