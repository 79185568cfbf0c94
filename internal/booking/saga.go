package booking

import (
    "context"
    "errors"
    "fmt"
    "log"
    "strings"
    "time"

    "github.com/avialta/airline-reservation/internal/confirmation"
    "github.com/avialta/airline-reservation/internal/model"
    "github.com/avialta/airline-reservation/internal/payment"
)

// Defaults applied when SagaConfig leaves a field zero.
const (
    DefaultHoldTTL        = 5 * time.Minute
    DefaultPaymentTimeout = 10 * time.Second

    // maxConfirmationAttempts bounds regeneration on confirmation
    // number collisions.  With a 32^8 number space more than one
    // retry is already extraordinary.
    maxConfirmationAttempts = 5
)

// PassengerSpec is one requested traveller with their chosen seat.
type PassengerSpec struct {
    FullName   string
    Age        uint8
    DocumentNo string
    SeatNumber string
}

// Request carries everything needed for one booking attempt.  The
// payment authorizer is chosen by the caller per request.
type Request struct {
    CustomerID uint64
    FlightID   uint64
    Passengers []PassengerSpec
    Payment    payment.Authorizer
}

// SagaConfig tunes the saga's timing behaviour.
type SagaConfig struct {
    // HoldTTL bounds how long a seat stays RESERVED without a commit;
    // an abandoned attempt frees its seats after this long even
    // without an explicit release.
    HoldTTL time.Duration

    // PaymentTimeout bounds the blocking authorization call.
    PaymentTimeout time.Duration
}

// Saga orchestrates one booking attempt as a sequence of steps with
// compensating actions: Requested -> SeatsHeld -> PaymentAuthorized ->
// Committed, falling back to Released whenever a later step fails.
// All storage effects go through the Store port; the saga itself keeps
// no shared mutable state and is safe for concurrent use.
type Saga struct {
    store         Store
    confirmations *confirmation.Generator
    holdTTL       time.Duration
    payTimeout    time.Duration
    clock         func() time.Time
}

// NewSaga constructs a Saga.  The store and generator must be non-nil.
func NewSaga(store Store, confirmations *confirmation.Generator, cfg SagaConfig) *Saga {
    if store == nil || confirmations == nil {
        panic("nil dependency passed to NewSaga")
    }
    if cfg.HoldTTL <= 0 {
        cfg.HoldTTL = DefaultHoldTTL
    }
    if cfg.PaymentTimeout <= 0 {
        cfg.PaymentTimeout = DefaultPaymentTimeout
    }
    return &Saga{
        store:         store,
        confirmations: confirmations,
        holdTTL:       cfg.HoldTTL,
        payTimeout:    cfg.PaymentTimeout,
        clock:         time.Now,
    }
}

// compensation is one inverse action pushed after a successful step.
type compensation struct {
    name string
    run  func(context.Context) error
}

// unwind runs the recorded compensations in reverse order.  It uses a
// context detached from the (possibly cancelled) request context so a
// payment timeout cannot also abort the release of held seats.
func unwind(ctx context.Context, comps []compensation) {
    ctx = context.WithoutCancel(ctx)
    for i := len(comps) - 1; i >= 0; i-- {
        if err := comps[i].run(ctx); err != nil {
            log.Printf("booking: compensation %q failed: %v", comps[i].name, err)
        }
    }
}

// CreateReservation runs the full booking saga.  On success the
// returned reservation is PENDING with every requested seat OCCUPIED
// and the flight's available-seat counter reduced by the passenger
// count.  On any failure after a hold was taken, every held seat is
// back to AVAILABLE before the error is returned; the caller never
// observes a held-but-unresolved seat.
func (s *Saga) CreateReservation(ctx context.Context, req Request) (*model.Reservation, error) {
    if err := validateRequest(req); err != nil {
        return nil, err
    }

    flight, err := s.store.FlightByID(ctx, req.FlightID)
    if err != nil {
        return nil, err
    }
    if !bookable(flight.Status) {
        return nil, fmt.Errorf("flight %s is %s: %w", flight.FlightNumber, flight.Status, ErrValidation)
    }

    // Lapsed holds from abandoned attempts are swept before new holds
    // are taken, so a stale RESERVED row cannot shadow a free seat.
    if _, err := s.store.ReleaseExpiredHolds(ctx, req.FlightID); err != nil {
        return nil, fmt.Errorf("sweep expired holds: %w", errors.Join(ErrPersistence, err))
    }

    var comps []compensation
    expiresAt := s.clock().UTC().Add(s.holdTTL)

    passengers := make([]model.Passenger, 0, len(req.Passengers))
    var totalFare uint32
    for _, spec := range req.Passengers {
        seat, err := s.store.HoldSeat(ctx, req.FlightID, spec.SeatNumber, expiresAt)
        if err != nil {
            unwind(ctx, comps)
            return nil, err
        }
        num := spec.SeatNumber
        comps = append(comps, compensation{
            name: "release seat " + num,
            run: func(cctx context.Context) error {
                return s.store.ReleaseSeats(cctx, req.FlightID, []string{num})
            },
        })
        // The fare is pinned here: later price changes do not touch
        // this attempt's total.
        totalFare += seat.PriceCents
        passengers = append(passengers, model.Passenger{
            FullName:   spec.FullName,
            Age:        spec.Age,
            DocumentNo: spec.DocumentNo,
            SeatID:     seat.ID,
            SeatNumber: seat.SeatNumber,
            FareCents:  seat.PriceCents,
        })
    }

    payCtx, cancel := context.WithTimeout(ctx, s.payTimeout)
    auth, err := req.Payment.Authorize(payCtx, totalFare)
    cancel()
    if err != nil {
        unwind(ctx, comps)
        return nil, fmt.Errorf("authorize %s: %v: %w", req.Payment.Describe(), err, ErrPaymentDeclined)
    }
    if !auth.Approved {
        unwind(ctx, comps)
        return nil, fmt.Errorf("%s: %s: %w", req.Payment.Describe(), auth.DeclineReason, ErrPaymentDeclined)
    }

    for attempt := 0; attempt < maxConfirmationAttempts; attempt++ {
        ref, err := s.confirmations.Generate()
        if err != nil {
            unwind(ctx, comps)
            return nil, fmt.Errorf("generate confirmation: %w", errors.Join(ErrPersistence, err))
        }
        res := &model.Reservation{
            ConfirmationNo: ref,
            CustomerID:     req.CustomerID,
            FlightID:       req.FlightID,
            Status:         model.ReservationStatusPending,
            TotalFareCents: totalFare,
            Passengers:     passengers,
        }
        err = s.store.CommitReservation(ctx, res)
        if err == nil {
            return res, nil
        }
        if errors.Is(err, ErrDuplicateConfirmation) {
            continue
        }
        unwind(ctx, comps)
        return nil, err
    }

    unwind(ctx, comps)
    return nil, fmt.Errorf("exhausted %d confirmation attempts: %w", maxConfirmationAttempts, ErrPersistence)
}

// ConfirmReservation moves a PENDING reservation to CONFIRMED.
func (s *Saga) ConfirmReservation(ctx context.Context, reservationID uint64) (*model.Reservation, error) {
    return s.store.ConfirmReservation(ctx, reservationID)
}

// CancelReservation cancels a PENDING or CONFIRMED reservation,
// releasing its seats and restoring the flight's seat counter in one
// atomic step.  Cancelling a terminal reservation returns
// ErrInvalidState with no side effects.
func (s *Saga) CancelReservation(ctx context.Context, reservationID uint64) (*model.Reservation, error) {
    return s.store.CancelReservation(ctx, reservationID)
}

// Reservation loads a reservation with its passengers.
func (s *Saga) Reservation(ctx context.Context, reservationID uint64) (*model.Reservation, error) {
    return s.store.ReservationByID(ctx, reservationID)
}

// validateRequest rejects malformed requests before any seat is
// touched.
func validateRequest(req Request) error {
    if req.Payment == nil {
        return fmt.Errorf("payment authorizer is required: %w", ErrValidation)
    }
    if req.CustomerID == 0 {
        return fmt.Errorf("customer id is required: %w", ErrValidation)
    }
    if len(req.Passengers) == 0 {
        return fmt.Errorf("at least one passenger is required: %w", ErrValidation)
    }
    seen := make(map[string]bool, len(req.Passengers))
    for i, p := range req.Passengers {
        if strings.TrimSpace(p.FullName) == "" {
            return fmt.Errorf("passenger %d: name is required: %w", i+1, ErrValidation)
        }
        num := strings.ToUpper(strings.TrimSpace(p.SeatNumber))
        if num == "" {
            return fmt.Errorf("passenger %d: seat number is required: %w", i+1, ErrValidation)
        }
        if seen[num] {
            return fmt.Errorf("seat %s requested twice: %w", num, ErrValidation)
        }
        seen[num] = true
    }
    if err := req.Payment.Validate(); err != nil {
        return fmt.Errorf("%s: %v: %w", req.Payment.Describe(), err, ErrValidation)
    }
    return nil
}

// bookable reports whether a flight in the given status accepts new
// reservations.
func bookable(status string) bool {
    return status == model.FlightStatusScheduled || status == model.FlightStatusDelayed
}
