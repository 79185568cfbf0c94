package booking

import (
    "context"
    "fmt"
    "strings"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/avialta/airline-reservation/internal/confirmation"
    "github.com/avialta/airline-reservation/internal/model"
    "github.com/avialta/airline-reservation/internal/payment"
)

// memStore is a mutex-guarded in-memory Store used to exercise the
// saga without a database.  Its conditional transitions mirror the SQL
// implementation: a hold only succeeds against an AVAILABLE (or
// lapsed-hold) seat, and commit refuses seats that are not RESERVED.
type memStore struct {
    mu           sync.Mutex
    flights      map[uint64]*model.Flight
    seats        map[uint64]map[string]*model.Seat
    reservations map[uint64]*model.Reservation
    taken        map[string]bool
    nextSeatID   uint64
    nextResID    uint64

    commitErr     error
    dupRemaining  int
    commitCalls   int
    releasedSeats []string
}

func newMemStore() *memStore {
    return &memStore{
        flights:      make(map[uint64]*model.Flight),
        seats:        make(map[uint64]map[string]*model.Seat),
        reservations: make(map[uint64]*model.Reservation),
        taken:        make(map[string]bool),
    }
}

func (m *memStore) addFlight(f *model.Flight) {
    m.flights[f.ID] = f
    m.seats[f.ID] = make(map[string]*model.Seat)
}

func (m *memStore) addSeat(flightID uint64, number string, priceCents uint32) *model.Seat {
    m.nextSeatID++
    s := &model.Seat{
        ID:         m.nextSeatID,
        FlightID:   flightID,
        SeatNumber: number,
        CabinClass: model.CabinEconomy,
        Position:   model.PositionWindow,
        PriceCents: priceCents,
        Status:     model.SeatStatusAvailable,
    }
    m.seats[flightID][number] = s
    return s
}

func (m *memStore) seatStatus(flightID uint64, number string) string {
    m.mu.Lock()
    defer m.mu.Unlock()
    return m.seats[flightID][number].Status
}

func (m *memStore) setSeatPrice(flightID uint64, number string, priceCents uint32) {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.seats[flightID][number].PriceCents = priceCents
}

func (m *memStore) FlightByID(_ context.Context, flightID uint64) (*model.Flight, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    f, ok := m.flights[flightID]
    if !ok {
        return nil, fmt.Errorf("flight %d: %w", flightID, ErrNotFound)
    }
    cp := *f
    return &cp, nil
}

func (m *memStore) HoldSeat(_ context.Context, flightID uint64, seatNumber string, expiresAt time.Time) (*model.Seat, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    seat, ok := m.seats[flightID][strings.ToUpper(seatNumber)]
    if !ok {
        return nil, fmt.Errorf("seat %s on flight %d: %w", seatNumber, flightID, ErrNotFound)
    }
    lapsed := seat.Status == model.SeatStatusReserved &&
        seat.HoldExpiresAt != nil && seat.HoldExpiresAt.Before(time.Now())
    if seat.Status != model.SeatStatusAvailable && !lapsed {
        return nil, fmt.Errorf("seat %s is %s: %w", seat.SeatNumber, seat.Status, ErrConflict)
    }
    seat.Status = model.SeatStatusReserved
    exp := expiresAt
    seat.HoldExpiresAt = &exp
    cp := *seat
    return &cp, nil
}

func (m *memStore) ReleaseSeats(_ context.Context, flightID uint64, seatNumbers []string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    for _, num := range seatNumbers {
        seat, ok := m.seats[flightID][strings.ToUpper(num)]
        if !ok || seat.Status != model.SeatStatusReserved {
            continue
        }
        seat.Status = model.SeatStatusAvailable
        seat.HoldExpiresAt = nil
        m.releasedSeats = append(m.releasedSeats, seat.SeatNumber)
    }
    return nil
}

func (m *memStore) ReleaseExpiredHolds(_ context.Context, flightID uint64) ([]string, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    var freed []string
    for _, seat := range m.seats[flightID] {
        if seat.Status == model.SeatStatusReserved &&
            seat.HoldExpiresAt != nil && seat.HoldExpiresAt.Before(time.Now()) {
            seat.Status = model.SeatStatusAvailable
            seat.HoldExpiresAt = nil
            freed = append(freed, seat.SeatNumber)
        }
    }
    return freed, nil
}

func (m *memStore) CommitReservation(_ context.Context, res *model.Reservation) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.commitCalls++
    if m.commitErr != nil {
        return m.commitErr
    }
    if m.dupRemaining > 0 {
        m.dupRemaining--
        return fmt.Errorf("confirmation %s: %w", res.ConfirmationNo, ErrDuplicateConfirmation)
    }
    if m.taken[res.ConfirmationNo] {
        return fmt.Errorf("confirmation %s: %w", res.ConfirmationNo, ErrDuplicateConfirmation)
    }
    for _, p := range res.Passengers {
        seat := m.seats[res.FlightID][p.SeatNumber]
        if seat == nil || seat.Status != model.SeatStatusReserved {
            return fmt.Errorf("seat %s not held: %w", p.SeatNumber, ErrConflict)
        }
    }
    for _, p := range res.Passengers {
        seat := m.seats[res.FlightID][p.SeatNumber]
        seat.Status = model.SeatStatusOccupied
        seat.HoldExpiresAt = nil
    }
    m.flights[res.FlightID].AvailableSeats -= uint32(len(res.Passengers))
    m.nextResID++
    res.ID = m.nextResID
    res.CreatedAt = time.Now()
    res.UpdatedAt = res.CreatedAt
    m.taken[res.ConfirmationNo] = true
    cp := *res
    m.reservations[res.ID] = &cp
    return nil
}

func (m *memStore) ConfirmReservation(_ context.Context, reservationID uint64) (*model.Reservation, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    res, ok := m.reservations[reservationID]
    if !ok {
        return nil, fmt.Errorf("reservation %d: %w", reservationID, ErrNotFound)
    }
    if res.Status != model.ReservationStatusPending {
        return nil, fmt.Errorf("reservation %d is %s: %w", reservationID, res.Status, ErrInvalidState)
    }
    res.Status = model.ReservationStatusConfirmed
    cp := *res
    return &cp, nil
}

func (m *memStore) CancelReservation(_ context.Context, reservationID uint64) (*model.Reservation, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    res, ok := m.reservations[reservationID]
    if !ok {
        return nil, fmt.Errorf("reservation %d: %w", reservationID, ErrNotFound)
    }
    if res.Status != model.ReservationStatusPending && res.Status != model.ReservationStatusConfirmed {
        return nil, fmt.Errorf("reservation %d is %s: %w", reservationID, res.Status, ErrInvalidState)
    }
    res.Status = model.ReservationStatusCancelled
    for _, p := range res.Passengers {
        seat := m.seats[res.FlightID][p.SeatNumber]
        seat.Status = model.SeatStatusAvailable
        seat.HoldExpiresAt = nil
    }
    m.flights[res.FlightID].AvailableSeats += uint32(len(res.Passengers))
    cp := *res
    return &cp, nil
}

func (m *memStore) ReservationByID(_ context.Context, reservationID uint64) (*model.Reservation, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    res, ok := m.reservations[reservationID]
    if !ok {
        return nil, fmt.Errorf("reservation %d: %w", reservationID, ErrNotFound)
    }
    cp := *res
    return &cp, nil
}

func newTestFlight(store *memStore) *model.Flight {
    f := &model.Flight{
        ID:             1,
        FlightNumber:   "AV101",
        AircraftID:     1,
        Origin:         "LIM",
        Destination:    "BOG",
        Status:         model.FlightStatusScheduled,
        AvailableSeats: 3,
    }
    store.addFlight(f)
    store.addSeat(f.ID, "1A", 15000)
    store.addSeat(f.ID, "1B", 15000)
    store.addSeat(f.ID, "2A", 12000)
    return f
}

func richWallet() *payment.Wallet {
    return payment.NewWallet("w-test", 10_000_000)
}

func twoPassengerRequest(pay payment.Authorizer) Request {
    return Request{
        CustomerID: 7,
        FlightID:   1,
        Payment:    pay,
        Passengers: []PassengerSpec{
            {FullName: "Ana Torres", Age: 34, DocumentNo: "P1234567", SeatNumber: "1A"},
            {FullName: "Luis Torres", Age: 36, DocumentNo: "P7654321", SeatNumber: "1B"},
        },
    }
}

func TestCreateReservationSuccess(t *testing.T) {
    store := newMemStore()
    newTestFlight(store)
    saga := NewSaga(store, confirmation.NewGenerator(), SagaConfig{})

    res, err := saga.CreateReservation(context.Background(), twoPassengerRequest(richWallet()))
    require.NoError(t, err)

    assert.Equal(t, model.ReservationStatusPending, res.Status)
    assert.Equal(t, uint32(30000), res.TotalFareCents)
    assert.True(t, strings.HasPrefix(res.ConfirmationNo, "AV"))
    require.Len(t, res.Passengers, 2)
    assert.NotZero(t, res.Passengers[0].SeatID)
    assert.Equal(t, uint32(15000), res.Passengers[0].FareCents)

    assert.Equal(t, model.SeatStatusOccupied, store.seatStatus(1, "1A"))
    assert.Equal(t, model.SeatStatusOccupied, store.seatStatus(1, "1B"))
    assert.Equal(t, model.SeatStatusAvailable, store.seatStatus(1, "2A"))
    assert.Equal(t, uint32(1), store.flights[1].AvailableSeats)
}

func TestPaymentDeclineReleasesHeldSeats(t *testing.T) {
    store := newMemStore()
    newTestFlight(store)
    saga := NewSaga(store, confirmation.NewGenerator(), SagaConfig{})

    // 30000 cents due, 100 in the wallet.
    _, err := saga.CreateReservation(context.Background(), twoPassengerRequest(payment.NewWallet("w-poor", 100)))
    require.ErrorIs(t, err, ErrPaymentDeclined)

    assert.Equal(t, model.SeatStatusAvailable, store.seatStatus(1, "1A"))
    assert.Equal(t, model.SeatStatusAvailable, store.seatStatus(1, "1B"))
    assert.Equal(t, uint32(3), store.flights[1].AvailableSeats)
    assert.Empty(t, store.reservations)
}

func TestUnavailableSeatReleasesEarlierHolds(t *testing.T) {
    store := newMemStore()
    newTestFlight(store)
    store.seats[1]["1B"].Status = model.SeatStatusOccupied
    saga := NewSaga(store, confirmation.NewGenerator(), SagaConfig{})

    _, err := saga.CreateReservation(context.Background(), twoPassengerRequest(richWallet()))
    require.ErrorIs(t, err, ErrConflict)

    // 1A was held first and must be released again.
    assert.Equal(t, model.SeatStatusAvailable, store.seatStatus(1, "1A"))
    assert.Contains(t, store.releasedSeats, "1A")
}

func TestCommitFailureReleasesHeldSeats(t *testing.T) {
    store := newMemStore()
    newTestFlight(store)
    store.commitErr = fmt.Errorf("connection reset: %w", ErrPersistence)
    saga := NewSaga(store, confirmation.NewGenerator(), SagaConfig{})

    _, err := saga.CreateReservation(context.Background(), twoPassengerRequest(richWallet()))
    require.ErrorIs(t, err, ErrPersistence)

    assert.Equal(t, model.SeatStatusAvailable, store.seatStatus(1, "1A"))
    assert.Equal(t, model.SeatStatusAvailable, store.seatStatus(1, "1B"))
    assert.Equal(t, uint32(3), store.flights[1].AvailableSeats)
}

func TestDuplicateConfirmationIsRetried(t *testing.T) {
    store := newMemStore()
    newTestFlight(store)
    store.dupRemaining = 2
    saga := NewSaga(store, confirmation.NewGenerator(), SagaConfig{})

    res, err := saga.CreateReservation(context.Background(), twoPassengerRequest(richWallet()))
    require.NoError(t, err)
    assert.Equal(t, 3, store.commitCalls)
    assert.Equal(t, model.SeatStatusOccupied, store.seatStatus(1, "1A"))
    assert.NotEmpty(t, res.ConfirmationNo)
}

func TestConcurrentRequestsForSameSeat(t *testing.T) {
    store := newMemStore()
    newTestFlight(store)
    saga := NewSaga(store, confirmation.NewGenerator(), SagaConfig{})

    req := Request{
        CustomerID: 7,
        FlightID:   1,
        Payment:    richWallet(),
        Passengers: []PassengerSpec{
            {FullName: "Ana Torres", Age: 34, DocumentNo: "P1234567", SeatNumber: "2A"},
        },
    }

    errs := make(chan error, 2)
    var wg sync.WaitGroup
    for i := 0; i < 2; i++ {
        wg.Add(1)
        go func() {
            defer wg.Done()
            _, err := saga.CreateReservation(context.Background(), req)
            errs <- err
        }()
    }
    wg.Wait()
    close(errs)

    var ok, conflicts int
    for err := range errs {
        switch {
        case err == nil:
            ok++
        default:
            require.ErrorIs(t, err, ErrConflict)
            conflicts++
        }
    }
    assert.Equal(t, 1, ok)
    assert.Equal(t, 1, conflicts)
    assert.Equal(t, model.SeatStatusOccupied, store.seatStatus(1, "2A"))
    assert.Equal(t, uint32(2), store.flights[1].AvailableSeats)
}

func TestExpiredHoldIsReclaimed(t *testing.T) {
    store := newMemStore()
    newTestFlight(store)
    lapsed := time.Now().Add(-time.Minute)
    store.seats[1]["1A"].Status = model.SeatStatusReserved
    store.seats[1]["1A"].HoldExpiresAt = &lapsed
    store.seats[1]["1B"].Status = model.SeatStatusReserved
    store.seats[1]["1B"].HoldExpiresAt = &lapsed
    saga := NewSaga(store, confirmation.NewGenerator(), SagaConfig{})

    res, err := saga.CreateReservation(context.Background(), twoPassengerRequest(richWallet()))
    require.NoError(t, err)
    assert.Equal(t, model.ReservationStatusPending, res.Status)
}

// hookedAuthorizer runs a callback before delegating, so a test can
// change store state while the payment is in flight.
type hookedAuthorizer struct {
    payment.Authorizer
    before func()
}

func (h *hookedAuthorizer) Authorize(ctx context.Context, amountCents uint32) (*payment.Authorization, error) {
    h.before()
    return h.Authorizer.Authorize(ctx, amountCents)
}

func TestFareIsPinnedAtHoldTime(t *testing.T) {
    store := newMemStore()
    newTestFlight(store)
    saga := NewSaga(store, confirmation.NewGenerator(), SagaConfig{})

    // Seat prices change after the holds but before payment and
    // commit; the reservation must keep the prices seen at hold time.
    pay := &hookedAuthorizer{Authorizer: richWallet(), before: func() {
        store.setSeatPrice(1, "1A", 99000)
        store.setSeatPrice(1, "1B", 99000)
    }}

    res, err := saga.CreateReservation(context.Background(), twoPassengerRequest(pay))
    require.NoError(t, err)

    assert.Equal(t, uint32(30000), res.TotalFareCents)
    require.Len(t, res.Passengers, 2)
    for _, p := range res.Passengers {
        assert.Equal(t, uint32(15000), p.FareCents)
    }

    stored, err := store.ReservationByID(context.Background(), res.ID)
    require.NoError(t, err)
    assert.Equal(t, uint32(30000), stored.TotalFareCents)
}

func TestCancelRestoresSeatsAndCounter(t *testing.T) {
    store := newMemStore()
    newTestFlight(store)
    saga := NewSaga(store, confirmation.NewGenerator(), SagaConfig{})

    res, err := saga.CreateReservation(context.Background(), twoPassengerRequest(richWallet()))
    require.NoError(t, err)

    cancelled, err := saga.CancelReservation(context.Background(), res.ID)
    require.NoError(t, err)
    assert.Equal(t, model.ReservationStatusCancelled, cancelled.Status)
    assert.Equal(t, model.SeatStatusAvailable, store.seatStatus(1, "1A"))
    assert.Equal(t, model.SeatStatusAvailable, store.seatStatus(1, "1B"))
    assert.Equal(t, uint32(3), store.flights[1].AvailableSeats)

    _, err = saga.CancelReservation(context.Background(), res.ID)
    require.ErrorIs(t, err, ErrInvalidState)
    assert.Equal(t, uint32(3), store.flights[1].AvailableSeats, "double cancel must not restore twice")
}

func TestConfirmTransition(t *testing.T) {
    store := newMemStore()
    newTestFlight(store)
    saga := NewSaga(store, confirmation.NewGenerator(), SagaConfig{})

    res, err := saga.CreateReservation(context.Background(), twoPassengerRequest(richWallet()))
    require.NoError(t, err)

    confirmed, err := saga.ConfirmReservation(context.Background(), res.ID)
    require.NoError(t, err)
    assert.Equal(t, model.ReservationStatusConfirmed, confirmed.Status)

    _, err = saga.ConfirmReservation(context.Background(), res.ID)
    require.ErrorIs(t, err, ErrInvalidState)
}

func TestCreateReservationValidation(t *testing.T) {
    store := newMemStore()
    newTestFlight(store)
    saga := NewSaga(store, confirmation.NewGenerator(), SagaConfig{})
    ctx := context.Background()

    cases := []struct {
        name string
        req  Request
    }{
        {
            name: "missing payment",
            req: Request{CustomerID: 7, FlightID: 1, Passengers: []PassengerSpec{
                {FullName: "Ana", SeatNumber: "1A"},
            }},
        },
        {
            name: "no passengers",
            req:  Request{CustomerID: 7, FlightID: 1, Payment: richWallet()},
        },
        {
            name: "duplicate seat",
            req: Request{CustomerID: 7, FlightID: 1, Payment: richWallet(), Passengers: []PassengerSpec{
                {FullName: "Ana", SeatNumber: "1A"},
                {FullName: "Luis", SeatNumber: "1a"},
            }},
        },
        {
            name: "blank passenger name",
            req: Request{CustomerID: 7, FlightID: 1, Payment: richWallet(), Passengers: []PassengerSpec{
                {FullName: "  ", SeatNumber: "1A"},
            }},
        },
        {
            name: "invalid payment instrument",
            req: Request{CustomerID: 7, FlightID: 1, Payment: payment.NewWallet("", 100), Passengers: []PassengerSpec{
                {FullName: "Ana", SeatNumber: "1A"},
            }},
        },
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            _, err := saga.CreateReservation(ctx, tc.req)
            require.ErrorIs(t, err, ErrValidation)
        })
    }

    // Validation failures must not touch any seat.
    assert.Equal(t, model.SeatStatusAvailable, store.seatStatus(1, "1A"))
}

func TestCreateReservationRejectsUnbookableFlight(t *testing.T) {
    store := newMemStore()
    f := newTestFlight(store)
    f.Status = model.FlightStatusCancelled
    saga := NewSaga(store, confirmation.NewGenerator(), SagaConfig{})

    _, err := saga.CreateReservation(context.Background(), twoPassengerRequest(richWallet()))
    require.ErrorIs(t, err, ErrValidation)
}

func TestCreateReservationUnknownFlight(t *testing.T) {
    store := newMemStore()
    saga := NewSaga(store, confirmation.NewGenerator(), SagaConfig{})

    req := twoPassengerRequest(richWallet())
    req.FlightID = 99
    _, err := saga.CreateReservation(context.Background(), req)
    require.ErrorIs(t, err, ErrNotFound)
}
