// Package seatmap generates a flight's full seat inventory from the
// capacity of its assigned aircraft.  The layout is deterministic:
// the same aircraft and base fare always yield the same seat map.
package seatmap

import (
    "errors"
    "fmt"

    "github.com/avialta/airline-reservation/internal/model"
)

// ErrMissingAircraft is returned when provisioning is attempted for a
// flight with no aircraft reference.  Callers must surface this error;
// provisioning is never a silent no-op.
var ErrMissingAircraft = errors.New("aircraft reference missing")

// ErrMissingFlight is returned when the flight to provision is nil.
var ErrMissingFlight = errors.New("flight reference missing")

// Cabin share of total capacity: 70% economy and 20% business, with
// the remainder going to first class.  First-class rows are laid out
// first, then business, then economy, each cabin in contiguous rows.
const (
    economyShare  = 70
    businessShare = 20

    economyRowWidth = 6
    premiumRowWidth = 4

    economyMultiplier  = 1
    businessMultiplier = 2
    firstMultiplier    = 3
)

// rowLetters holds the seat letters per row width.  The first and last
// letter of a row are window seats; in a 6-abreast row B/E are middles
// and C/D are aisles, in a 4-abreast row B/C are aisles.
var rowLetters = map[int]string{
    premiumRowWidth: "ABCD",
    economyRowWidth: "ABCDEF",
}

// Provisioner builds seat inventories for newly created flights.
type Provisioner struct{}

// NewProvisioner returns a ready-to-use Provisioner.
func NewProvisioner() *Provisioner { return &Provisioner{} }

// Provision generates the complete seat inventory for the flight from
// the aircraft's total seat count and the flight's base fare.  Every
// generated seat starts AVAILABLE, and the flight's available-seat
// counter is set to the aircraft capacity as a side effect.  The seats
// are returned in allocation order (first class rows, then business,
// then economy) and carry no IDs; persisting them is the caller's job.
func (p *Provisioner) Provision(flight *model.Flight, aircraft *model.Aircraft) ([]model.Seat, error) {
    if flight == nil {
        return nil, ErrMissingFlight
    }
    if aircraft == nil {
        return nil, fmt.Errorf("provision seats for flight %d: %w", flight.ID, ErrMissingAircraft)
    }
    total := int(aircraft.TotalSeats)
    if total == 0 {
        return nil, fmt.Errorf("provision seats for flight %d: aircraft %s has zero seats", flight.ID, aircraft.TailNumber)
    }

    economy := total * economyShare / 100
    business := total * businessShare / 100
    first := total - economy - business

    seats := make([]model.Seat, 0, total)
    row := 1
    row = appendCabin(&seats, flight, model.CabinFirst, first, premiumRowWidth, firstMultiplier, row)
    row = appendCabin(&seats, flight, model.CabinBusiness, business, premiumRowWidth, businessMultiplier, row)
    appendCabin(&seats, flight, model.CabinEconomy, economy, economyRowWidth, economyMultiplier, row)

    flight.AvailableSeats = aircraft.TotalSeats
    return seats, nil
}

// appendCabin lays out count seats of one cabin class starting at
// startRow and returns the next free row number.  The last row of a
// cabin may be partial; letters fill left to right.
func appendCabin(seats *[]model.Seat, flight *model.Flight, cabin string, count, width, multiplier, startRow int) int {
    letters := rowLetters[width]
    row := startRow
    for placed := 0; placed < count; row++ {
        for col := 0; col < width && placed < count; col++ {
            letter := letters[col]
            *seats = append(*seats, model.Seat{
                FlightID:   flight.ID,
                SeatNumber: fmt.Sprintf("%d%c", row, letter),
                CabinClass: cabin,
                Position:   position(col, width),
                PriceCents: flight.BaseFareCents * uint32(multiplier),
                Status:     model.SeatStatusAvailable,
            })
            placed++
        }
    }
    return row
}

// position maps a column index to WINDOW, MIDDLE or AISLE for the
// given row width.
func position(col, width int) string {
    switch {
    case col == 0 || col == width-1:
        return model.PositionWindow
    case width == economyRowWidth && (col == 1 || col == width-2):
        return model.PositionMiddle
    default:
        return model.PositionAisle
    }
}
