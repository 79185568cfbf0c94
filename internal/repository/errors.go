// Package repository implements MySQL data access for the airline
// domain.  Sentinel errors defined here let handlers distinguish
// failure scenarios without inspecting driver errors: a not-found
// lookup becomes HTTP 404, a conflicting write becomes HTTP 409.
package repository

import "errors"

// ErrAircraftNotFound is returned when an aircraft lookup yields no rows.
var ErrAircraftNotFound = errors.New("aircraft not found")

// ErrFlightNotFound is returned when a flight lookup yields no rows.
var ErrFlightNotFound = errors.New("flight not found")

// ErrSeatNotFound is returned when a seat lookup yields no rows.
var ErrSeatNotFound = errors.New("seat not found")

// ErrReservationNotFound is returned when a reservation lookup yields
// no rows.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrDuplicate is returned when an insert violates a unique key, such
// as a flight number reused for the same departure or a tail number
// registered twice. Handlers should translate this into HTTP 409.
var ErrDuplicate = errors.New("duplicate record")

// ErrConflict is returned when a delete or update cannot be performed
// because of conflicting state, such as deleting a flight that still
// has active reservations. Handlers should translate this into an
// HTTP 409 response.
var ErrConflict = errors.New("conflict")
