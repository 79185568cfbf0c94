// Package booking implements the reservation saga: hold seats,
// authorize payment, commit the reservation, and unwind every partial
// effect when any step fails.
package booking

import "errors"

// Error kinds surfaced by the booking core.  Handlers translate these
// into HTTP statuses; callers can test them with errors.Is because
// every failure wraps exactly one of them.
var (
    // ErrValidation marks a malformed request, rejected before any
    // seat is touched.
    ErrValidation = errors.New("invalid booking request")

    // ErrConflict marks a lost race: a requested seat was not
    // AVAILABLE, or a schedule/seat state collided mid-commit.
    ErrConflict = errors.New("booking conflict")

    // ErrPaymentDeclined marks a terminal authorization failure for
    // this attempt; the core never retries a decline.
    ErrPaymentDeclined = errors.New("payment declined")

    // ErrPersistence marks a storage write that failed after seats
    // were held; compensation has already run when it is returned.
    ErrPersistence = errors.New("persistence failure")

    // ErrNotFound marks an unknown flight, seat or reservation.
    ErrNotFound = errors.New("not found")

    // ErrInvalidState marks an illegal transition, such as cancelling
    // a reservation that is already CANCELLED or COMPLETED.
    ErrInvalidState = errors.New("invalid state transition")

    // ErrDuplicateConfirmation is returned by the store when a freshly
    // generated confirmation number collides with an existing one.
    // The saga reacts by generating a new number, not by failing.
    ErrDuplicateConfirmation = errors.New("confirmation number already taken")
)
