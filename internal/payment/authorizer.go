// Package payment defines the authorization capability boundary used
// by the booking saga.  Concrete strategies differ only in their
// validation rules and descriptive text; none of them knows anything
// about seats, flights or reservations, only an amount.
package payment

import "context"

// Authorization is the outcome of an authorization attempt.  When
// Approved is false, DeclineReason carries the terminal reason for
// this attempt; the booking core never retries a decline.
type Authorization struct {
    Reference     string // gateway reference for audit trails
    AmountCents   uint32 // amount that was authorized or declined
    Approved      bool
    DeclineReason string
}

// Authorizer is the capability handed to the booking saga per request.
// Validate performs pre-flight field checks before any seat is
// touched; Authorize may block and must be bounded by the caller's
// context; Describe yields a short audit label such as "visa ••4242".
type Authorizer interface {
    Authorize(ctx context.Context, amountCents uint32) (*Authorization, error)
    Validate() error
    Describe() string
}
