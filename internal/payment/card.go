package payment

import (
    "context"
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/google/uuid"
)

// Field-validation errors shared by the card-based strategies.
var (
    ErrCardNumberInvalid = errors.New("card number failed checksum")
    ErrCardExpired       = errors.New("card is expired")
    ErrCardCVVInvalid    = errors.New("card security code must be 3 or 4 digits")
    ErrCardHolderMissing = errors.New("card holder name is required")
)

// CreditCard authorizes against a credit card.  Validation covers the
// Luhn checksum, expiry and CVV; a card that validates is approved.
type CreditCard struct {
    Number   string
    Holder   string
    ExpMonth int
    ExpYear  int
    CVV      string

    now func() time.Time // test hook; defaults to time.Now
}

// NewCreditCard builds a credit card strategy from raw request fields.
func NewCreditCard(number, holder string, expMonth, expYear int, cvv string) *CreditCard {
    return &CreditCard{
        Number:   strings.ReplaceAll(strings.TrimSpace(number), " ", ""),
        Holder:   strings.TrimSpace(holder),
        ExpMonth: expMonth,
        ExpYear:  expYear,
        CVV:      strings.TrimSpace(cvv),
        now:      time.Now,
    }
}

// Validate checks the card fields without contacting any gateway.
func (c *CreditCard) Validate() error {
    if c.Holder == "" {
        return ErrCardHolderMissing
    }
    if !luhnValid(c.Number) {
        return ErrCardNumberInvalid
    }
    if l := len(c.CVV); l != 3 && l != 4 {
        return ErrCardCVVInvalid
    }
    if expired(c.ExpMonth, c.ExpYear, c.now()) {
        return ErrCardExpired
    }
    return nil
}

// Authorize approves the amount once validation passes.  A validation
// failure at this stage is reported as a decline, not an error, so the
// caller sees a terminal outcome for the attempt.
func (c *CreditCard) Authorize(ctx context.Context, amountCents uint32) (*Authorization, error) {
    if err := ctx.Err(); err != nil {
        return nil, err
    }
    if err := c.Validate(); err != nil {
        return &Authorization{AmountCents: amountCents, DeclineReason: err.Error()}, nil
    }
    return &Authorization{
        Reference:   uuid.NewString(),
        AmountCents: amountCents,
        Approved:    true,
    }, nil
}

// Describe returns an audit label that exposes only the last four
// digits of the card number.
func (c *CreditCard) Describe() string {
    return fmt.Sprintf("credit card ••%s", lastFour(c.Number))
}

// DebitCard behaves like CreditCard but additionally requires the
// issuing bank code printed on the card.
type DebitCard struct {
    Number   string
    Holder   string
    ExpMonth int
    ExpYear  int
    CVV      string
    BankCode string

    now func() time.Time
}

// ErrBankCodeMissing indicates the debit card's issuing bank code was
// not supplied.
var ErrBankCodeMissing = errors.New("issuing bank code is required")

// NewDebitCard builds a debit card strategy from raw request fields.
func NewDebitCard(number, holder string, expMonth, expYear int, cvv, bankCode string) *DebitCard {
    return &DebitCard{
        Number:   strings.ReplaceAll(strings.TrimSpace(number), " ", ""),
        Holder:   strings.TrimSpace(holder),
        ExpMonth: expMonth,
        ExpYear:  expYear,
        CVV:      strings.TrimSpace(cvv),
        BankCode: strings.ToUpper(strings.TrimSpace(bankCode)),
        now:      time.Now,
    }
}

// Validate checks the debit card fields.
func (d *DebitCard) Validate() error {
    if d.BankCode == "" {
        return ErrBankCodeMissing
    }
    if d.Holder == "" {
        return ErrCardHolderMissing
    }
    if !luhnValid(d.Number) {
        return ErrCardNumberInvalid
    }
    if l := len(d.CVV); l != 3 && l != 4 {
        return ErrCardCVVInvalid
    }
    if expired(d.ExpMonth, d.ExpYear, d.now()) {
        return ErrCardExpired
    }
    return nil
}

// Authorize approves the amount once validation passes.
func (d *DebitCard) Authorize(ctx context.Context, amountCents uint32) (*Authorization, error) {
    if err := ctx.Err(); err != nil {
        return nil, err
    }
    if err := d.Validate(); err != nil {
        return &Authorization{AmountCents: amountCents, DeclineReason: err.Error()}, nil
    }
    return &Authorization{
        Reference:   uuid.NewString(),
        AmountCents: amountCents,
        Approved:    true,
    }, nil
}

// Describe returns an audit label for the debit card.
func (d *DebitCard) Describe() string {
    return fmt.Sprintf("debit card ••%s (%s)", lastFour(d.Number), d.BankCode)
}

// luhnValid reports whether s is a plausible card number: 12-19 digits
// passing the Luhn checksum.
func luhnValid(s string) bool {
    if len(s) < 12 || len(s) > 19 {
        return false
    }
    sum := 0
    double := false
    for i := len(s) - 1; i >= 0; i-- {
        ch := s[i]
        if ch < '0' || ch > '9' {
            return false
        }
        n := int(ch - '0')
        if double {
            n *= 2
            if n > 9 {
                n -= 9
            }
        }
        sum += n
        double = !double
    }
    return sum%10 == 0
}

// expired reports whether a card expiring at month/year is no longer
// valid at the given instant.  Cards stay valid through the last day
// of their expiry month.
func expired(month, year int, now time.Time) bool {
    if month < 1 || month > 12 || year < 2000 {
        return true
    }
    endOfMonth := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
    return !now.Before(endOfMonth)
}

func lastFour(number string) string {
    if len(number) < 4 {
        return number
    }
    return number[len(number)-4:]
}
