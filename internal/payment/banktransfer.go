package payment

import (
    "context"
    "errors"
    "fmt"
    "strings"

    "github.com/google/uuid"
)

// Bank-transfer validation errors.
var (
    ErrIBANInvalid       = errors.New("iban must be 15-34 alphanumeric characters starting with a country code")
    ErrAccountNameNeeded = errors.New("account holder name is required")
)

// BankTransfer authorizes a direct bank transfer identified by an
// IBAN.  The syntax check is deliberately shallow (length and charset
// only); a real clearing check lives behind the gateway this strategy
// stands in for.
type BankTransfer struct {
    IBAN        string
    AccountName string
}

// NewBankTransfer builds a bank-transfer strategy.
func NewBankTransfer(iban, accountName string) *BankTransfer {
    return &BankTransfer{
        IBAN:        strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(iban), " ", "")),
        AccountName: strings.TrimSpace(accountName),
    }
}

// Validate checks the transfer fields.
func (b *BankTransfer) Validate() error {
    if b.AccountName == "" {
        return ErrAccountNameNeeded
    }
    if !ibanPlausible(b.IBAN) {
        return ErrIBANInvalid
    }
    return nil
}

// Authorize approves the amount once validation passes.
func (b *BankTransfer) Authorize(ctx context.Context, amountCents uint32) (*Authorization, error) {
    if err := ctx.Err(); err != nil {
        return nil, err
    }
    if err := b.Validate(); err != nil {
        return &Authorization{AmountCents: amountCents, DeclineReason: err.Error()}, nil
    }
    return &Authorization{
        Reference:   uuid.NewString(),
        AmountCents: amountCents,
        Approved:    true,
    }, nil
}

// Describe returns an audit label exposing only the IBAN tail.
func (b *BankTransfer) Describe() string {
    return fmt.Sprintf("bank transfer ••%s", lastFour(b.IBAN))
}

func ibanPlausible(iban string) bool {
    if len(iban) < 15 || len(iban) > 34 {
        return false
    }
    if iban[0] < 'A' || iban[0] > 'Z' || iban[1] < 'A' || iban[1] > 'Z' {
        return false
    }
    for i := 2; i < len(iban); i++ {
        ch := iban[i]
        if (ch < '0' || ch > '9') && (ch < 'A' || ch > 'Z') {
            return false
        }
    }
    return true
}
