package payment

import (
    "context"
    "errors"
    "fmt"
    "strings"

    "github.com/google/uuid"
)

// Wallet-validation errors.
var (
    ErrWalletIDMissing = errors.New("wallet id is required")
)

// Wallet authorizes against a prepaid wallet balance.  It is the one
// strategy with a genuine decline path independent of field syntax:
// an amount exceeding the balance is declined, never retried.
type Wallet struct {
    WalletID     string
    BalanceCents uint32
}

// NewWallet builds a wallet strategy for the given wallet and balance
// snapshot.
func NewWallet(walletID string, balanceCents uint32) *Wallet {
    return &Wallet{WalletID: strings.TrimSpace(walletID), BalanceCents: balanceCents}
}

// Validate checks that the wallet is identified.
func (w *Wallet) Validate() error {
    if w.WalletID == "" {
        return ErrWalletIDMissing
    }
    return nil
}

// Authorize approves the amount when the balance covers it and
// declines otherwise.
func (w *Wallet) Authorize(ctx context.Context, amountCents uint32) (*Authorization, error) {
    if err := ctx.Err(); err != nil {
        return nil, err
    }
    if err := w.Validate(); err != nil {
        return &Authorization{AmountCents: amountCents, DeclineReason: err.Error()}, nil
    }
    if amountCents > w.BalanceCents {
        return &Authorization{
            AmountCents:   amountCents,
            DeclineReason: "insufficient wallet balance",
        }, nil
    }
    return &Authorization{
        Reference:   uuid.NewString(),
        AmountCents: amountCents,
        Approved:    true,
    }, nil
}

// Describe returns an audit label for the wallet.
func (w *Wallet) Describe() string {
    return fmt.Sprintf("wallet %s", w.WalletID)
}
