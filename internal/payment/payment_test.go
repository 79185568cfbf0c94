package payment

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

// 4242424242424242 passes the Luhn checksum.
const goodCardNumber = "4242 4242 4242 4242"

func futureExpiry() (int, int) {
    t := time.Now().UTC().AddDate(1, 0, 0)
    return int(t.Month()), t.Year()
}

func TestCreditCardAuthorize(t *testing.T) {
    m, y := futureExpiry()
    card := NewCreditCard(goodCardNumber, "Dana Reyes", m, y, "123")
    require.NoError(t, card.Validate())

    auth, err := card.Authorize(context.Background(), 25000)
    require.NoError(t, err)
    assert.True(t, auth.Approved)
    assert.NotEmpty(t, auth.Reference)
    assert.Equal(t, uint32(25000), auth.AmountCents)
    assert.Equal(t, "credit card ••4242", card.Describe())
}

func TestCreditCardValidation(t *testing.T) {
    m, y := futureExpiry()
    cases := []struct {
        name string
        card *CreditCard
        want error
    }{
        {"bad checksum", NewCreditCard("4242424242424241", "Dana Reyes", m, y, "123"), ErrCardNumberInvalid},
        {"missing holder", NewCreditCard(goodCardNumber, "", m, y, "123"), ErrCardHolderMissing},
        {"bad cvv", NewCreditCard(goodCardNumber, "Dana Reyes", m, y, "12"), ErrCardCVVInvalid},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            assert.ErrorIs(t, tc.card.Validate(), tc.want)
        })
    }
}

func TestCreditCardExpiryDecline(t *testing.T) {
    card := NewCreditCard(goodCardNumber, "Dana Reyes", 1, 2020, "123")
    card.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }
    require.ErrorIs(t, card.Validate(), ErrCardExpired)

    auth, err := card.Authorize(context.Background(), 1000)
    require.NoError(t, err)
    assert.False(t, auth.Approved)
    assert.Equal(t, ErrCardExpired.Error(), auth.DeclineReason)
}

func TestCardValidThroughExpiryMonth(t *testing.T) {
    card := NewCreditCard(goodCardNumber, "Dana Reyes", 6, 2026, "123")
    card.now = func() time.Time { return time.Date(2026, 6, 30, 23, 0, 0, 0, time.UTC) }
    assert.NoError(t, card.Validate())

    card.now = func() time.Time { return time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC) }
    assert.ErrorIs(t, card.Validate(), ErrCardExpired)
}

func TestDebitCardRequiresBankCode(t *testing.T) {
    m, y := futureExpiry()
    card := NewDebitCard(goodCardNumber, "Dana Reyes", m, y, "123", "")
    assert.ErrorIs(t, card.Validate(), ErrBankCodeMissing)

    card = NewDebitCard(goodCardNumber, "Dana Reyes", m, y, "123", "avbk")
    require.NoError(t, card.Validate())
    assert.Equal(t, "debit card ••4242 (AVBK)", card.Describe())
}

func TestWalletDeclinesOverBalance(t *testing.T) {
    w := NewWallet("w-100", 5000)

    auth, err := w.Authorize(context.Background(), 5001)
    require.NoError(t, err)
    assert.False(t, auth.Approved)
    assert.Equal(t, "insufficient wallet balance", auth.DeclineReason)

    auth, err = w.Authorize(context.Background(), 5000)
    require.NoError(t, err)
    assert.True(t, auth.Approved)
}

func TestBankTransferValidation(t *testing.T) {
    bt := NewBankTransfer("de89 3704 0044 0532 0130 00", "Dana Reyes")
    require.NoError(t, bt.Validate())
    assert.Equal(t, "bank transfer ••3000", bt.Describe())

    assert.ErrorIs(t, NewBankTransfer("X", "Dana Reyes").Validate(), ErrIBANInvalid)
    assert.ErrorIs(t, NewBankTransfer("DE89370400440532013000", "").Validate(), ErrAccountNameNeeded)
}

func TestAuthorizeHonoursCancelledContext(t *testing.T) {
    ctx, cancel := context.WithCancel(context.Background())
    cancel()

    m, y := futureExpiry()
    _, err := NewCreditCard(goodCardNumber, "Dana Reyes", m, y, "123").Authorize(ctx, 100)
    assert.ErrorIs(t, err, context.Canceled)
}
