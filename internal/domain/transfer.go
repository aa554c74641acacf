package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transfer represents a pending money movement between two accounts.
type Transfer struct {
	From           AccountID
	To             AccountID
	Amount         decimal.Decimal
	Currency       string
	IdempotencyKey string
	OccurredAt     time.Time
}

// Validate validates the transfer request.
func (t *Transfer) Validate() error {
	if t.From.Key() == t.To.Key() {
		return ErrSameAccount
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if t.Currency == "" {
		return ErrCurrencyMismatch
	}

	return nil
}

// Reference returns the idempotency reference both legs are hashed over:
// the caller's idempotency key when supplied, otherwise the transfer's
// natural key.
func (t *Transfer) Reference() string {
	if t.IdempotencyKey != "" {
		return t.IdempotencyKey
	}

	payload := strings.Join([]string{
		t.From.Key(),
		t.To.Key(),
		t.Amount.String(),
		t.Currency,
		t.OccurredAt.UTC().Format(time.RFC3339Nano),
	}, "|")

	sum := sha256.Sum256([]byte(payload))

	return hex.EncodeToString(sum[:])
}
