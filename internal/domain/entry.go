package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntryType marks which side of the double entry a record represents.
type EntryType string

const (
	EntryTypeDebit  EntryType = "debit"
	EntryTypeCredit EntryType = "credit"
)

// Party marks which party of the transfer the entry belongs to.
type Party string

const (
	PartyFrom Party = "from"
	PartyTo   Party = "to"
)

// StatusSuccess is the status marker carried by every committed entry.
const StatusSuccess = "success"

// Entry is a single immutable ledger record (one leg of a transfer).
// The ID is a pure function of the public fields, so resubmitting the
// same logical transfer produces the same ID and the store's conditional
// write rejects the duplicate.
type Entry struct {
	ID           string
	AccountKey   string
	Customer     string
	Party        Party
	Type         EntryType
	Amount       decimal.Decimal
	Currency     string
	BalanceAfter decimal.Decimal
	OccurredAt   time.Time
	SequenceKey  int64
	Status       string
}

// ComputeEntryID derives the content-addressed identifier for one leg.
// reference is the caller's idempotency key when supplied, otherwise the
// transfer's natural key.
func ComputeEntryID(accountKey string, party Party, entryType EntryType, amount decimal.Decimal, currency, reference string) string {
	payload := strings.Join([]string{
		accountKey,
		string(party),
		string(entryType),
		amount.String(),
		currency,
		reference,
	}, "|")

	sum := sha256.Sum256([]byte(payload))

	return hex.EncodeToString(sum[:])
}

// GenesisEntry synthesizes the zero-balance starting record for an account
// that has never transacted in the given currency. It is persisted only when
// included in the same atomic commit as the first real leg.
func GenesisEntry(account AccountID, currency string, occurredAt time.Time) *Entry {
	sum := sha256.Sum256([]byte(account.Key() + "|" + currency + "|genesis"))

	return &Entry{
		ID:           hex.EncodeToString(sum[:]),
		AccountKey:   account.Key(),
		Customer:     account.Customer,
		Party:        PartyTo,
		Type:         EntryTypeCredit,
		Amount:       decimal.Zero,
		Currency:     currency,
		BalanceAfter: decimal.Zero,
		OccurredAt:   occurredAt,
		SequenceKey:  occurredAt.UnixMilli(),
		Status:       StatusSuccess,
	}
}

// IsGenesis reports whether the entry is a zero-amount genesis seed.
func (e *Entry) IsGenesis() bool {
	return e.Amount.IsZero() && e.Type == EntryTypeCredit && e.BalanceAfter.IsZero()
}
