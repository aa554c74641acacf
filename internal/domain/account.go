package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// accountKeySeparator joins the customer public identity and the account
// discriminator into the partition key addressing one account's entries.
const accountKeySeparator = "#"

// AccountID is the derived identity of an account. Accounts are not stored
// as their own entity; the composite key addresses the partition holding
// all of the account's entries.
type AccountID struct {
	Customer      string
	Discriminator string
}

// Key returns the partition key for the account.
func (a AccountID) Key() string {
	return a.Customer + accountKeySeparator + a.Discriminator
}

// IsZero reports whether the identity is empty.
func (a AccountID) IsZero() bool {
	return a.Customer == "" && a.Discriminator == ""
}

// ParseAccountKey splits a partition key back into an AccountID.
func ParseAccountKey(key string) (AccountID, error) {
	customer, discriminator, ok := strings.Cut(key, accountKeySeparator)
	if !ok || customer == "" || discriminator == "" {
		return AccountID{}, ErrInvalidAccountKey
	}

	return AccountID{Customer: customer, Discriminator: discriminator}, nil
}

// BalanceSnapshot is an account's balance as derived from its most recent
// ledger entry. Genesis is true when the account has no persisted entries
// yet and the snapshot was synthesized in memory.
type BalanceSnapshot struct {
	Account  AccountID
	Currency string
	Balance  decimal.Decimal
	AsOf     time.Time
	Genesis  bool
}
