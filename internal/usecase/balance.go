package usecase

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/olekh/ledgerd/internal/domain"
)

// BalanceResolver derives an account's current balance from the ledger
// itself: the balanceAfter of the most recent entry is the balance. There
// is no separately mutable balance row anywhere.
type BalanceResolver struct {
	store EntryStore
}

// NewBalanceResolver creates a new BalanceResolver.
func NewBalanceResolver(store EntryStore) *BalanceResolver {
	return &BalanceResolver{store: store}
}

// Resolve returns the account's current balance in the given currency.
//
// The lookup order follows the ledger contract: most recent entry by
// sequence key first, then the genesis marker path (has the account ever
// been a transfer destination in this currency), and finally a synthesized
// zero-balance snapshot. The synthesized snapshot is flagged Genesis and
// becomes a real entry only when included in a subsequent atomic commit.
// When requireExisting is set and no history exists, Resolve fails with
// domain.ErrAccountNotFound: a debit origin must already exist.
func (r *BalanceResolver) Resolve(ctx context.Context, account domain.AccountID, currency string, requireExisting bool) (*domain.BalanceSnapshot, error) {
	latest, err := r.store.Latest(ctx, account.Key(), currency)
	switch {
	case err == nil:
		return &domain.BalanceSnapshot{
			Account:  account,
			Currency: currency,
			Balance:  latest.BalanceAfter,
			AsOf:     latest.OccurredAt,
		}, nil
	case !errors.Is(err, domain.ErrEntryNotFound):
		return nil, err
	}

	seeded, err := r.store.HasCredit(ctx, account.Key(), currency)
	if err != nil {
		return nil, err
	}

	if seeded {
		return &domain.BalanceSnapshot{
			Account:  account,
			Currency: currency,
			Balance:  decimal.Zero,
		}, nil
	}

	if requireExisting {
		return nil, domain.ErrAccountNotFound
	}

	return &domain.BalanceSnapshot{
		Account:  account,
		Currency: currency,
		Balance:  decimal.Zero,
		Genesis:  true,
	}, nil
}
