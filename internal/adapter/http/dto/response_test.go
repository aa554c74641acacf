package dto

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/olekh/ledgerd/internal/domain"
	"github.com/olekh/ledgerd/internal/usecase"
)

func TestEntryFromDomain(t *testing.T) {
	occurredAt := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	entry := &domain.Entry{
		ID:           "e-1",
		AccountKey:   "cust-a#checking",
		Customer:     "cust-a",
		Party:        domain.PartyFrom,
		Type:         domain.EntryTypeDebit,
		Amount:       decimal.NewFromInt(40),
		Currency:     "USD",
		BalanceAfter: decimal.NewFromInt(60),
		OccurredAt:   occurredAt,
		SequenceKey:  occurredAt.UnixMilli(),
		Status:       domain.StatusSuccess,
	}

	got := EntryFromDomain(entry)

	if got.ID != "e-1" || got.Account != "cust-a#checking" || got.Customer != "cust-a" {
		t.Fatalf("unexpected identity fields: %+v", got)
	}

	if got.Party != "from" || got.Type != "debit" || got.Status != domain.StatusSuccess {
		t.Fatalf("unexpected classification fields: %+v", got)
	}

	if !got.Amount.Equal(decimal.NewFromInt(40)) || !got.BalanceAfter.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("unexpected amounts: %+v", got)
	}

	if !got.OccurredAt.Equal(occurredAt) {
		t.Fatalf("unexpected occurred_at: %v", got.OccurredAt)
	}
}

func TestTransactionFromDomain(t *testing.T) {
	committed := &usecase.CommittedTransfer{
		Debit:  &domain.Entry{ID: "d-1", Amount: decimal.NewFromInt(10)},
		Credit: &domain.Entry{ID: "c-1", Amount: decimal.NewFromInt(10)},
	}

	got := TransactionFromDomain(committed)

	if got.Debit.ID != "d-1" || got.Credit.ID != "c-1" {
		t.Fatalf("unexpected legs: %+v", got)
	}
}

func TestTotalsFromUseCase(t *testing.T) {
	got := TotalsFromUseCase(usecase.Totals{
		TotalDebit:  decimal.NewFromInt(30),
		TotalCredit: decimal.NewFromInt(100),
		Balance:     decimal.NewFromInt(70),
	})

	if !got.TotalDebit.Equal(decimal.NewFromInt(30)) ||
		!got.TotalCredit.Equal(decimal.NewFromInt(100)) ||
		!got.Balance.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("unexpected totals: %+v", got)
	}
}

func TestBalancesFromDomain(t *testing.T) {
	asOf := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	got := BalancesFromDomain([]*domain.BalanceSnapshot{
		{
			Account:  domain.AccountID{Customer: "cust-a", Discriminator: "checking"},
			Currency: "USD",
			Balance:  decimal.NewFromInt(100),
			AsOf:     asOf,
		},
		{
			Account:  domain.AccountID{Customer: "cust-a", Discriminator: "savings"},
			Currency: "EUR",
			Balance:  decimal.Zero,
			Genesis:  true,
		},
	})

	if len(got) != 2 {
		t.Fatalf("expected 2 balances, got %d", len(got))
	}

	if got[0].Account != "cust-a#checking" || !got[0].AsOf.Equal(asOf) {
		t.Fatalf("unexpected first balance: %+v", got[0])
	}

	if !got[1].Genesis {
		t.Fatalf("expected genesis marker: %+v", got[1])
	}
}
