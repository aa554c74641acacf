package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/olekh/ledgerd/internal/domain"
)

func TestTransfer_Validate(t *testing.T) {
	from := domain.AccountID{Customer: "cust-1", Discriminator: "checking"}
	to := domain.AccountID{Customer: "cust-2", Discriminator: "checking"}

	tests := []struct {
		name     string
		transfer domain.Transfer
		wantErr  error
	}{
		{
			name:     "valid",
			transfer: domain.Transfer{From: from, To: to, Amount: decimal.NewFromInt(10), Currency: "USD"},
		},
		{
			name:     "same account",
			transfer: domain.Transfer{From: from, To: from, Amount: decimal.NewFromInt(10), Currency: "USD"},
			wantErr:  domain.ErrSameAccount,
		},
		{
			name:     "zero amount",
			transfer: domain.Transfer{From: from, To: to, Amount: decimal.Zero, Currency: "USD"},
			wantErr:  domain.ErrInvalidAmount,
		},
		{
			name:     "negative amount",
			transfer: domain.Transfer{From: from, To: to, Amount: decimal.NewFromInt(-5), Currency: "USD"},
			wantErr:  domain.ErrInvalidAmount,
		},
		{
			name:     "missing currency",
			transfer: domain.Transfer{From: from, To: to, Amount: decimal.NewFromInt(10)},
			wantErr:  domain.ErrCurrencyMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.transfer.Validate()
			if err != tt.wantErr {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestTransfer_Reference(t *testing.T) {
	at := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	transfer := domain.Transfer{
		From:       domain.AccountID{Customer: "cust-1", Discriminator: "checking"},
		To:         domain.AccountID{Customer: "cust-2", Discriminator: "checking"},
		Amount:     decimal.NewFromInt(40),
		Currency:   "USD",
		OccurredAt: at,
	}

	t.Run("idempotency key wins", func(t *testing.T) {
		withKey := transfer
		withKey.IdempotencyKey = "idem-1"

		if withKey.Reference() != "idem-1" {
			t.Errorf("expected idempotency key, got %s", withKey.Reference())
		}
	})

	t.Run("natural key is stable", func(t *testing.T) {
		if transfer.Reference() != transfer.Reference() {
			t.Error("natural key must be deterministic")
		}

		later := transfer
		later.OccurredAt = at.Add(time.Minute)

		if later.Reference() == transfer.Reference() {
			t.Error("natural key must change with occurredAt")
		}
	})
}

func TestParseAccountKey(t *testing.T) {
	account, err := domain.ParseAccountKey("cust-1#checking")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if account.Customer != "cust-1" || account.Discriminator != "checking" {
		t.Errorf("unexpected account: %+v", account)
	}

	for _, key := range []string{"", "cust-1", "cust-1#", "#checking"} {
		if _, err := domain.ParseAccountKey(key); err == nil {
			t.Errorf("expected error for %q", key)
		}
	}
}
