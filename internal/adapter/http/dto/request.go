package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/olekh/ledgerd/internal/domain"
	"github.com/olekh/ledgerd/internal/usecase"
)

// CreateTransactionRequest represents a request to record a transfer.
// Accounts are addressed by their full key, customer identity plus
// account discriminator.
type CreateTransactionRequest struct {
	FromAccount string     `json:"from_account"`
	ToAccount   string     `json:"to_account"`
	Amount      string     `json:"amount"`
	Currency    string     `json:"currency"`
	OccurredAt  *time.Time `json:"occurred_at,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransactionRequest) ToUseCaseInput(idempotencyKey string) (usecase.CreateTransferInput, error) {
	from, err := domain.ParseAccountKey(r.FromAccount)
	if err != nil {
		return usecase.CreateTransferInput{}, fmt.Errorf("from_account: %w", err)
	}

	to, err := domain.ParseAccountKey(r.ToAccount)
	if err != nil {
		return usecase.CreateTransferInput{}, fmt.Errorf("to_account: %w", err)
	}

	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return usecase.CreateTransferInput{}, fmt.Errorf("amount: %w", err)
	}

	return usecase.CreateTransferInput{
		From:           from,
		To:             to,
		Amount:         amount,
		Currency:       r.Currency,
		IdempotencyKey: idempotencyKey,
		OccurredAt:     r.OccurredAt,
	}, nil
}
