package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/olekh/ledgerd/internal/domain"
	"github.com/olekh/ledgerd/internal/usecase"
)

// EntryResponse represents one ledger entry in API responses.
type EntryResponse struct {
	ID           string          `json:"id"`
	Account      string          `json:"account"`
	Customer     string          `json:"customer"`
	Party        string          `json:"party"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Status       string          `json:"status"`
}

// EntryFromDomain converts a domain entry to a response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:           e.ID,
		Account:      e.AccountKey,
		Customer:     e.Customer,
		Party:        string(e.Party),
		Type:         string(e.Type),
		Amount:       e.Amount,
		Currency:     e.Currency,
		BalanceAfter: e.BalanceAfter,
		OccurredAt:   e.OccurredAt,
		Status:       e.Status,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// TransactionResponse carries both public legs of a committed transfer.
type TransactionResponse struct {
	Debit  *EntryResponse `json:"debit"`
	Credit *EntryResponse `json:"credit"`
}

// TransactionFromDomain converts a committed transfer to a response.
func TransactionFromDomain(t *usecase.CommittedTransfer) *TransactionResponse {
	return &TransactionResponse{
		Debit:  EntryFromDomain(t.Debit),
		Credit: EntryFromDomain(t.Credit),
	}
}

// TotalsResponse holds an account's full-history debit/credit sums.
type TotalsResponse struct {
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// TotalsFromUseCase converts totals to a response.
func TotalsFromUseCase(t usecase.Totals) *TotalsResponse {
	return &TotalsResponse{
		TotalDebit:  t.TotalDebit,
		TotalCredit: t.TotalCredit,
		Balance:     t.Balance,
	}
}

// ListTransactionsResponse is the list envelope. Totals is present only
// when a single account was queried.
type ListTransactionsResponse struct {
	Transactions []*EntryResponse `json:"transactions"`
	Totals       *TotalsResponse  `json:"totals,omitempty"`
}

// BalanceResponse represents one balance snapshot.
type BalanceResponse struct {
	Account  string          `json:"account"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
	AsOf     time.Time       `json:"as_of"`
	Genesis  bool            `json:"genesis,omitempty"`
}

// BalanceFromDomain converts a balance snapshot to a response.
func BalanceFromDomain(s *domain.BalanceSnapshot) *BalanceResponse {
	return &BalanceResponse{
		Account:  s.Account.Key(),
		Currency: s.Currency,
		Balance:  s.Balance,
		AsOf:     s.AsOf,
		Genesis:  s.Genesis,
	}
}

// BalancesFromDomain converts balance snapshots to responses.
func BalancesFromDomain(snapshots []*domain.BalanceSnapshot) []*BalanceResponse {
	result := make([]*BalanceResponse, len(snapshots))
	for i, s := range snapshots {
		result[i] = BalanceFromDomain(s)
	}
	return result
}

// ListBalancesResponse is the balances envelope.
type ListBalancesResponse struct {
	Balances []*BalanceResponse `json:"balances"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
