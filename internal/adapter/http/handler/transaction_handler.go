package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olekh/ledgerd/internal/adapter/http/dto"
	"github.com/olekh/ledgerd/internal/adapter/http/middleware"
	"github.com/olekh/ledgerd/internal/domain"
	"github.com/olekh/ledgerd/internal/usecase"
)

// TransactionService is the write-side contract the handler depends on.
type TransactionService interface {
	CreateTransfer(ctx context.Context, input usecase.CreateTransferInput) (*usecase.CommittedTransfer, error)
	GetEntry(ctx context.Context, customer, id string) (*domain.Entry, error)
}

// TransactionQueryService is the read-side contract the handler depends on.
type TransactionQueryService interface {
	ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.Entry, error)
	ListEntriesForAccounts(ctx context.Context, accounts []domain.AccountID, start, end *time.Time) ([]*domain.Entry, error)
	ComputeTotals(ctx context.Context, account domain.AccountID) usecase.Totals
}

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	service TransactionService
	query   TransactionQueryService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(service TransactionService, query TransactionQueryService) *TransactionHandler {
	return &TransactionHandler{service: service, query: query}
}

// Create records a new transfer as a debit/credit entry pair.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(r.Header.Get(middleware.IdempotencyKeyHeader))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	committed, err := h.service.CreateTransfer(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(committed))
}

// List lists entries for one account (with totals) or fans out across a
// comma-separated account list.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := parseAccounts(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account", err.Error())
		return
	}

	if len(accounts) == 0 {
		writeError(w, http.StatusBadRequest, "missing account parameter", "")
		return
	}

	start, end, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid time window", err.Error())
		return
	}

	if len(accounts) > 1 {
		entries, err := h.query.ListEntriesForAccounts(r.Context(), accounts, start, end)
		if err != nil {
			writeError(w, mapDomainError(err), "failed to list transactions", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
			Transactions: dto.EntriesFromDomain(entries),
		})

		return
	}

	account := accounts[0]
	entries, err := h.query.ListEntries(r.Context(), usecase.ListEntriesInput{
		Account:       account,
		Start:         start,
		End:           end,
		Limit:         parseIntQuery(r, "limit", 0),
		StartingAfter: r.URL.Query().Get("starting_after"),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transactions", err.Error())
		return
	}

	totals := dto.TotalsFromUseCase(h.query.ComputeTotals(r.Context(), account))

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.EntriesFromDomain(entries),
		Totals:       totals,
	})
}

// Get retrieves a single entry by id, scoped to the caller identity.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	customer := customerIdentity(r)
	if customer == "" {
		writeError(w, http.StatusUnauthorized, "missing caller identity", "")
		return
	}

	entry, err := h.service.GetEntry(r.Context(), customer, id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}
