package handler

import (
	"context"
	"net/http"

	"github.com/olekh/ledgerd/internal/adapter/http/dto"
	"github.com/olekh/ledgerd/internal/domain"
	"github.com/olekh/ledgerd/internal/usecase"
)

// BalanceService is the contract the balance handler depends on.
type BalanceService interface {
	ListBalances(ctx context.Context, input usecase.ListBalancesInput) ([]*domain.BalanceSnapshot, error)
}

// BalanceHandler handles balance HTTP requests.
type BalanceHandler struct {
	service BalanceService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(service BalanceService) *BalanceHandler {
	return &BalanceHandler{service: service}
}

// List resolves balances for one account (per currency) or for every
// account of the caller's customer identity.
func (h *BalanceHandler) List(w http.ResponseWriter, r *http.Request) {
	input := usecase.ListBalancesInput{}

	if key := r.URL.Query().Get("account"); key != "" {
		account, err := domain.ParseAccountKey(key)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid account", err.Error())
			return
		}

		input.Account = &account
	} else {
		customer := customerIdentity(r)
		if customer == "" {
			writeError(w, http.StatusBadRequest, "missing account or customer parameter", "")
			return
		}

		input.Customer = customer
	}

	snapshots, err := h.service.ListBalances(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list balances", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListBalancesResponse{
		Balances: dto.BalancesFromDomain(snapshots),
	})
}
