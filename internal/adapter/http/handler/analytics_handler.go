package handler

import (
	"context"
	"net/http"

	"github.com/olekh/ledgerd/internal/domain"
	"github.com/olekh/ledgerd/internal/usecase"
)

// AnalyticsService is the contract the analytics handler depends on.
type AnalyticsService interface {
	Stats(ctx context.Context, input usecase.StatsInput) (*usecase.StatsReport, error)
	Trends(ctx context.Context, input usecase.TrendsInput) (*usecase.TrendsReport, error)
}

// AnalyticsHandler handles stats and trends HTTP requests.
type AnalyticsHandler struct {
	service AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(service AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// Stats aggregates stats over the requested accounts and window.
func (h *AnalyticsHandler) Stats(w http.ResponseWriter, r *http.Request) {
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

	report, err := h.service.Stats(r.Context(), usecase.StatsInput{
		Accounts: accounts,
		Start:    start,
		End:      end,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute stats", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Trends returns the period-bucketed volume series, or the inflow/outflow
// variant with ?kind=flow.
func (h *AnalyticsHandler) Trends(w http.ResponseWriter, r *http.Request) {
	accounts, err := parseAccounts(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account", err.Error())
		return
	}

	if len(accounts) == 0 {
		writeError(w, http.StatusBadRequest, "missing account parameter", "")
		return
	}

	period, err := domain.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid period", err.Error())
		return
	}

	start, end, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid time window", err.Error())
		return
	}

	report, err := h.service.Trends(r.Context(), usecase.TrendsInput{
		Accounts: accounts,
		Start:    start,
		End:      end,
		Period:   period,
		Flow:     r.URL.Query().Get("kind") == "flow",
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute trends", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}
