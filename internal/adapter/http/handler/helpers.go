package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/olekh/ledgerd/internal/adapter/http/dto"
	"github.com/olekh/ledgerd/internal/adapter/http/middleware"
	"github.com/olekh/ledgerd/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrSameAccount),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrCurrencyMismatch),
		errors.Is(err, domain.ErrInvalidAccountKey),
		errors.Is(err, domain.ErrInvalidCursor),
		errors.Is(err, domain.ErrInvalidPeriod),
		errors.Is(err, domain.ErrTooManyAccounts),
		errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrStorageConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// timeLayouts accepted for window bounds.
var timeLayouts = []string{time.RFC3339, "2006-01-02"}

// parseTimeQuery reads a time bound from either snake_case or camelCase
// query parameter spelling.
func parseTimeQuery(r *http.Request, snake, camel string) (*time.Time, error) {
	val := r.URL.Query().Get(snake)
	if val == "" {
		val = r.URL.Query().Get(camel)
	}
	if val == "" {
		return nil, nil
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, val); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}

	return nil, errors.New("invalid time value: " + val)
}

// parseWindow reads the optional start/end bounds of a time window.
func parseWindow(r *http.Request) (start, end *time.Time, err error) {
	start, err = parseTimeQuery(r, "start_date", "startDate")
	if err != nil {
		return nil, nil, err
	}

	end, err = parseTimeQuery(r, "end_date", "endDate")
	if err != nil {
		return nil, nil, err
	}

	return start, end, nil
}

// parseAccounts reads the account query parameter, a single key or a
// comma-separated list.
func parseAccounts(r *http.Request) ([]domain.AccountID, error) {
	raw := r.URL.Query().Get("account")
	if raw == "" {
		return nil, nil
	}

	var accounts []domain.AccountID
	for _, key := range strings.Split(raw, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}

		account, err := domain.ParseAccountKey(key)
		if err != nil {
			return nil, err
		}

		accounts = append(accounts, account)
	}

	return accounts, nil
}

// customerIdentity resolves the caller's customer identity: the
// authenticated claim when auth is enabled, otherwise the trusted
// customer query parameter.
func customerIdentity(r *http.Request) string {
	if customer, ok := middleware.CustomerFromContext(r.Context()); ok {
		return customer
	}

	return r.URL.Query().Get("customer")
}
