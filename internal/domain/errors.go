package domain

import "errors"

var (
	// Validation errors
	ErrSameAccount       = errors.New("cannot transfer to same account")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrCurrencyMismatch  = errors.New("cannot transfer between different currencies")
	ErrInvalidAccountKey = errors.New("malformed account key")
	ErrInvalidCursor     = errors.New("unknown pagination cursor")
	ErrInvalidPeriod     = errors.New("period must be daily, weekly or monthly")
	ErrTooManyAccounts   = errors.New("account list exceeds fan-out limit")

	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrEntryNotFound     = errors.New("entry not found")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")

	// Storage errors. Conflict means an entry with the same id already
	// exists (duplicate submission or lost race) and must not be retried
	// with the same inputs. Unavailable is transient and retryable.
	ErrStorageConflict    = errors.New("storage conflict: entry already exists")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
