package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/olekh/ledgerd/internal/domain"
)

// mapStoreError translates low-level pgx failures into the domain error
// taxonomy. Connection-class failures, timeouts and unreachable backends
// become domain.ErrStorageUnavailable so callers can decide to retry;
// everything else passes through untouched.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, domain.ErrStorageConflict) || errors.Is(err, domain.ErrEntryNotFound) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08: connection exceptions. Class 57: operator intervention
		// (shutdown, crash). Class 53: insufficient resources.
		if len(pgErr.Code) >= 2 {
			switch pgErr.Code[:2] {
			case "08", "57", "53":
				return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
			}
		}
		return err
	}

	if errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	return err
}
