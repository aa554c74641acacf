package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/olekh/ledgerd/internal/domain"
)

// EntryQuery bounds a range query over one account partition. Results are
// ordered by sequence key descending with id descending as the tiebreak.
// Zero bounds are unbounded; BeforeSeq/BeforeID form the exclusive
// (sequence_key, id) tuple used to resume after a pagination cursor, so
// entries sharing the cursor's sequence key are not skipped.
type EntryQuery struct {
	AccountKey string
	StartSeq   int64
	EndSeq     int64
	BeforeSeq  int64
	BeforeID   string
	Limit      int
}

// EntryStore is the ledger store adapter contract: point lookups by
// partition and sort key, range queries over the sequence index, and an
// atomic multi-item conditional write. Implementations report duplicate
// ids as domain.ErrStorageConflict and backend outages as
// domain.ErrStorageUnavailable.
type EntryStore interface {
	// Put writes all entries as one all-or-nothing conditional write.
	// Each entry's condition is that no entry with the same id exists in
	// its account partition.
	Put(ctx context.Context, entries []*domain.Entry) error
	// Get performs a point lookup by partition and sort key.
	Get(ctx context.Context, accountKey, id string) (*domain.Entry, error)
	// GetByCustomer performs a point lookup by id across all accounts of
	// one customer.
	GetByCustomer(ctx context.Context, customer, id string) (*domain.Entry, error)
	// Latest returns the most recent entry for the account by sequence
	// key, optionally scoped to one currency. Returns
	// domain.ErrEntryNotFound when the partition is empty.
	Latest(ctx context.Context, accountKey, currency string) (*domain.Entry, error)
	// Query runs a bounded range query over one account partition.
	Query(ctx context.Context, q EntryQuery) ([]*domain.Entry, error)
	// HasCredit reports whether the account ever appeared as a transfer
	// destination in the given currency (the genesis marker path).
	HasCredit(ctx context.Context, accountKey, currency string) (bool, error)
	// Currencies lists the currencies an account has ever transacted in.
	Currencies(ctx context.Context, accountKey string) ([]string, error)
	// AccountsByCustomer lists all account partition keys known for a
	// customer identity.
	AccountsByCustomer(ctx context.Context, customer string) ([]string, error)
	// TotalsByType sums entry amounts per entry type over the whole
	// account partition.
	TotalsByType(ctx context.Context, accountKey string) (totalDebit, totalCredit decimal.Decimal, err error)
}

// EventPublisher emits committed-transfer events to the outbound
// telemetry collaborator.
type EventPublisher interface {
	Publish(ctx context.Context, event *domain.Event) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage for the HTTP layer.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock implementation.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }
