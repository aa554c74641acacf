package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/olekh/ledgerd/internal/domain"
	"github.com/olekh/ledgerd/internal/usecase"
)

const entryColumns = `id, account_key, customer, party, entry_type, amount::text, currency, balance_after::text, occurred_at, sequence_key, status`

// EntryStore implements usecase.EntryStore on PostgreSQL. The table layout
// mirrors the document-store contract: (account_key, id) is the
// partition/sort key pair and sequence_key carries the chronological
// secondary index.
type EntryStore struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

// NewEntryStore creates a new EntryStore.
func NewEntryStore(pool *pgxpool.Pool) *EntryStore {
	return &EntryStore{
		pool:    pool,
		retrier: NewRetrier(),
	}
}

// Put writes all entries in one transaction. Every insert is conditional
// on the (account_key, id) pair being absent; a single collision rolls the
// whole batch back and surfaces domain.ErrStorageConflict.
func (s *EntryStore) Put(ctx context.Context, entries []*domain.Entry) error {
	return s.retrier.Retry(ctx, func() error {
		return s.put(ctx, entries)
	})
}

func (s *EntryStore) put(ctx context.Context, entries []*domain.Entry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return mapStoreError(err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, entry := range entries {
		batch.Queue(`
			INSERT INTO entries (id, account_key, customer, party, entry_type, amount, currency, balance_after, occurred_at, sequence_key, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (account_key, id) DO NOTHING`,
			entry.ID,
			entry.AccountKey,
			entry.Customer,
			string(entry.Party),
			string(entry.Type),
			entry.Amount.String(),
			entry.Currency,
			entry.BalanceAfter.String(),
			entry.OccurredAt,
			entry.SequenceKey,
			entry.Status,
		)
	}

	results := tx.SendBatch(ctx, batch)

	conflict := false
	for range entries {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return mapStoreError(err)
		}

		if tag.RowsAffected() == 0 {
			conflict = true
		}
	}

	if err := results.Close(); err != nil {
		return mapStoreError(err)
	}

	if conflict {
		return domain.ErrStorageConflict
	}

	if err := tx.Commit(ctx); err != nil {
		return mapStoreError(err)
	}

	return nil
}

// Get performs a point lookup by partition and sort key.
func (s *EntryStore) Get(ctx context.Context, accountKey, id string) (*domain.Entry, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE account_key = $1 AND id = $2`,
		accountKey, id)

	return scanEntry(row)
}

// GetByCustomer performs a point lookup by id across one customer's
// accounts via the customer index.
func (s *EntryStore) GetByCustomer(ctx context.Context, customer, id string) (*domain.Entry, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE customer = $1 AND id = $2 LIMIT 1`,
		customer, id)

	return scanEntry(row)
}

// Latest returns the most recent entry by sequence key, optionally scoped
// to one currency.
func (s *EntryStore) Latest(ctx context.Context, accountKey, currency string) (*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE account_key = $1`
	args := []any{accountKey}

	if currency != "" {
		query += ` AND currency = $2`
		args = append(args, currency)
	}

	query += ` ORDER BY sequence_key DESC LIMIT 1`

	return scanEntry(s.pool.QueryRow(ctx, query, args...))
}

// Query runs a bounded range query over one account partition, ordered by
// sequence key descending.
func (s *EntryStore) Query(ctx context.Context, q usecase.EntryQuery) ([]*domain.Entry, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + entryColumns + ` FROM entries WHERE account_key = $1`)

	args := []any{q.AccountKey}
	if q.StartSeq != 0 {
		args = append(args, q.StartSeq)
		sb.WriteString(` AND sequence_key >= $` + strconv.Itoa(len(args)))
	}

	if q.EndSeq != 0 {
		args = append(args, q.EndSeq)
		sb.WriteString(` AND sequence_key <= $` + strconv.Itoa(len(args)))
	}

	if q.BeforeSeq != 0 {
		args = append(args, q.BeforeSeq)
		seqArg := strconv.Itoa(len(args))

		if q.BeforeID != "" {
			// Resume strictly after the (sequence_key, id) cursor tuple so
			// entries that share the cursor's sequence key still page out.
			args = append(args, q.BeforeID)
			sb.WriteString(` AND (sequence_key < $` + seqArg +
				` OR (sequence_key = $` + seqArg + ` AND id < $` + strconv.Itoa(len(args)) + `))`)
		} else {
			sb.WriteString(` AND sequence_key < $` + seqArg)
		}
	}

	sb.WriteString(` ORDER BY sequence_key DESC, id DESC`)

	if q.Limit > 0 {
		args = append(args, q.Limit)
		sb.WriteString(` LIMIT $` + strconv.Itoa(len(args)))
	}

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, mapStoreError(err)
	}
	defer rows.Close()

	var entries []*domain.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, mapStoreError(err)
	}

	return entries, nil
}

// HasCredit implements the genesis marker path: has the account ever been
// a transfer destination in this currency.
func (s *EntryStore) HasCredit(ctx context.Context, accountKey, currency string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM entries WHERE account_key = $1 AND currency = $2 AND entry_type = 'credit')`,
		accountKey, currency).Scan(&exists)
	if err != nil {
		return false, mapStoreError(err)
	}

	return exists, nil
}

// Currencies lists the currencies the account has transacted in.
func (s *EntryStore) Currencies(ctx context.Context, accountKey string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT currency FROM entries WHERE account_key = $1 ORDER BY currency`,
		accountKey)
	if err != nil {
		return nil, mapStoreError(err)
	}
	defer rows.Close()

	var currencies []string
	for rows.Next() {
		var currency string
		if err := rows.Scan(&currency); err != nil {
			return nil, mapStoreError(err)
		}

		currencies = append(currencies, currency)
	}

	return currencies, mapStoreError(rows.Err())
}

// AccountsByCustomer lists the partition keys known for one customer.
func (s *EntryStore) AccountsByCustomer(ctx context.Context, customer string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT account_key FROM entries WHERE customer = $1 ORDER BY account_key`,
		customer)
	if err != nil {
		return nil, mapStoreError(err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, mapStoreError(err)
		}

		keys = append(keys, key)
	}

	return keys, mapStoreError(rows.Err())
}

// TotalsByType sums entry amounts per type over the whole partition.
func (s *EntryStore) TotalsByType(ctx context.Context, accountKey string) (decimal.Decimal, decimal.Decimal, error) {
	var totalDebit, totalCredit string
	err := s.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE entry_type = 'debit'), 0)::text,
			COALESCE(SUM(amount) FILTER (WHERE entry_type = 'credit'), 0)::text
		FROM entries WHERE account_key = $1`,
		accountKey).Scan(&totalDebit, &totalCredit)
	if err != nil {
		return decimal.Zero, decimal.Zero, mapStoreError(err)
	}

	debit, err := decimal.NewFromString(totalDebit)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("parse debit total: %w", err)
	}

	credit, err := decimal.NewFromString(totalCredit)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("parse credit total: %w", err)
	}

	return debit, credit, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*domain.Entry, error) {
	var (
		entry                   domain.Entry
		party, entryType        string
		amountText, balanceText string
		occurredAt              time.Time
	)

	err := row.Scan(
		&entry.ID,
		&entry.AccountKey,
		&entry.Customer,
		&party,
		&entryType,
		&amountText,
		&entry.Currency,
		&balanceText,
		&occurredAt,
		&entry.SequenceKey,
		&entry.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, mapStoreError(err)
	}

	entry.Party = domain.Party(party)
	entry.Type = domain.EntryType(entryType)
	entry.OccurredAt = occurredAt.UTC()

	if entry.Amount, err = decimal.NewFromString(amountText); err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}

	if entry.BalanceAfter, err = decimal.NewFromString(balanceText); err != nil {
		return nil, fmt.Errorf("parse balance: %w", err)
	}

	return &entry, nil
}
