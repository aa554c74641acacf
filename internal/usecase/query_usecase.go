package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/olekh/ledgerd/internal/domain"
	"github.com/olekh/ledgerd/internal/infrastructure/metrics"
)

// QueryUseCase is the query and pagination engine: account/time-range
// lookups, cursor resolution and the bounded concurrent fan-out that
// feeds analytics.
type QueryUseCase struct {
	store      EntryStore
	resolver   *BalanceResolver
	logger     zerolog.Logger
	workers    int
	subTimeout time.Duration
	metrics    *metrics.Metrics
}

// NewQueryUseCase creates a new QueryUseCase. workers bounds the fan-out
// pool; subTimeout applies per sub-query.
func NewQueryUseCase(store EntryStore, resolver *BalanceResolver, logger zerolog.Logger, workers int, subTimeout time.Duration) *QueryUseCase {
	if workers <= 0 {
		workers = DefaultFanOutWorkers
	}

	if subTimeout <= 0 {
		subTimeout = 5 * time.Second
	}

	return &QueryUseCase{
		store:      store,
		resolver:   resolver,
		logger:     logger,
		workers:    workers,
		subTimeout: subTimeout,
	}
}

// WithMetrics attaches Prometheus instrumentation.
func (uc *QueryUseCase) WithMetrics(m *metrics.Metrics) *QueryUseCase {
	uc.metrics = m
	return uc
}

func (uc *QueryUseCase) countSubQuery(outcome string) {
	if uc.metrics != nil {
		uc.metrics.FanOutSubQueries.WithLabelValues(outcome).Inc()
	}
}

// ListEntriesInput represents input for listing one account's entries.
type ListEntriesInput struct {
	Account       domain.AccountID
	Start         *time.Time
	End           *time.Time
	Limit         int
	StartingAfter string
}

// ListEntries lists entries for one account ordered by sequence key
// descending, optionally bounded by an inclusive time window. An account
// with no entries at all is reported as domain.ErrAccountNotFound rather
// than an empty page. The cursor is a previously returned entry id; it is
// resolved through a point lookup to recover its (sequence key, id)
// position, which becomes the exclusive starting tuple for the next page.
func (uc *QueryUseCase) ListEntries(ctx context.Context, input ListEntriesInput) ([]*domain.Entry, error) {
	currencies, err := uc.store.Currencies(ctx, input.Account.Key())
	if err != nil {
		return nil, err
	}

	if len(currencies) == 0 {
		return nil, domain.ErrAccountNotFound
	}

	q := EntryQuery{
		AccountKey: input.Account.Key(),
		Limit:      clampLimit(input.Limit),
	}

	if input.Start != nil {
		q.StartSeq = input.Start.UnixMilli()
	}

	if input.End != nil {
		q.EndSeq = input.End.UnixMilli()
	}

	if input.StartingAfter != "" {
		cursor, err := uc.store.Get(ctx, q.AccountKey, input.StartingAfter)
		if err != nil {
			if errors.Is(err, domain.ErrEntryNotFound) {
				return nil, domain.ErrInvalidCursor
			}

			return nil, err
		}

		q.BeforeSeq = cursor.SequenceKey
		q.BeforeID = cursor.ID
	}

	return uc.store.Query(ctx, q)
}

// ListBalancesInput names either one account or a whole customer.
type ListBalancesInput struct {
	Account  *domain.AccountID
	Customer string
}

// ListBalances resolves one balance per currency the named account has
// ever used, or, given only a customer identity, the balances of every
// account known under that identity.
func (uc *QueryUseCase) ListBalances(ctx context.Context, input ListBalancesInput) ([]*domain.BalanceSnapshot, error) {
	if input.Account != nil {
		return uc.accountBalances(ctx, *input.Account)
	}

	keys, err := uc.store.AccountsByCustomer(ctx, input.Customer)
	if err != nil {
		return nil, err
	}

	if len(keys) == 0 {
		return nil, domain.ErrAccountNotFound
	}

	var snapshots []*domain.BalanceSnapshot
	for _, key := range keys {
		account, err := domain.ParseAccountKey(key)
		if err != nil {
			return nil, err
		}

		perAccount, err := uc.accountBalances(ctx, account)
		if err != nil {
			return nil, err
		}

		snapshots = append(snapshots, perAccount...)
	}

	return snapshots, nil
}

func (uc *QueryUseCase) accountBalances(ctx context.Context, account domain.AccountID) ([]*domain.BalanceSnapshot, error) {
	currencies, err := uc.store.Currencies(ctx, account.Key())
	if err != nil {
		return nil, err
	}

	if len(currencies) == 0 {
		return nil, domain.ErrAccountNotFound
	}

	snapshots := make([]*domain.BalanceSnapshot, 0, len(currencies))
	for _, currency := range currencies {
		snapshot, err := uc.resolver.Resolve(ctx, account, currency, true)
		if err != nil {
			return nil, err
		}

		snapshots = append(snapshots, snapshot)
	}

	return snapshots, nil
}

// ListEntriesForAccounts fans the same time-range query out across many
// accounts through a bounded worker pool, merges the results, sorts them
// by occurredAt descending and truncates to MaxMergedEntries. A slow or
// failed sub-query contributes no entries instead of failing the whole
// aggregation; cancellation of the parent request aborts all in-flight
// sub-queries and discards partial results.
func (uc *QueryUseCase) ListEntriesForAccounts(ctx context.Context, accounts []domain.AccountID, start, end *time.Time) ([]*domain.Entry, error) {
	accounts = dedupeAccounts(accounts)
	if len(accounts) > MaxFanOutAccounts {
		return nil, domain.ErrTooManyAccounts
	}

	if uc.metrics != nil {
		uc.metrics.FanOutAccounts.Observe(float64(len(accounts)))
	}

	q := EntryQuery{Limit: MaxMergedEntries}
	if start != nil {
		q.StartSeq = start.UnixMilli()
	}

	if end != nil {
		q.EndSeq = end.UnixMilli()
	}

	var (
		mu     sync.Mutex
		merged []*domain.Entry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.workers)

	for _, account := range accounts {
		sub := q
		sub.AccountKey = account.Key()

		g.Go(func() error {
			subCtx, cancel := context.WithTimeout(gctx, uc.subTimeout)
			defer cancel()

			entries, err := uc.store.Query(subCtx, sub)
			if err != nil {
				if gctx.Err() != nil {
					// Caller went away: abort the fan-out, discard partials.
					return gctx.Err()
				}

				uc.logger.Warn().Err(err).Str("account", sub.AccountKey).Msg("fan-out sub-query degraded to empty")
				uc.countSubQuery("degraded")

				return nil
			}

			uc.countSubQuery("ok")

			mu.Lock()
			merged = append(merged, entries...)
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// The merge step, not per-account completion order, determines output
	// order.
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].OccurredAt.After(merged[j].OccurredAt)
	})

	if len(merged) > MaxMergedEntries {
		merged = merged[:MaxMergedEntries]
	}

	return merged, nil
}

// Totals holds the full-partition debit/credit sums for one account.
type Totals struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Balance     decimal.Decimal
}

// ComputeTotals sums amounts by entry type over the whole partition. On
// backend failure it degrades to zeroed totals; read aggregates are
// lenient where the write path is strict.
func (uc *QueryUseCase) ComputeTotals(ctx context.Context, account domain.AccountID) Totals {
	totalDebit, totalCredit, err := uc.store.TotalsByType(ctx, account.Key())
	if err != nil {
		uc.logger.Warn().Err(err).Str("account", account.Key()).Msg("totals degraded to zero")

		return Totals{TotalDebit: decimal.Zero, TotalCredit: decimal.Zero, Balance: decimal.Zero}
	}

	return Totals{
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		Balance:     totalCredit.Sub(totalDebit),
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}

	if limit > MaxListLimit {
		return MaxListLimit
	}

	return limit
}

func dedupeAccounts(accounts []domain.AccountID) []domain.AccountID {
	seen := make(map[string]bool, len(accounts))

	var unique []domain.AccountID
	for _, account := range accounts {
		if !seen[account.Key()] {
			seen[account.Key()] = true
			unique = append(unique, account)
		}
	}

	return unique
}
