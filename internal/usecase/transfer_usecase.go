package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/olekh/ledgerd/internal/domain"
	"github.com/olekh/ledgerd/internal/infrastructure/metrics"
)

// TransferUseCase records a money movement as one debit leg and one credit
// leg written atomically. The store's conditional write is the only
// serialization point: the advisory funds check here can race, and the
// loser of a race surfaces domain.ErrStorageConflict from the commit.
type TransferUseCase struct {
	store     EntryStore
	resolver  *BalanceResolver
	publisher EventPublisher
	clock     Clock
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(store EntryStore, resolver *BalanceResolver, publisher EventPublisher, clock Clock, logger zerolog.Logger) *TransferUseCase {
	if clock == nil {
		clock = SystemClock{}
	}

	return &TransferUseCase{
		store:     store,
		resolver:  resolver,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}
}

// WithMetrics attaches Prometheus instrumentation.
func (uc *TransferUseCase) WithMetrics(m *metrics.Metrics) *TransferUseCase {
	uc.metrics = m
	return uc
}

// CreateTransferInput represents input for recording a transfer.
type CreateTransferInput struct {
	From           domain.AccountID
	To             domain.AccountID
	Amount         decimal.Decimal
	Currency       string
	IdempotencyKey string
	OccurredAt     *time.Time
}

// CommittedTransfer holds both persisted legs of a committed transfer.
type CommittedTransfer struct {
	Debit  *domain.Entry
	Credit *domain.Entry
}

// CreateTransfer resolves both balances, builds the debit and credit legs
// and commits them (plus any genesis seed entries) as one all-or-nothing
// conditional write.
func (uc *TransferUseCase) CreateTransfer(ctx context.Context, input CreateTransferInput) (*CommittedTransfer, error) {
	start := time.Now()

	committed, err := uc.create(ctx, input)
	if uc.metrics != nil {
		if err != nil {
			uc.metrics.TransferErrors.WithLabelValues(transferErrorType(err)).Inc()
		} else {
			uc.metrics.TransfersCreated.Inc()
			uc.metrics.TransferDuration.Observe(time.Since(start).Seconds())
		}
	}

	return committed, err
}

func (uc *TransferUseCase) create(ctx context.Context, input CreateTransferInput) (*CommittedTransfer, error) {
	occurredAt := uc.clock.Now()
	if input.OccurredAt != nil {
		occurredAt = input.OccurredAt.UTC()
	}

	transfer := &domain.Transfer{
		From:           input.From,
		To:             input.To,
		Amount:         input.Amount,
		Currency:       input.Currency,
		IdempotencyKey: input.IdempotencyKey,
		OccurredAt:     occurredAt,
	}

	if err := transfer.Validate(); err != nil {
		return nil, err
	}

	// The debit origin must already exist; only the destination may be
	// bootstrapped from a genesis snapshot.
	fromBalance, err := uc.resolver.Resolve(ctx, transfer.From, transfer.Currency, true)
	if err != nil {
		return nil, err
	}

	toBalance, err := uc.resolver.Resolve(ctx, transfer.To, transfer.Currency, false)
	if err != nil {
		return nil, err
	}

	debit, credit, err := uc.BuildLegs(transfer, fromBalance, toBalance)
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.Entry, 0, 3)
	if toBalance.Genesis {
		// Seed the destination just before its first credit so the credit
		// leg stays the most recent entry by sequence key.
		entries = append(entries, domain.GenesisEntry(transfer.To, transfer.Currency, occurredAt.Add(-time.Millisecond)))
	}

	entries = append(entries, debit, credit)

	if err := uc.store.Put(ctx, entries); err != nil {
		return nil, err
	}

	uc.publishCommitted(ctx, transfer, debit, credit)

	return &CommittedTransfer{Debit: debit, Credit: credit}, nil
}

// BuildLegs produces the two immutable ledger records for a transfer.
// Both legs share the transfer amount, currency and timestamp pair so they
// remain correlatable, and each id is a deterministic hash of the leg's
// public fields.
func (uc *TransferUseCase) BuildLegs(transfer *domain.Transfer, fromBalance, toBalance *domain.BalanceSnapshot) (debit, credit *domain.Entry, err error) {
	if fromBalance.Balance.LessThan(transfer.Amount) {
		return nil, nil, domain.ErrInsufficientFunds
	}

	reference := transfer.Reference()
	sequenceKey := transfer.OccurredAt.UnixMilli()

	debit = &domain.Entry{
		ID:           domain.ComputeEntryID(transfer.From.Key(), domain.PartyFrom, domain.EntryTypeDebit, transfer.Amount, transfer.Currency, reference),
		AccountKey:   transfer.From.Key(),
		Customer:     transfer.From.Customer,
		Party:        domain.PartyFrom,
		Type:         domain.EntryTypeDebit,
		Amount:       transfer.Amount,
		Currency:     transfer.Currency,
		BalanceAfter: fromBalance.Balance.Sub(transfer.Amount),
		OccurredAt:   transfer.OccurredAt,
		SequenceKey:  sequenceKey,
		Status:       domain.StatusSuccess,
	}

	credit = &domain.Entry{
		ID:           domain.ComputeEntryID(transfer.To.Key(), domain.PartyTo, domain.EntryTypeCredit, transfer.Amount, transfer.Currency, reference),
		AccountKey:   transfer.To.Key(),
		Customer:     transfer.To.Customer,
		Party:        domain.PartyTo,
		Type:         domain.EntryTypeCredit,
		Amount:       transfer.Amount,
		Currency:     transfer.Currency,
		BalanceAfter: toBalance.Balance.Add(transfer.Amount),
		OccurredAt:   transfer.OccurredAt,
		SequenceKey:  sequenceKey,
		Status:       domain.StatusSuccess,
	}

	return debit, credit, nil
}

// GetEntry retrieves a single entry by id, scoped to the caller's
// customer identity.
func (uc *TransferUseCase) GetEntry(ctx context.Context, customer, id string) (*domain.Entry, error) {
	return uc.store.GetByCustomer(ctx, customer, id)
}

func transferErrorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, domain.ErrStorageConflict):
		return "conflict"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrSameAccount),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrCurrencyMismatch),
		errors.Is(err, domain.ErrInvalidAccountKey):
		return "validation"
	default:
		return "other"
	}
}

func (uc *TransferUseCase) publishCommitted(ctx context.Context, transfer *domain.Transfer, debit, credit *domain.Entry) {
	if uc.publisher == nil {
		return
	}

	event := &domain.Event{
		Type:       domain.EventTypeTransferCommitted,
		OccurredAt: transfer.OccurredAt,
		Payload: domain.TransferCommittedEvent{
			DebitEntryID:  debit.ID,
			CreditEntryID: credit.ID,
			FromAccount:   transfer.From.Key(),
			ToAccount:     transfer.To.Key(),
			Amount:        transfer.Amount.String(),
			Currency:      transfer.Currency,
			OccurredAt:    transfer.OccurredAt.Format(time.RFC3339Nano),
		},
	}

	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Warn().Err(err).Str("event_type", event.Type).Msg("failed to publish event")
	}
}
