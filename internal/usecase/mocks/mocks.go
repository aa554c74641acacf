package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/olekh/ledgerd/internal/domain"
	"github.com/olekh/ledgerd/internal/usecase"
)

// MockEntryStore is an in-memory implementation of usecase.EntryStore with
// the same conditional-write semantics as the real adapter. Individual
// methods can be overridden through the ...Func fields.
type MockEntryStore struct {
	mu         sync.RWMutex
	partitions map[string]map[string]*domain.Entry

	PutFunc                func(ctx context.Context, entries []*domain.Entry) error
	GetFunc                func(ctx context.Context, accountKey, id string) (*domain.Entry, error)
	GetByCustomerFunc      func(ctx context.Context, customer, id string) (*domain.Entry, error)
	LatestFunc             func(ctx context.Context, accountKey, currency string) (*domain.Entry, error)
	QueryFunc              func(ctx context.Context, q usecase.EntryQuery) ([]*domain.Entry, error)
	HasCreditFunc          func(ctx context.Context, accountKey, currency string) (bool, error)
	CurrenciesFunc         func(ctx context.Context, accountKey string) ([]string, error)
	AccountsByCustomerFunc func(ctx context.Context, customer string) ([]string, error)
	TotalsByTypeFunc       func(ctx context.Context, accountKey string) (decimal.Decimal, decimal.Decimal, error)
}

func NewMockEntryStore() *MockEntryStore {
	return &MockEntryStore{
		partitions: make(map[string]map[string]*domain.Entry),
	}
}

func (m *MockEntryStore) Put(ctx context.Context, entries []*domain.Entry) error {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, entries)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, entry := range entries {
		if _, exists := m.partitions[entry.AccountKey][entry.ID]; exists {
			return domain.ErrStorageConflict
		}
	}

	for _, entry := range entries {
		if m.partitions[entry.AccountKey] == nil {
			m.partitions[entry.AccountKey] = make(map[string]*domain.Entry)
		}

		copied := *entry
		m.partitions[entry.AccountKey][entry.ID] = &copied
	}

	return nil
}

func (m *MockEntryStore) Get(ctx context.Context, accountKey, id string) (*domain.Entry, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, accountKey, id)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if entry, ok := m.partitions[accountKey][id]; ok {
		return entry, nil
	}

	return nil, domain.ErrEntryNotFound
}

func (m *MockEntryStore) GetByCustomer(ctx context.Context, customer, id string) (*domain.Entry, error) {
	if m.GetByCustomerFunc != nil {
		return m.GetByCustomerFunc(ctx, customer, id)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, partition := range m.partitions {
		if entry, ok := partition[id]; ok && entry.Customer == customer {
			return entry, nil
		}
	}

	return nil, domain.ErrEntryNotFound
}

func (m *MockEntryStore) Latest(ctx context.Context, accountKey, currency string) (*domain.Entry, error) {
	if m.LatestFunc != nil {
		return m.LatestFunc(ctx, accountKey, currency)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *domain.Entry
	for _, entry := range m.partitions[accountKey] {
		if currency != "" && entry.Currency != currency {
			continue
		}

		if latest == nil || entry.SequenceKey > latest.SequenceKey {
			latest = entry
		}
	}

	if latest == nil {
		return nil, domain.ErrEntryNotFound
	}

	return latest, nil
}

func (m *MockEntryStore) Query(ctx context.Context, q usecase.EntryQuery) ([]*domain.Entry, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, q)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*domain.Entry
	for _, entry := range m.partitions[q.AccountKey] {
		if q.StartSeq != 0 && entry.SequenceKey < q.StartSeq {
			continue
		}

		if q.EndSeq != 0 && entry.SequenceKey > q.EndSeq {
			continue
		}

		if q.BeforeSeq != 0 {
			if entry.SequenceKey > q.BeforeSeq {
				continue
			}

			if entry.SequenceKey == q.BeforeSeq && (q.BeforeID == "" || entry.ID >= q.BeforeID) {
				continue
			}
		}

		matched = append(matched, entry)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].SequenceKey != matched[j].SequenceKey {
			return matched[i].SequenceKey > matched[j].SequenceKey
		}

		return matched[i].ID > matched[j].ID
	})

	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	return matched, nil
}

func (m *MockEntryStore) HasCredit(ctx context.Context, accountKey, currency string) (bool, error) {
	if m.HasCreditFunc != nil {
		return m.HasCreditFunc(ctx, accountKey, currency)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, entry := range m.partitions[accountKey] {
		if entry.Type == domain.EntryTypeCredit && entry.Currency == currency {
			return true, nil
		}
	}

	return false, nil
}

func (m *MockEntryStore) Currencies(ctx context.Context, accountKey string) ([]string, error) {
	if m.CurrenciesFunc != nil {
		return m.CurrenciesFunc(ctx, accountKey)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	for _, entry := range m.partitions[accountKey] {
		seen[entry.Currency] = true
	}

	currencies := make([]string, 0, len(seen))
	for currency := range seen {
		currencies = append(currencies, currency)
	}

	sort.Strings(currencies)

	return currencies, nil
}

func (m *MockEntryStore) AccountsByCustomer(ctx context.Context, customer string) ([]string, error) {
	if m.AccountsByCustomerFunc != nil {
		return m.AccountsByCustomerFunc(ctx, customer)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	for key, partition := range m.partitions {
		for _, entry := range partition {
			if entry.Customer == customer {
				seen[key] = true
				break
			}
		}
	}

	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys, nil
}

func (m *MockEntryStore) TotalsByType(ctx context.Context, accountKey string) (decimal.Decimal, decimal.Decimal, error) {
	if m.TotalsByTypeFunc != nil {
		return m.TotalsByTypeFunc(ctx, accountKey)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	totalDebit, totalCredit := decimal.Zero, decimal.Zero
	for _, entry := range m.partitions[accountKey] {
		switch entry.Type {
		case domain.EntryTypeDebit:
			totalDebit = totalDebit.Add(entry.Amount)
		case domain.EntryTypeCredit:
			totalCredit = totalCredit.Add(entry.Amount)
		}
	}

	return totalDebit, totalCredit, nil
}

// EntryCount reports how many entries the given partition holds.
func (m *MockEntryStore) EntryCount(accountKey string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.partitions[accountKey])
}

// MockEventPublisher records published events.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []*domain.Event

	PublishFunc func(ctx context.Context, event *domain.Event) error
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) Publish(ctx context.Context, event *domain.Event) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, event)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)

	return nil
}

// Events returns the recorded events.
func (m *MockEventPublisher) Events() []*domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]*domain.Event(nil), m.events...)
}

// FixedClock always returns the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }
