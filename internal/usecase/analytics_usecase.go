package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/olekh/ledgerd/internal/domain"
	"github.com/olekh/ledgerd/internal/infrastructure/metrics"
)

// Stats summarizes a set of entries.
type Stats struct {
	Count       int             `json:"count"`
	Volume      decimal.Decimal `json:"volume"`
	AverageSize decimal.Decimal `json:"average_size"`
	SuccessRate float64         `json:"success_rate"`
}

// Trend compares the current window against the previous one.
type Trend struct {
	Count         int             `json:"count"`
	PercentChange float64         `json:"percent_change"`
	VolumeChange  decimal.Decimal `json:"volume_change"`
}

// PeriodVolume is one bucket of the period-bucketed volume series.
type PeriodVolume struct {
	Period string          `json:"period"`
	Volume decimal.Decimal `json:"volume"`
}

// PeriodFlow splits a bucket's volume by entry type.
type PeriodFlow struct {
	Period  string          `json:"period"`
	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`
}

// ComputeStats computes count, volume, average size and success rate over
// already-retrieved entries. An empty set yields zeroed stats, never a
// division by zero.
func ComputeStats(entries []*domain.Entry) Stats {
	stats := Stats{
		Volume:      decimal.Zero,
		AverageSize: decimal.Zero,
	}

	if len(entries) == 0 {
		return stats
	}

	succeeded := 0
	for _, entry := range entries {
		stats.Volume = stats.Volume.Add(entry.Amount)
		if entry.Status == domain.StatusSuccess {
			succeeded++
		}
	}

	stats.Count = len(entries)
	stats.AverageSize = stats.Volume.Div(decimal.NewFromInt(int64(stats.Count)))
	stats.SuccessRate = 100 * float64(succeeded) / float64(stats.Count)

	return stats
}

// ComputeTrend computes the delta between two windows. PercentChange is 0
// when the previous window is empty.
func ComputeTrend(current, previous Stats) Trend {
	trend := Trend{
		Count:        current.Count,
		VolumeChange: current.Volume.Sub(previous.Volume),
	}

	if previous.Count > 0 {
		trend.PercentChange = 100 * float64(current.Count-previous.Count) / float64(previous.Count)
	}

	return trend
}

// VolumeByPeriod groups entries into calendar-truncated buckets and sums
// the volume per bucket, ordered by period ascending.
func VolumeByPeriod(entries []*domain.Entry, period domain.Period) []PeriodVolume {
	buckets := make(map[string]decimal.Decimal)
	for _, entry := range entries {
		key := period.BucketKey(entry.OccurredAt)
		buckets[key] = buckets[key].Add(entry.Amount)
	}

	series := make([]PeriodVolume, 0, len(buckets))
	for key, volume := range buckets {
		series = append(series, PeriodVolume{Period: key, Volume: volume})
	}

	sort.Slice(series, func(i, j int) bool { return series[i].Period < series[j].Period })

	return series
}

// FlowByPeriod is the flow variant of VolumeByPeriod: credits count as
// inflow, debits as outflow.
func FlowByPeriod(entries []*domain.Entry, period domain.Period) []PeriodFlow {
	type flow struct{ in, out decimal.Decimal }

	buckets := make(map[string]flow)
	for _, entry := range entries {
		key := period.BucketKey(entry.OccurredAt)

		b := buckets[key]
		switch entry.Type {
		case domain.EntryTypeCredit:
			b.in = b.in.Add(entry.Amount)
		case domain.EntryTypeDebit:
			b.out = b.out.Add(entry.Amount)
		}

		buckets[key] = b
	}

	series := make([]PeriodFlow, 0, len(buckets))
	for key, b := range buckets {
		series = append(series, PeriodFlow{Period: key, Inflow: b.in, Outflow: b.out})
	}

	sort.Slice(series, func(i, j int) bool { return series[i].Period < series[j].Period })

	return series
}

// AnalyticsUseCase orchestrates fan-out retrieval and aggregation, with a
// short-lived response cache in front.
type AnalyticsUseCase struct {
	query    *QueryUseCase
	cache    Cache
	cacheTTL time.Duration
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

// NewAnalyticsUseCase creates a new AnalyticsUseCase. cache may be nil.
func NewAnalyticsUseCase(query *QueryUseCase, cache Cache, cacheTTL time.Duration, logger zerolog.Logger) *AnalyticsUseCase {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}

	return &AnalyticsUseCase{
		query:    query,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// WithMetrics attaches Prometheus instrumentation.
func (uc *AnalyticsUseCase) WithMetrics(m *metrics.Metrics) *AnalyticsUseCase {
	uc.metrics = m
	return uc
}

func (uc *AnalyticsUseCase) countCacheOp(outcome string) {
	if uc.metrics != nil {
		uc.metrics.StatsCacheOps.WithLabelValues(outcome).Inc()
	}
}

// StatsInput represents input for a stats aggregation.
type StatsInput struct {
	Accounts []domain.AccountID
	Start    *time.Time
	End      *time.Time
}

// StatsReport carries the window's stats plus, when the window is fully
// bounded, the trend against the preceding window of equal length.
type StatsReport struct {
	Stats Stats  `json:"stats"`
	Trend *Trend `json:"trend,omitempty"`
}

// Stats fans the query out across the named accounts and aggregates the
// merged entries.
func (uc *AnalyticsUseCase) Stats(ctx context.Context, input StatsInput) (*StatsReport, error) {
	cacheKey := uc.cacheKey("stats", input.Accounts, input.Start, input.End, "")

	var cached StatsReport
	if uc.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	entries, err := uc.query.ListEntriesForAccounts(ctx, input.Accounts, input.Start, input.End)
	if err != nil {
		return nil, err
	}

	report := &StatsReport{Stats: ComputeStats(entries)}

	if input.Start != nil && input.End != nil {
		window := input.End.Sub(*input.Start)
		prevStart := input.Start.Add(-window)
		prevEnd := input.Start.Add(-time.Millisecond)

		prevEntries, err := uc.query.ListEntriesForAccounts(ctx, input.Accounts, &prevStart, &prevEnd)
		if err != nil {
			return nil, err
		}

		trend := ComputeTrend(report.Stats, ComputeStats(prevEntries))
		report.Trend = &trend
	}

	uc.cacheSet(ctx, cacheKey, report)

	return report, nil
}

// TrendsInput represents input for a period-bucketed series.
type TrendsInput struct {
	Accounts []domain.AccountID
	Start    *time.Time
	End      *time.Time
	Period   domain.Period
	Flow     bool
}

// TrendsReport carries one of the two series shapes.
type TrendsReport struct {
	Period  domain.Period  `json:"period"`
	Volumes []PeriodVolume `json:"volumes,omitempty"`
	Flows   []PeriodFlow   `json:"flows,omitempty"`
}

// Trends fans the query out and buckets the merged entries by period.
func (uc *AnalyticsUseCase) Trends(ctx context.Context, input TrendsInput) (*TrendsReport, error) {
	kind := "volume"
	if input.Flow {
		kind = "flow"
	}

	cacheKey := uc.cacheKey("trends:"+kind+":"+string(input.Period), input.Accounts, input.Start, input.End, "")

	var cached TrendsReport
	if uc.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	entries, err := uc.query.ListEntriesForAccounts(ctx, input.Accounts, input.Start, input.End)
	if err != nil {
		return nil, err
	}

	report := &TrendsReport{Period: input.Period}
	if input.Flow {
		report.Flows = FlowByPeriod(entries, input.Period)
	} else {
		report.Volumes = VolumeByPeriod(entries, input.Period)
	}

	uc.cacheSet(ctx, cacheKey, report)

	return report, nil
}

func (uc *AnalyticsUseCase) cacheKey(prefix string, accounts []domain.AccountID, start, end *time.Time, extra string) string {
	keys := make([]string, 0, len(accounts))
	for _, account := range accounts {
		keys = append(keys, account.Key())
	}

	sort.Strings(keys)

	payload := strings.Join(keys, ",") + "|" + formatBound(start) + "|" + formatBound(end) + "|" + extra
	sum := sha256.Sum256([]byte(payload))

	return "analytics:" + prefix + ":" + hex.EncodeToString(sum[:8])
}

func (uc *AnalyticsUseCase) cacheGet(ctx context.Context, key string, out any) bool {
	if uc.cache == nil {
		return false
	}

	raw, err := uc.cache.Get(ctx, key)
	if err != nil || raw == nil {
		uc.countCacheOp("miss")
		return false
	}

	if json.Unmarshal(raw, out) != nil {
		uc.countCacheOp("miss")
		return false
	}

	uc.countCacheOp("hit")

	return true
}

func (uc *AnalyticsUseCase) cacheSet(ctx context.Context, key string, value any) {
	if uc.cache == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := uc.cache.Set(ctx, key, raw, uc.cacheTTL); err != nil {
		uc.logger.Debug().Err(err).Str("key", key).Msg("analytics cache write skipped")
		return
	}

	uc.countCacheOp("store")
}

func formatBound(t *time.Time) string {
	if t == nil {
		return ""
	}

	return t.UTC().Format(time.RFC3339Nano)
}
