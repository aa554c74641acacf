package usecase

const (
	// DefaultListLimit is the page size when none is requested.
	DefaultListLimit = 1000
	// MaxListLimit caps a single page.
	MaxListLimit = 1000
	// MaxFanOutAccounts caps the account list accepted by an analytics
	// fan-out before any sub-query is issued.
	MaxFanOutAccounts = 100_000
	// MaxMergedEntries caps the merged fan-out result set to bound
	// downstream aggregation cost.
	MaxMergedEntries = 10_000
	// DefaultFanOutWorkers bounds concurrent sub-queries per request.
	DefaultFanOutWorkers = 256
)
