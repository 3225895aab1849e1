package domain

// MarketSnapshot is raw, provider-shaped data for one identifier.
// Every field is optional: providers populate only what they have, and
// absence is a regular value rather than an error. Price fields stay as
// strings because upstreams serve them that way; parsing (and tolerating
// garbage) is the normalizer's job.
type MarketSnapshot struct {
	Name   string
	Symbol string

	PriceUsd    string
	PriceNative string

	MarketCapUsd *float64
	FdvUsd       *float64
	Volume24hUsd *float64
	LiquidityUsd *float64

	Buys24h  *int64
	Sells24h *int64

	CanonicalURL string
	ImageURL     string

	// Bundle holds wallet-bundling statistics when the snapshot came from the
	// wallet analytics provider instead of a market aggregator.
	Bundle *BundleStats
}

// BundleStats aggregates per-bundle wallet history into totals.
// A zero-valued BundleStats is a valid "no bundling history" result.
type BundleStats struct {
	TotalBundles               int
	TotalTokensBundledMillions float64
	TotalPercentageBundled     float64
	TotalSolSpent              float64
	CurrentHeldPercentage      float64
	Bonded                     *bool
}
