package model

// Tier labels a sell-out probability band. The band thresholds and
// the tier values themselves are declared by the scoring package;
// everything else treats tiers as opaque labels.
type Tier string

// SelloutScore is the scorer verdict for a single event.
type SelloutScore struct {
	Probability      int // 0..100
	Tier             Tier
	Reasons          []string // descending contribution order
	MarketHeat       int      // 0..100
	MarketHeatReason string
}
