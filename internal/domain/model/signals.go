package model

// DemandSignals carries the per-event inputs consumed by the sellout
// scorer. Has* flags distinguish absent optional signals from genuine
// zero values so missing data degrades to neutral instead of zero.
type DemandSignals struct {
	MarketHeat       int
	MarketHeatReason string

	GeoWeight    int
	HasGeoWeight bool

	StreamingPopularity    int
	HasStreamingPopularity bool

	VideoMomentum    int
	HasVideoMomentum bool

	Capacity    int
	HasCapacity bool

	InventoryPressure    int
	HasInventoryPressure bool

	VerifiedFanBoost bool

	RatingComposite float64
	HasRating       bool
}
