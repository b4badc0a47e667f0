package model

// CityWeight is one heatmap output unit.
type CityWeight struct {
	City   string `json:"city"`
	Weight int    `json:"weight"`
}

// ScoredEvent is an event entry in the final report.
type ScoredEvent struct {
	ID                 string   `json:"id,omitempty"`
	Name               string   `json:"name"`
	LocalDate          string   `json:"local_date,omitempty"`
	City               string   `json:"city"`
	Venue              string   `json:"venue"`
	Capacity           int      `json:"venue_capacity,omitempty"`
	URL                string   `json:"url,omitempty"`
	SelloutProbability int      `json:"sellout_probability"`
	DemandTier         Tier     `json:"demand_tier"`
	Confidence         int      `json:"confidence"`
	Reasons            []string `json:"reasons"`
	MarketHeat         int      `json:"market_heat"`
	MarketHeatReason   string   `json:"market_heat_reason,omitempty"`
}

// IntelReport is the stable output contract. Every top-level key is
// present on every run regardless of upstream failures; consumers
// parse reports without conditional key checks.
type IntelReport struct {
	ReportID     string        `json:"report_id"`
	ArtistQuery  string        `json:"artist_query"`
	ArtistName   string        `json:"artist_name"`
	GeneratedAt  string        `json:"generated_at"` // RFC3339 UTC
	ArtistRating ArtistRating  `json:"artist_rating"`
	BestCities   []CityWeight  `json:"best_cities"`
	Events       []ScoredEvent `json:"events"`
	Notes        []string      `json:"notes"`
	Warnings     []string      `json:"warnings"`
}
