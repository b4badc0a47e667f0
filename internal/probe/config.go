package probe

import "time"

// Config holds configuration for one probe run.
type Config struct {
	BaseURL     string        // Base URL of the service
	NumQueries  int           // Number of artist queries to probe
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	Repeats     int           // Repeat fetches per query for the determinism check
	OutputFile  string        // Output file for fetched reports
	LogFile     string        // Log file for probe output
	Verbose     bool          // Enable verbose logging
	SkipHeatmap bool          // Skip the heatmap ordering check
}

// Report mirrors the intel report contract as the API serves it. The
// probe decodes into this shape for value checks and into a raw map
// for key-presence checks, so a silently dropped key cannot hide
// behind a zero value.
type Report struct {
	ReportID     string       `json:"report_id"`
	ArtistQuery  string       `json:"artist_query"`
	ArtistName   string       `json:"artist_name"`
	GeneratedAt  string       `json:"generated_at"`
	ArtistRating Rating       `json:"artist_rating"`
	BestCities   []CityWeight `json:"best_cities"`
	Events       []Event      `json:"events"`
	Notes        []string     `json:"notes"`
	Warnings     []string     `json:"warnings"`
}

// Rating is the artist rating block of a report.
type Rating struct {
	Stars int     `json:"stars"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// CityWeight is one best-cities entry.
type CityWeight struct {
	City   string `json:"city"`
	Weight int    `json:"weight"`
}

// Event is one scored event entry of a report.
type Event struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	City               string `json:"city"`
	SelloutProbability int    `json:"sellout_probability"`
	DemandTier         string `json:"demand_tier"`
	Confidence         int    `json:"confidence"`
	MarketHeat         int    `json:"market_heat"`
}

// Stats holds probe statistics.
type Stats struct {
	QueriesGenerated    int
	ReportsFetched      int
	ReportsFailed       int
	ContractViolations  int
	DeterminismChecks   int
	DeterminismFailures int
	HeatmapsFetched     int
	HeatmapViolations   int
	WarningsObserved    int
	StartTime           time.Time
	EndTime             time.Time
	Duration            time.Duration
}
