package probe

// HTTP status code constants.
const (
	StatusOK = 200
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	PercentageMultiplier = 100
)

// Contract constants: the top-level keys every report must carry and
// the tier labels the scorer may assign.
var (
	RequiredKeys = []string{
		"artist_query",
		"artist_name",
		"generated_at",
		"artist_rating",
		"best_cities",
		"events",
		"notes",
		"warnings",
	}

	ValidTiers = map[string]struct{}{
		"LOW":     {},
		"MED":     {},
		"HIGH":    {},
		"EXTREME": {},
	}
)
