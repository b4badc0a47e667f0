package probe

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
	"github.com/okian/tourintel/pkg/logger"
)

// Known artist roster for realistic queries. Unknown queries carry a
// uuid suffix so no cache or provider can recognize them.
var knownArtists = []string{
	"Taylor Swift",
	"Bad Bunny",
	"BTS",
	"Billie Eilish",
	"The Weeknd",
	"Drake",
	"Olivia Rodrigo",
	"Karol G",
	"Coldplay",
	"Beyonce",
	"Ed Sheeran",
	"Dua Lipa",
	"Travis Scott",
	"SZA",
	"Peso Pluma",
	"Hozier",
	"Noah Kahan",
	"Zach Bryan",
	"Tyler Childers",
	"Chappell Roan",
}

// Regions cycled across queries; empty means service default.
var probeRegions = []string{"", "US", "NA", "EU", "UK", "GLOBAL"}

// unknownQueryRatio is one unknown query per this many generated.
const unknownQueryRatio = 5

// Query is one probe unit: an artist plus an optional region.
type Query struct {
	Artist  string
	Region  string
	Unknown bool
}

// generateQueries builds the probe query mix: mostly known artists
// cycling through regions, with every Nth query a synthetic unknown to
// exercise the empty-report contract path.
func generateQueries(ctx context.Context, config *Config, stats *Stats) []Query {
	logger.Get().Info(ctx, "generating probe queries", logger.Int("numQueries", config.NumQueries))

	queries := make([]Query, 0, config.NumQueries)
	for i := 0; i < config.NumQueries; i++ {
		region := probeRegions[i%len(probeRegions)]

		if i%unknownQueryRatio == unknownQueryRatio-1 {
			queries = append(queries, Query{
				Artist:  "unknown-artist-" + uuid.New().String(),
				Region:  region,
				Unknown: true,
			})
			continue
		}

		queries = append(queries, Query{
			Artist: knownArtists[randomIndex(len(knownArtists))],
			Region: region,
		})
	}

	stats.QueriesGenerated = len(queries)
	logger.Get().Info(ctx, "generated probe queries", logger.Int("count", len(queries)))
	return queries
}

// randomIndex returns a random index below n using crypto/rand.
func randomIndex(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}
