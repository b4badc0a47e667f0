// Package heatmap ranks the cities where an artist's upcoming events
// concentrate, falling back to a static major-market prior when the
// ticketing provider has nothing to offer.
package heatmap

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/okian/tourintel/internal/domain/events"
	"github.com/okian/tourintel/internal/domain/model"
	"github.com/okian/tourintel/internal/domain/types"
	"github.com/okian/tourintel/pkg/logger"
	"github.com/okian/tourintel/pkg/metrics"
)

const (
	defaultTopN = 10
	defaultTTL  = 30 * time.Minute

	// searchSize is how many upcoming events feed the city density
	// count, independent of the caller's report limit.
	searchSize = 200

	// One residency must not dominate the ranking: per-city counts
	// cap at maxCountedShows before weighting.
	maxCountedShows = 10
	weightPerShow   = 10
)

// majorMarkets is the static prior used when ticketing yields no city
// data at all. Order matters: weights decrease strictly down the list.
var majorMarkets = []string{
	"New York", "Los Angeles", "Chicago", "Dallas", "Houston", "Atlanta",
	"Washington", "Philadelphia", "Boston", "San Francisco", "Seattle",
	"Denver", "Phoenix", "Detroit", "Minneapolis", "Tampa", "Miami",
	"San Diego", "Portland", "Austin",
}

// Cache is the typed persistence port for computed heatmaps.
type Cache interface {
	Lookup(ctx context.Context, key string) ([]model.CityWeight, bool)
	Store(ctx context.Context, key string, cities []model.CityWeight, ttl time.Duration)
}

// Engine computes and caches per-artist city rankings.
type Engine struct {
	ticketing events.TicketingClient
	cache     Cache
	topN      int
	ttl       time.Duration
	logger    logger.Logger
}

// NewEngine creates a heatmap engine over a ticketing client and a
// cache.
func NewEngine(ticketing events.TicketingClient, cache Cache, opts ...Option) *Engine {
	e := &Engine{
		ticketing: ticketing,
		cache:     cache,
		topN:      defaultTopN,
		ttl:       defaultTTL,
		logger:    logger.Get().Named("heatmap"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TopCities returns the weighted city ranking for the artist in the
// region, serving from cache when a fresh entry exists. The fallback
// prior is cached under the same key so repeated misses do not hammer
// the provider.
func (e *Engine) TopCities(ctx context.Context, identity model.ArtistIdentity, region types.Region) ([]model.CityWeight, []string) {
	key := types.HeatmapKey(identity.Query, region)
	if cities, ok := e.cache.Lookup(ctx, key); ok {
		return cities, nil
	}

	req := events.NewSearchRequest(identity,
		events.WithRegion(region),
		events.WithLimit(searchSize),
	)
	found, warnings, err := e.ticketing.SearchEvents(ctx, req)
	if err != nil {
		e.logger.Warn(ctx, "heatmap event search failed",
			logger.String("artist", identity.DisplayName()),
			logger.Error(err))
		warnings = append(warnings, fmt.Sprintf("heatmap event search failed: %v", err))
	}

	cities := rank(found, e.topN)
	if len(cities) == 0 {
		cities = Fallback(e.topN)
		warnings = append(warnings, "no ticketing city data; major-market prior applied")
		metrics.RecordHeatmapFallback()
	}

	e.cache.Store(ctx, key, cities, e.ttl)
	return cities, warnings
}

// Fallback returns the first topN major markets with strictly
// decreasing weights max(1, topN*2-i).
func Fallback(topN int) []model.CityWeight {
	if topN <= 0 {
		topN = defaultTopN
	}
	n := topN
	if n > len(majorMarkets) {
		n = len(majorMarkets)
	}
	out := make([]model.CityWeight, n)
	for i := 0; i < n; i++ {
		weight := topN*2 - i
		if weight < 1 {
			weight = 1
		}
		out[i] = model.CityWeight{City: majorMarkets[i], Weight: weight}
	}
	return out
}

// rank counts events per city and converts counts to weights. Ties
// keep the first-seen input order.
func rank(found []model.Event, topN int) []model.CityWeight {
	counts := make(map[string]int, len(found))
	order := make([]string, 0, len(found))
	for _, ev := range found {
		if ev.City == "" {
			continue
		}
		if _, seen := counts[ev.City]; !seen {
			order = append(order, ev.City)
		}
		counts[ev.City]++
	}
	if len(order) == 0 {
		return nil
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > topN {
		order = order[:topN]
	}

	out := make([]model.CityWeight, len(order))
	for i, city := range order {
		shows := counts[city]
		if shows > maxCountedShows {
			shows = maxCountedShows
		}
		out[i] = model.CityWeight{City: city, Weight: shows * weightPerShow}
	}
	return out
}
