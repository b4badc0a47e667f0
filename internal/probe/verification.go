package probe

import (
	"context"
	"fmt"
	"log"

	json "github.com/goccy/go-json"
)

// verifyContracts checks the output contract on every fetched report:
// all required top-level keys, valid tier labels, in-range scores, and
// at least one warning on unknown-artist queries.
func verifyContracts(ctx context.Context, config *Config, results []FetchResult, stats *Stats) error {
	log.Println("🔍 Verifying report contracts...")

	checked := 0
	for _, result := range results {
		if result.Err != nil {
			continue
		}
		checked++

		violations := contractViolations(result)
		if len(violations) > 0 {
			stats.ContractViolations += len(violations)
			for _, violation := range violations {
				log.Printf("⚠️  Contract violation for %q: %s", result.Query.Artist, violation)
			}
		}

		stats.WarningsObserved += len(result.Report.Warnings)

		if config.Verbose {
			log.Printf("   %q (%s): %d events, %d warnings, %d stars",
				result.Query.Artist, result.Query.Region,
				len(result.Report.Events), len(result.Report.Warnings),
				result.Report.ArtistRating.Stars)
		}
	}

	if checked == 0 {
		return fmt.Errorf("no reports to verify")
	}

	if stats.ContractViolations == 0 {
		log.Printf("✅ Contract verified on %d reports", checked)
	} else {
		log.Printf("❌ %d contract violations across %d reports", stats.ContractViolations, checked)
	}
	return nil
}

// contractViolations lists every contract breach in one fetched
// report. Key presence is checked on the raw payload: a decoded struct
// cannot distinguish a missing key from a zero value.
func contractViolations(result FetchResult) []string {
	var violations []string

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(result.Raw, &raw); err != nil {
		return []string{fmt.Sprintf("report is not a JSON object: %v", err)}
	}
	for _, key := range RequiredKeys {
		if _, ok := raw[key]; !ok {
			violations = append(violations, fmt.Sprintf("missing top-level key %q", key))
		}
	}

	report := result.Report
	if report.ArtistQuery == "" {
		violations = append(violations, "empty artist_query")
	}
	if report.GeneratedAt == "" {
		violations = append(violations, "empty generated_at")
	}
	if report.ArtistRating.Stars < 1 || report.ArtistRating.Stars > 5 {
		violations = append(violations, fmt.Sprintf("stars %d outside 1..5", report.ArtistRating.Stars))
	}

	for i, event := range report.Events {
		if _, ok := ValidTiers[event.DemandTier]; !ok {
			violations = append(violations, fmt.Sprintf("event %d carries invalid tier %q", i, event.DemandTier))
		}
		if event.SelloutProbability < 0 || event.SelloutProbability > 100 {
			violations = append(violations, fmt.Sprintf("event %d probability %d outside 0..100", i, event.SelloutProbability))
		}
		if event.Confidence < 0 || event.Confidence > 100 {
			violations = append(violations, fmt.Sprintf("event %d confidence %d outside 0..100", i, event.Confidence))
		}
		if event.MarketHeat < 0 || event.MarketHeat > 100 {
			violations = append(violations, fmt.Sprintf("event %d market heat %d outside 0..100", i, event.MarketHeat))
		}
	}

	if result.Query.Unknown {
		if len(report.Events) != 0 {
			violations = append(violations, fmt.Sprintf("unknown artist returned %d events", len(report.Events)))
		}
		if len(report.Warnings) == 0 {
			violations = append(violations, "unknown artist returned no warnings")
		}
	}

	return violations
}

// verifyDeterminism re-fetches a sample of queries and checks that
// per-event scores are identical while the cache entry is fresh.
func verifyDeterminism(ctx context.Context, config *Config, results []FetchResult, stats *Stats) error {
	if config.Repeats < 2 {
		return nil
	}
	log.Println("🔁 Verifying score determinism on repeat fetches...")

	client := newHTTPClient(config.Timeout)
	for _, result := range results {
		if result.Err != nil || len(result.Report.Events) == 0 {
			continue
		}

		baseline := scoresByEventID(result.Report)
		for repeat := 1; repeat < config.Repeats; repeat++ {
			again := fetchSingleReport(ctx, client, config.BaseURL, result.Query)
			if again.Err != nil {
				continue
			}
			stats.DeterminismChecks++

			for id, probability := range scoresByEventID(again.Report) {
				expected, ok := baseline[id]
				if !ok {
					continue
				}
				if probability != expected {
					stats.DeterminismFailures++
					log.Printf("❌ %q event %s scored %d then %d on repeat fetch",
						result.Query.Artist, id, expected, probability)
				}
			}
		}
	}

	if stats.DeterminismFailures == 0 {
		log.Printf("✅ Determinism verified across %d repeat fetches", stats.DeterminismChecks)
	}
	return nil
}

// scoresByEventID indexes a report's probabilities by event id.
func scoresByEventID(report Report) map[string]int {
	scores := make(map[string]int, len(report.Events))
	for _, event := range report.Events {
		if event.ID == "" {
			continue
		}
		scores[event.ID] = event.SelloutProbability
	}
	return scores
}

// verifyHeatmaps fetches the cached heatmap for each distinct query
// and checks the weight ordering: highest first, never increasing.
func verifyHeatmaps(ctx context.Context, config *Config, results []FetchResult, stats *Stats) error {
	if config.SkipHeatmap {
		return nil
	}
	log.Println("🗺️  Verifying heatmap ordering...")

	client := newHTTPClient(config.Timeout)
	seen := make(map[string]struct{})

	for _, result := range results {
		if result.Err != nil {
			continue
		}
		dedupeKey := result.Query.Artist + "|" + result.Query.Region
		if _, ok := seen[dedupeKey]; ok {
			continue
		}
		seen[dedupeKey] = struct{}{}

		cities, err := fetchHeatmap(ctx, client, config.BaseURL, result.Query)
		if err != nil {
			if config.Verbose {
				log.Printf("⚠️  heatmap fetch for %q failed: %v", result.Query.Artist, err)
			}
			continue
		}
		if cities == nil {
			continue
		}
		stats.HeatmapsFetched++

		for i := 1; i < len(cities); i++ {
			if cities[i].Weight > cities[i-1].Weight {
				stats.HeatmapViolations++
				log.Printf("❌ heatmap for %q not ordered: %q (%d) above %q (%d)",
					result.Query.Artist,
					cities[i-1].City, cities[i-1].Weight,
					cities[i].City, cities[i].Weight)
				break
			}
		}
	}

	if stats.HeatmapViolations == 0 {
		log.Printf("✅ Heatmap ordering verified on %d heatmaps", stats.HeatmapsFetched)
	}
	return nil
}
