// Package scoring computes deterministic sell-out probabilities from
// per-event demand signals. Identical inputs always produce identical
// scores: no randomness, no clock reads, no network.
package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/tourintel/internal/domain/model"
	"github.com/okian/tourintel/pkg/metrics"
)

// Base blend weights over the three 0-100 demand signals.
const (
	heatWeight       = 0.45
	popularityWeight = 0.35
	momentumWeight   = 0.20
)

// Geo blend applied to market heat before scoring when a heatmap
// weight is known for the event's city.
const (
	geoHeatShare = 0.70
	geoCityShare = 0.30
)

// Inventory pressure swings the score by up to 9 points either way.
const inventorySlope = 0.18

// verifiedFanBoost rewards events with an active verified-fan program.
const verifiedFanBoost = 4.0

// minReasonContribution keeps negligible sub-scores out of the reason
// list.
const minReasonContribution = 1.0

// Venue capacity adjustment bands. Small rooms sell out easier.
const (
	capacityClub    = 3000
	capacityTheater = 7000
	capacityArena   = 12000
	capacityStadium = 20000
)

type reason struct {
	text         string
	contribution float64
}

// Score computes the sell-out probability for one event. Absent
// popularity or momentum degrade to the neutral midpoint; absent
// capacity and inventory contribute nothing.
func Score(event model.Event, signals model.DemandSignals) model.SelloutScore {
	heat := blendGeo(signals)

	popularity := float64(NeutralMidpoint)
	if signals.HasStreamingPopularity {
		popularity = float64(signals.StreamingPopularity)
	}
	momentum := float64(NeutralMidpoint)
	if signals.HasVideoMomentum {
		momentum = float64(signals.VideoMomentum)
	}

	total := heatWeight*float64(heat) + popularityWeight*popularity + momentumWeight*momentum

	reasons := make([]reason, 0, 6)
	reasons = append(reasons, reason{
		text:         fmt.Sprintf("Market heat %d/100", heat),
		contribution: heatWeight * float64(heat),
	})
	if signals.HasStreamingPopularity {
		reasons = append(reasons, reason{
			text:         fmt.Sprintf("Streaming popularity %d/100", signals.StreamingPopularity),
			contribution: popularityWeight * popularity,
		})
	}
	if signals.HasVideoMomentum {
		reasons = append(reasons, reason{
			text:         fmt.Sprintf("Video momentum %d/100", signals.VideoMomentum),
			contribution: momentumWeight * momentum,
		})
	}

	if adj := capacityAdjustment(signals); adj != 0 {
		total += adj
		reasons = append(reasons, reason{
			text:         fmt.Sprintf("Venue capacity %d", signals.Capacity),
			contribution: adj,
		})
	}
	if signals.HasInventoryPressure {
		adj := (float64(signals.InventoryPressure) - NeutralMidpoint) * inventorySlope
		total += adj
		reasons = append(reasons, reason{
			text:         fmt.Sprintf("Inventory pressure %d/100", signals.InventoryPressure),
			contribution: adj,
		})
	}
	if signals.VerifiedFanBoost {
		total += verifiedFanBoost
		reasons = append(reasons, reason{
			text:         "Verified fan program observed",
			contribution: verifiedFanBoost,
		})
	}

	probability := int(math.Round(clamp(total, 0, 100)))
	tier := TierFor(probability)

	metrics.RecordScoreComputed()
	metrics.RecordTierAssignment(string(tier))

	return model.SelloutScore{
		Probability:      probability,
		Tier:             tier,
		Reasons:          renderReasons(reasons),
		MarketHeat:       heat,
		MarketHeatReason: signals.MarketHeatReason,
	}
}

// blendGeo folds the heatmap city weight into the market heat. Without
// a geo weight the heat passes through untouched.
func blendGeo(signals model.DemandSignals) int {
	if !signals.HasGeoWeight {
		return signals.MarketHeat
	}
	geo := clamp(float64(signals.GeoWeight), 0, 100)
	return int(math.Round(geoHeatShare*float64(signals.MarketHeat) + geoCityShare*geo))
}

func capacityAdjustment(signals model.DemandSignals) float64 {
	if !signals.HasCapacity {
		return 0
	}
	switch capacity := signals.Capacity; {
	case capacity <= capacityClub:
		return 6
	case capacity <= capacityTheater:
		return 2
	case capacity <= capacityArena:
		return -2
	case capacity <= capacityStadium:
		return -6
	default:
		return -10
	}
}

// renderReasons orders reasons by descending absolute contribution,
// keeping the insertion order on ties and dropping negligible entries.
func renderReasons(reasons []reason) []string {
	kept := make([]reason, 0, len(reasons))
	for _, r := range reasons {
		if math.Abs(r.contribution) >= minReasonContribution {
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return math.Abs(kept[i].contribution) > math.Abs(kept[j].contribution)
	})
	out := make([]string, len(kept))
	for i, r := range kept {
		out[i] = r.text
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
