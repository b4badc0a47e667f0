package scoring

import "github.com/okian/tourintel/internal/domain/model"

// Demand tiers in ascending order. This table is the only place tier
// values, tier thresholds and rating bands are declared; every other
// package consumes them from here.
const (
	TierLow     model.Tier = "LOW"
	TierMed     model.Tier = "MED"
	TierHigh    model.Tier = "HIGH"
	TierExtreme model.Tier = "EXTREME"
)

// DefaultTier labels events the scorer never ran on.
const DefaultTier = TierMed

// Probability floors separating the tiers.
const (
	tierMedFloor     = 25
	tierHighFloor    = 50
	tierExtremeFloor = 75
)

// NeutralMidpoint stands in for absent 0-100 signals so missing data
// neither boosts nor punishes a score.
const NeutralMidpoint = 50

// TierFor maps a sell-out probability to its demand tier.
func TierFor(probability int) model.Tier {
	switch {
	case probability < tierMedFloor:
		return TierLow
	case probability < tierHighFloor:
		return TierMed
	case probability < tierExtremeFloor:
		return TierHigh
	default:
		return TierExtreme
	}
}

// Tiers returns every tier in ascending demand order.
func Tiers() []model.Tier {
	return []model.Tier{TierLow, TierMed, TierHigh, TierExtreme}
}

// RatingBand maps a 0-100 rating composite to its star count and label.
func RatingBand(composite float64) (int, string) {
	switch {
	case composite < 25:
		return 1, "Emerging"
	case composite < 45:
		return 2, "Growing"
	case composite < 65:
		return 3, "Hot"
	case composite < 85:
		return 4, "Headliner"
	default:
		return 5, "Rockstar"
	}
}
