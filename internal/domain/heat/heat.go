// Package heat estimates a 0-100 market heat score for one event from
// the artist's platform reach and the demand heatmap. Estimation is a
// pure function: all inputs are pre-fetched, nothing here touches the
// network.
package heat

import (
	"math"
	"strings"

	"github.com/okian/tourintel/internal/domain/model"
)

// Contribution weights and bonuses.
const (
	popularityShare = 0.5
	momentumShare   = 0.3

	// momentumScale folds the 0-100 momentum signal onto the 0-10
	// band the share and thresholds below are tuned for.
	momentumScale = 10.0

	strongAudienceFloor = 5_000_000
	strongAudienceBonus = 15
	solidAudienceFloor  = 1_000_000
	solidAudienceBonus  = 8

	topCityBonus = 10

	highMomentumFloor     = 8.0
	moderateMomentumFloor = 5.0
)

// baselineReason labels scores produced without any usable signal.
const baselineReason = "Limited data; baseline heat applied"

// Input carries everything the estimator reads. TopCities comes from
// the already-computed heatmap.
type Input struct {
	City    string
	Country string
	Venue   string

	Popularity    int
	HasPopularity bool
	Followers     int64

	Momentum    int
	HasMomentum bool

	TopCities []string
}

// Estimate returns the market heat score and a human readable reason
// string joined with "; ".
func Estimate(in Input) (int, string) {
	var base float64
	reasons := make([]string, 0, 5)

	if in.HasPopularity {
		base += float64(in.Popularity) * popularityShare
		switch {
		case in.Followers > strongAudienceFloor:
			base += strongAudienceBonus
			reasons = append(reasons, "Strong global streaming audience")
		case in.Followers > solidAudienceFloor:
			base += solidAudienceBonus
			reasons = append(reasons, "Solid streaming audience")
		}
	}

	if in.City != "" && cityRanked(in.City, in.TopCities) {
		base += topCityBonus
		reasons = append(reasons, "City ranks among the artist's hottest markets")
	}

	if in.HasMomentum {
		momentum := float64(in.Momentum) / momentumScale
		base += momentum * momentumShare
		if momentum >= highMomentumFloor {
			reasons = append(reasons, "High recent video momentum")
		} else if momentum >= moderateMomentumFloor {
			reasons = append(reasons, "Moderate video momentum")
		}
	}

	if in.Venue != "" {
		reasons = append(reasons, "Venue: "+in.Venue)
	}
	if in.Country != "" {
		reasons = append(reasons, "Country: "+in.Country)
	}

	score := int(math.Max(0, math.Min(100, base)))
	if len(reasons) == 0 {
		reasons = append(reasons, baselineReason)
	}
	return score, strings.Join(reasons, "; ")
}

// CityNames projects heatmap weights onto the plain city list the
// estimator consumes.
func CityNames(cities []model.CityWeight) []string {
	names := make([]string, len(cities))
	for i, c := range cities {
		names[i] = c.City
	}
	return names
}

func cityRanked(city string, topCities []string) bool {
	for _, candidate := range topCities {
		if strings.EqualFold(city, candidate) {
			return true
		}
	}
	return false
}
