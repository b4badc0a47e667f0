// Package rating blends per-platform popularity signals into a 1-5
// star artist rating with an explainable 0-100 composite score.
package rating

import (
	"math"

	"github.com/okian/tourintel/internal/domain/model"
	"github.com/okian/tourintel/internal/domain/scoring"
	"github.com/okian/tourintel/pkg/metrics"
)

// Platform bucket weights. Absent buckets redistribute their weight
// proportionally across the present ones.
const (
	streamingWeight  = 0.50
	videoWeight      = 0.25
	shortVideoWeight = 0.25
)

// Intra-bucket blend shares.
const (
	popularityShare  = 0.70
	followersShare   = 0.30
	subscribersShare = 0.65
	momentumShare    = 0.35
	viewsShare       = 0.75
	growthShare      = 0.25
)

// Reference scales for diminishing-returns normalization.
const (
	followersScale   = 10_000_000
	subscribersScale = 10_000_000
	viewsScale       = 5_000_000_000
)

// noDataNote marks ratings produced without a single platform signal.
const noDataNote = "no platform data available"

// Input carries the per-platform profiles. Has* flags mark which
// platforms actually produced data.
type Input struct {
	Streaming     model.StreamingProfile
	HasStreaming  bool
	Video         model.VideoProfile
	HasVideo      bool
	ShortVideo    model.ShortVideoStats
	HasShortVideo bool
}

// Rate computes the artist rating. All buckets absent yields one star,
// a zero composite and an explicit note.
func Rate(in Input) model.ArtistRating {
	type bucket struct {
		score   float64
		weight  float64
		present bool
	}
	buckets := [3]bucket{
		{score: streamingScore(in.Streaming), weight: streamingWeight, present: in.HasStreaming},
		{score: videoScore(in.Video), weight: videoWeight, present: in.HasVideo},
		{score: shortVideoScore(in.ShortVideo), weight: shortVideoWeight, present: in.HasShortVideo},
	}

	var weightSum float64
	for _, b := range buckets {
		if b.present {
			weightSum += b.weight
		}
	}

	defer metrics.RecordRatingComputed()

	if weightSum == 0 {
		stars, label := scoring.RatingBand(0)
		return model.ArtistRating{
			Stars: stars,
			Label: label,
			Note:  noDataNote,
		}
	}

	var composite float64
	scores := [3]model.PlatformScore{}
	for i, b := range buckets {
		if !b.present {
			continue
		}
		effective := b.weight / weightSum
		composite += effective * b.score
		scores[i] = model.PlatformScore{Score: b.score, Weight: effective, Present: true}
	}
	composite = clamp(composite, 0, 100)

	stars, label := scoring.RatingBand(composite)
	return model.ArtistRating{
		Stars:      stars,
		Label:      label,
		Score:      composite,
		Streaming:  scores[0],
		Video:      scores[1],
		ShortVideo: scores[2],
	}
}

func streamingScore(p model.StreamingProfile) float64 {
	followers := normLog(float64(p.Followers), followersScale) * 100
	return popularityShare*float64(p.Popularity) + followersShare*followers
}

func videoScore(p model.VideoProfile) float64 {
	subscribers := normLog(float64(p.Subscribers), subscribersScale) * 100
	return subscribersShare*subscribers + momentumShare*float64(p.Momentum)
}

func shortVideoScore(s model.ShortVideoStats) float64 {
	views := normLog(float64(s.Views), viewsScale) * 100
	growth := clamp(s.WeeklyGrowth/100, 0, 1) * 100
	return viewsShare*views + growthShare*growth
}

// normLog maps value/scale onto 0..1 with strong diminishing returns
// so huge platforms do not drown the composite.
func normLog(value, scale float64) float64 {
	if value < 0 {
		value = 0
	}
	return math.Pow(clamp(value/scale, 0, 1), 0.25)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
