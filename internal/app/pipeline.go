package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/tourintel/internal/adapters/upstream"
	"github.com/okian/tourintel/internal/adapters/upstream/streaming"
	"github.com/okian/tourintel/internal/domain/events"
	"github.com/okian/tourintel/internal/domain/heat"
	"github.com/okian/tourintel/internal/domain/model"
	"github.com/okian/tourintel/internal/domain/rating"
	"github.com/okian/tourintel/internal/domain/report"
	"github.com/okian/tourintel/internal/domain/scoring"
	"github.com/okian/tourintel/internal/domain/types"
	"github.com/okian/tourintel/pkg/metrics"
)

// Stage labels recorded on pipeline metrics.
const (
	stageResolve = "resolve"
	stageEvents  = "events"
	stageHeatmap = "heatmap"
	stageRating  = "rating"
	stageScore   = "score"
)

// upcomingWindow is the horizon for the near-term show count note.
const upcomingWindow = 30 * 24 * time.Hour

// runPipeline executes every pipeline stage for one query and
// assembles the report. Stage failures degrade to warnings; only
// provider rate limiting fails the run, so a degraded report never
// replaces a cached entry the refresh controller chose to keep.
func (s *Service) runPipeline(ctx context.Context, query string, region types.Region) (model.IntelReport, error) {
	start := time.Now()
	metrics.RecordPipelineRun()
	defer func() { metrics.RecordPipelineRunDuration(elapsedMS(start)) }()

	stage := time.Now()
	artist, warnings := s.resolver.Resolve(ctx, query)
	metrics.RecordStageLatency(stageResolve, elapsedMS(stage))
	countWarnings(stageResolve, warnings)

	stage = time.Now()
	req := events.NewSearchRequest(artist,
		events.WithRegion(region),
		events.WithLimit(s.eventLimit),
	)
	upcoming, eventWarnings, eventErr := s.aggregator.Upcoming(ctx, req)
	metrics.RecordStageLatency(stageEvents, elapsedMS(stage))
	countWarnings(stageEvents, eventWarnings)
	warnings = append(warnings, eventWarnings...)
	if eventErr != nil && errors.Is(eventErr, upstream.ErrRateLimited) {
		metrics.RecordPipelineRunError()
		return model.IntelReport{}, fmt.Errorf("event search: %w", eventErr)
	}

	stage = time.Now()
	cities, heatmapWarnings := s.heatmap.TopCities(ctx, artist, region)
	metrics.RecordStageLatency(stageHeatmap, elapsedMS(stage))
	countWarnings(stageHeatmap, heatmapWarnings)
	warnings = append(warnings, heatmapWarnings...)

	stage = time.Now()
	profiles, profileWarnings := s.fetchProfiles(ctx, artist.DisplayName())
	artistRating := rating.Rate(profiles.ratingInput())
	metrics.RecordStageLatency(stageRating, elapsedMS(stage))
	countWarnings(stageRating, profileWarnings)
	warnings = append(warnings, profileWarnings...)

	fan := s.ticketing.VerifiedFanPrograms(ctx, artist)
	if fan.Warning != "" {
		warnings = append(warnings, fan.Warning)
	}

	stage = time.Now()
	results := s.scoreEvents(upcoming, cities, profiles, artistRating, fan.Found())
	metrics.RecordStageLatency(stageScore, elapsedMS(stage))

	notes := []string{
		fmt.Sprintf("Upcoming events in %s: %d", region.Label(), len(upcoming)),
		fmt.Sprintf("Shows in next 30 days: %d", upcomingWithin(upcoming, time.Now(), upcomingWindow)),
	}
	if fan.Found() {
		notes = append(notes, fmt.Sprintf("Verified fan program observed: %s", fan.Programs[0].Name))
	}

	return s.assembler.Assemble(report.Input{
		Query:    query,
		Identity: artist,
		Rating:   artistRating,
		Cities:   cities,
		Events:   results,
		Notes:    notes,
		Warnings: warnings,
	}), nil
}

// platformProfiles carries the per-platform popularity snapshots
// feeding the rating and the per-event demand signals.
type platformProfiles struct {
	streaming     model.StreamingProfile
	hasStreaming  bool
	video         model.VideoProfile
	hasVideo      bool
	shortVideo    model.ShortVideoStats
	hasShortVideo bool
}

func (p platformProfiles) ratingInput() rating.Input {
	return rating.Input{
		Streaming:     p.streaming,
		HasStreaming:  p.hasStreaming,
		Video:         p.video,
		HasVideo:      p.hasVideo,
		ShortVideo:    p.shortVideo,
		HasShortVideo: p.hasShortVideo,
	}
}

// fetchProfiles gathers the three platform popularity snapshots.
// Failures degrade per platform: the bucket is marked absent, a
// warning records the cause, and the streaming slot carries the
// neutral fallback profile so downstream consumers see a well-formed
// struct.
func (s *Service) fetchProfiles(ctx context.Context, name string) (platformProfiles, []string) {
	var profiles platformProfiles
	var warnings []string

	streamingProfile, err := s.streaming.LookupArtist(ctx, name)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("streaming metrics unavailable: %v", err))
		streamingProfile = streaming.FallbackProfile(name)
	} else {
		profiles.hasStreaming = true
	}
	profiles.streaming = streamingProfile

	videoProfile, err := s.video.LookupChannel(ctx, name)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("video metrics unavailable: %v", err))
	} else {
		profiles.hasVideo = true
		profiles.video = videoProfile
	}

	hashtag, err := s.shortVideo.LookupHashtag(ctx, name)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("short-video metrics unavailable: %v", err))
	} else {
		profiles.hasShortVideo = true
		profiles.shortVideo = hashtag
	}

	return profiles, warnings
}

// scoreEvents runs the per-event heat estimate and sellout score. The
// heat estimator only sees signals a platform actually produced;
// missing ones degrade inside the scorer.
func (s *Service) scoreEvents(found []model.Event, cities []model.CityWeight, profiles platformProfiles, artistRating model.ArtistRating, verifiedFan bool) []report.EventResult {
	cityWeights := make(map[string]int, len(cities))
	for _, city := range cities {
		cityWeights[strings.ToLower(city.City)] = city.Weight
	}
	topCities := heat.CityNames(cities)

	results := make([]report.EventResult, 0, len(found))
	for _, event := range found {
		heatScore, heatReason := heat.Estimate(heat.Input{
			City:          event.City,
			Country:       events.ExtractCountry(event.Raw),
			Venue:         event.Venue,
			Popularity:    profiles.streaming.Popularity,
			HasPopularity: profiles.hasStreaming,
			Followers:     profiles.streaming.Followers,
			Momentum:      profiles.video.Momentum,
			HasMomentum:   profiles.hasVideo,
			TopCities:     topCities,
		})

		signals := model.DemandSignals{
			MarketHeat:             heatScore,
			MarketHeatReason:       heatReason,
			StreamingPopularity:    profiles.streaming.Popularity,
			HasStreamingPopularity: profiles.hasStreaming,
			VideoMomentum:          profiles.video.Momentum,
			HasVideoMomentum:       profiles.hasVideo,
			Capacity:               event.Capacity,
			HasCapacity:            event.HasCapacity(),
			VerifiedFanBoost:       verifiedFan,
			RatingComposite:        artistRating.Score,
			HasRating:              ratingPresent(artistRating),
		}
		if weight, ok := cityWeights[strings.ToLower(event.City)]; ok {
			signals.GeoWeight = weight
			signals.HasGeoWeight = true
		}
		if pressure, ok := events.ExtractInventoryPressure(event.Raw); ok {
			signals.InventoryPressure = pressure
			signals.HasInventoryPressure = true
		}

		score := scoring.Score(event, signals)
		results = append(results, report.EventResult{Event: event, Score: &score})
	}
	return results
}

// ratingPresent reports whether any platform bucket contributed.
func ratingPresent(r model.ArtistRating) bool {
	return r.Streaming.Present || r.Video.Present || r.ShortVideo.Present
}

// upcomingWithin counts events whose local date falls inside the
// window starting today. Undated events never count.
func upcomingWithin(found []model.Event, now time.Time, window time.Duration) int {
	today := now.UTC().Truncate(24 * time.Hour)
	cutoff := today.Add(window)

	count := 0
	for _, event := range found {
		if event.LocalDate == "" {
			continue
		}
		day, err := time.Parse("2006-01-02", event.LocalDate)
		if err != nil {
			continue
		}
		if !day.Before(today) && !day.After(cutoff) {
			count++
		}
	}
	return count
}

// countWarnings bumps the stage warning counter once per warning.
func countWarnings(stage string, warnings []string) {
	for range warnings {
		metrics.RecordStageWarning(stage)
	}
}

func elapsedMS(start time.Time) float64 {
	return float64(time.Since(start).Milliseconds())
}
