package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/tourintel/internal/adapters/repository"
	"github.com/okian/tourintel/internal/domain/events"
	"github.com/okian/tourintel/internal/domain/model"
)

// TicketingProvider bundles every ticketing capability the pipeline
// consumes: event search, attraction resolution, and verified-fan
// program lookup.
type TicketingProvider interface {
	events.TicketingClient
	SearchAttraction(ctx context.Context, name string) (model.Attraction, error)
	VerifiedFanPrograms(ctx context.Context, identity model.ArtistIdentity) model.VerifiedFanResult
}

// StreamingProvider looks up streaming-platform artist profiles.
type StreamingProvider interface {
	LookupArtist(ctx context.Context, name string) (model.StreamingProfile, error)
}

// VideoProvider looks up video-platform channel profiles.
type VideoProvider interface {
	LookupChannel(ctx context.Context, name string) (model.VideoProfile, error)
}

// ShortVideoProvider looks up short-video hashtag stats.
type ShortVideoProvider interface {
	LookupHashtag(ctx context.Context, name string) (model.ShortVideoStats, error)
}

// disabledProvider stands in for any provider the operator left
// unconfigured. Calls fail with ErrProviderDisabled so the consuming
// stages degrade exactly as they would for an unreachable upstream.
type disabledProvider struct {
	name string
}

func (d disabledProvider) err() error {
	return fmt.Errorf("%s: %w", d.name, ErrProviderDisabled)
}

func (d disabledProvider) SearchEvents(context.Context, events.SearchRequest) ([]model.Event, []string, error) {
	return nil, nil, d.err()
}

func (d disabledProvider) SearchAttraction(context.Context, string) (model.Attraction, error) {
	return model.Attraction{}, d.err()
}

// VerifiedFanPrograms never errors by contract; a disabled provider
// reports the empty result with a warning.
func (d disabledProvider) VerifiedFanPrograms(context.Context, model.ArtistIdentity) model.VerifiedFanResult {
	return model.VerifiedFanResult{
		Programs: []model.VerifiedFanProgram{},
		Warning:  d.err().Error(),
	}
}

func (d disabledProvider) LookupArtist(context.Context, string) (model.StreamingProfile, error) {
	return model.StreamingProfile{}, d.err()
}

func (d disabledProvider) LookupChannel(context.Context, string) (model.VideoProfile, error) {
	return model.VideoProfile{}, d.err()
}

func (d disabledProvider) LookupHashtag(context.Context, string) (model.ShortVideoStats, error) {
	return model.ShortVideoStats{}, d.err()
}

// typedCache narrows the untyped repository store to the typed cache
// ports the identity and heatmap engines consume. An expired entry
// reads as a miss here: stale-while-revalidate applies to assembled
// reports, not to intermediate pipeline results.
type typedCache[T any] struct {
	store repository.Store
}

func (c typedCache[T]) Lookup(ctx context.Context, key string) (T, bool) {
	var zero T
	entry, err := c.store.Get(ctx, key)
	if err != nil || entry.Expired(time.Now()) {
		return zero, false
	}
	value, ok := entry.Value.(T)
	if !ok {
		return zero, false
	}
	return value, true
}

func (c typedCache[T]) Store(ctx context.Context, key string, value T, ttl time.Duration) {
	c.store.SetWithTTL(ctx, key, value, ttl)
}
