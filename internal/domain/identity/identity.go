// Package identity resolves a raw artist query into a canonical
// identity by consulting the ticketing, streaming, and video
// directories. Resolution never fails outright: adapters that error
// contribute a warning instead of data, and an identity carrying only
// the query is still a usable pipeline input.
package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/tourintel/internal/domain/model"
	"github.com/okian/tourintel/internal/domain/types"
	"github.com/okian/tourintel/pkg/logger"
	"github.com/okian/tourintel/pkg/metrics"
)

// Source labels recorded on a resolved identity.
const (
	SourceStreaming = "streaming"
	SourceVideo     = "video"
	SourceTicketing = "ticketing"
)

// Resolution outcomes recorded in metrics.
const (
	outcomeCacheHit   = "cache_hit"
	outcomeResolved   = "resolved"
	outcomePartial    = "partial"
	outcomeUnresolved = "unresolved"
)

const (
	defaultTTL = time.Hour

	// Confidence blends how many directories contributed against how
	// closely the canonical name matches the query.
	contributionShare = 0.5
	similarityShare   = 0.5

	directoriesCalled = 3
)

// StreamingDirectory finds an artist on the streaming platform.
type StreamingDirectory interface {
	LookupArtist(ctx context.Context, name string) (model.StreamingProfile, error)
}

// VideoDirectory finds an artist channel on the video platform.
type VideoDirectory interface {
	LookupChannel(ctx context.Context, name string) (model.VideoProfile, error)
}

// TicketingDirectory finds the artist's ticketing attraction.
type TicketingDirectory interface {
	SearchAttraction(ctx context.Context, name string) (model.Attraction, error)
}

// Cache is the typed persistence port for resolved identities.
type Cache interface {
	Lookup(ctx context.Context, key string) (model.ArtistIdentity, bool)
	Store(ctx context.Context, key string, identity model.ArtistIdentity, ttl time.Duration)
}

// Resolver builds canonical artist identities.
type Resolver struct {
	ticketing TicketingDirectory
	streaming StreamingDirectory
	video     VideoDirectory
	cache     Cache
	ttl       time.Duration
	logger    logger.Logger
}

// NewResolver creates a resolver over the three directories and a
// cache.
func NewResolver(ticketing TicketingDirectory, streaming StreamingDirectory, video VideoDirectory, cache Cache, opts ...Option) *Resolver {
	r := &Resolver{
		ticketing: ticketing,
		streaming: streaming,
		video:     video,
		cache:     cache,
		ttl:       defaultTTL,
		logger:    logger.Get().Named("identity"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve turns a raw query into a canonical identity. Directory
// failures degrade to warnings; the returned identity is always
// usable. Results are cached per normalized query.
func (r *Resolver) Resolve(ctx context.Context, query string) (model.ArtistIdentity, []string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return model.ArtistIdentity{}, nil
	}

	key := types.ResolveKey(query)
	if cached, ok := r.cache.Lookup(ctx, key); ok {
		metrics.RecordResolution(outcomeCacheHit)
		return cached, nil
	}

	identity := model.ArtistIdentity{Query: query}
	var warnings []string

	// The ticketing catalog matches best on the platform-canonical
	// name, so the streaming result doubles as the attraction keyword.
	keyword := query

	profile, err := r.streaming.LookupArtist(ctx, query)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("streaming resolve failed: %v", err))
		r.logger.Warn(ctx, "streaming resolve failed",
			logger.String("artist", query),
			logger.Error(err))
	} else {
		identity.Name = profile.Name
		identity.StreamingID = profile.ID
		identity.StreamingURL = profile.URL
		identity.Sources = append(identity.Sources, SourceStreaming)
		if profile.Name != "" {
			keyword = profile.Name
		}
	}

	channel, err := r.video.LookupChannel(ctx, query)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("video resolve failed: %v", err))
		r.logger.Warn(ctx, "video resolve failed",
			logger.String("artist", query),
			logger.Error(err))
	} else {
		if identity.Name == "" {
			identity.Name = channel.Title
		}
		identity.VideoChannelID = channel.ChannelID
		identity.Sources = append(identity.Sources, SourceVideo)
	}

	attraction, err := r.ticketing.SearchAttraction(ctx, keyword)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("ticketing resolve failed: %v", err))
		r.logger.Warn(ctx, "ticketing resolve failed",
			logger.String("artist", keyword),
			logger.Error(err))
	} else {
		identity.TicketingID = attraction.ID
		identity.TicketingURL = attraction.URL
		identity.OfficialSite = attraction.OfficialSite
		identity.Sources = append(identity.Sources, SourceTicketing)
	}

	if !identity.Resolved() {
		metrics.RecordResolution(outcomeUnresolved)
		return identity, warnings
	}

	identity.Confidence = confidence(identity, query)
	r.cache.Store(ctx, key, identity, r.ttl)

	if len(identity.Sources) == directoriesCalled {
		metrics.RecordResolution(outcomeResolved)
	} else {
		metrics.RecordResolution(outcomePartial)
	}
	return identity, warnings
}

// confidence blends the fraction of directories that contributed with
// the name similarity between the canonical name and the query.
func confidence(identity model.ArtistIdentity, query string) float64 {
	fraction := float64(len(identity.Sources)) / float64(directoriesCalled)
	return contributionShare*fraction + similarityShare*similarity(identity.DisplayName(), query)
}
