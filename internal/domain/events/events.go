// Package events normalizes heterogeneous ticketing payloads and
// aggregates the upcoming events for a resolved artist. Provider
// failures degrade to an empty list plus a warning; they never stop a
// pipeline run.
package events

import (
	"context"
	"fmt"

	"github.com/okian/tourintel/internal/domain/model"
	"github.com/okian/tourintel/pkg/logger"
)

// TicketingClient is the provider port the aggregator consumes. The
// string slice carries per-record warnings for payloads dropped during
// normalization.
type TicketingClient interface {
	SearchEvents(ctx context.Context, req SearchRequest) ([]model.Event, []string, error)
}

// Aggregator fetches, dedupes and caps upcoming events.
type Aggregator struct {
	ticketing TicketingClient
	logger    logger.Logger
}

// NewAggregator creates an event aggregator over a ticketing client.
func NewAggregator(ticketing TicketingClient) *Aggregator {
	return &Aggregator{
		ticketing: ticketing,
		logger:    logger.Get().Named("events"),
	}
}

// Upcoming returns the upcoming events for the request plus any
// warnings collected along the way. A provider failure yields an empty
// slice and a warning; the raw error is returned alongside so callers
// can tell rate limiting apart from ordinary degradation.
func (a *Aggregator) Upcoming(ctx context.Context, req SearchRequest) ([]model.Event, []string, error) {
	found, warnings, err := a.ticketing.SearchEvents(ctx, req)
	if err != nil {
		a.logger.Warn(ctx, "event search failed",
			logger.String("artist", req.Identity.DisplayName()),
			logger.Error(err))
		return []model.Event{}, append(warnings, fmt.Sprintf("event search failed: %v", err)), err
	}

	events := dedupe(found)
	if len(events) > req.Limit {
		events = events[:req.Limit]
	}
	return events, warnings, nil
}

// dedupe drops events repeating an already-seen ID. Events without an
// ID cannot collide and pass through untouched.
func dedupe(events []model.Event) []model.Event {
	seen := make(map[string]struct{}, len(events))
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if ev.ID != "" {
			if _, dup := seen[ev.ID]; dup {
				continue
			}
			seen[ev.ID] = struct{}{}
		}
		out = append(out, ev)
	}
	return out
}
