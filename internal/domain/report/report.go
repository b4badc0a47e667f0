// Package report assembles the stable output contract from whatever
// the pipeline stages produced. Every top-level key is present on
// every report; stage failures arrive here as warnings, never as
// errors, and absent per-event scores assemble into explicit policy
// defaults.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/okian/tourintel/internal/domain/model"
	"github.com/okian/tourintel/internal/domain/scoring"
	"github.com/okian/tourintel/pkg/metrics"
)

// DefaultConfidence is the per-event confidence used when no
// confidence model produced a value. The default is policy, not a
// computed quantity.
const DefaultConfidence = 60

// EventResult pairs an event with its score. A nil score means the
// scorer did not run for this event.
type EventResult struct {
	Event model.Event
	Score *model.SelloutScore
}

// Input carries the partial outputs the assembler composes. Any field
// may be zero; the report still carries the full contract.
type Input struct {
	Query    string
	Identity model.ArtistIdentity
	Rating   model.ArtistRating
	Cities   []model.CityWeight
	Events   []EventResult
	Notes    []string
	Warnings []string
}

// Assembler builds immutable intel reports.
type Assembler struct {
	clock func() time.Time
}

// NewAssembler creates an assembler with configuration options.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble builds the final report. Input slices are copied; the
// returned report does not alias caller memory.
func (a *Assembler) Assemble(in Input) model.IntelReport {
	query := in.Query
	if query == "" {
		query = in.Identity.Query
	}
	name := in.Identity.DisplayName()
	if name == "" {
		name = query
	}

	events := make([]model.ScoredEvent, 0, len(in.Events))
	for _, result := range in.Events {
		events = append(events, assembleEvent(result))
	}

	report := model.IntelReport{
		ReportID:     uuid.NewString(),
		ArtistQuery:  query,
		ArtistName:   name,
		GeneratedAt:  a.clock().UTC().Format(time.RFC3339),
		ArtistRating: in.Rating,
		BestCities:   append([]model.CityWeight{}, in.Cities...),
		Events:       events,
		Notes:        append([]string{}, in.Notes...),
		Warnings:     append([]string{}, in.Warnings...),
	}

	metrics.RecordReportAssembled()
	return report
}

// assembleEvent maps one pipeline result onto the contract entry.
// Without a score the entry carries the policy defaults: MED tier and
// the default confidence.
func assembleEvent(result EventResult) model.ScoredEvent {
	entry := model.ScoredEvent{
		ID:         result.Event.ID,
		Name:       result.Event.Name,
		LocalDate:  result.Event.LocalDate,
		City:       result.Event.City,
		Venue:      result.Event.Venue,
		Capacity:   result.Event.Capacity,
		URL:        result.Event.URL,
		DemandTier: scoring.DefaultTier,
		Confidence: DefaultConfidence,
		Reasons:    []string{},
	}

	if result.Score != nil {
		entry.SelloutProbability = result.Score.Probability
		entry.DemandTier = result.Score.Tier
		entry.Reasons = append(entry.Reasons, result.Score.Reasons...)
		entry.MarketHeat = result.Score.MarketHeat
		entry.MarketHeatReason = result.Score.MarketHeatReason
	}

	return entry
}
