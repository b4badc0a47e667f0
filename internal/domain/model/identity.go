// Package model contains domain models passed between layers.
package model

// ArtistIdentity is the canonical identity a pipeline run operates on.
// One resolved identity owns every event in that run.
type ArtistIdentity struct {
	Query          string  // raw caller query
	Name           string  // canonical display name
	TicketingID    string  // provider attraction id
	TicketingURL   string
	OfficialSite   string
	StreamingID    string
	StreamingURL   string
	VideoChannelID string
	Confidence     float64  // 0..1 resolution confidence
	Sources        []string // adapters that contributed data
}

// Resolved reports whether any adapter contributed to the identity.
func (a ArtistIdentity) Resolved() bool {
	return len(a.Sources) > 0
}

// DisplayName returns the canonical name, falling back to the query.
func (a ArtistIdentity) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Query
}

// Attraction is a ticketing-provider attraction search hit.
type Attraction struct {
	ID           string
	Name         string
	URL          string
	OfficialSite string
}
