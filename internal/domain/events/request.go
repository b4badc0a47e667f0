package events

import (
	"strings"

	"github.com/okian/tourintel/internal/domain/model"
	"github.com/okian/tourintel/internal/domain/types"
)

const (
	// DefaultLimit is the number of events fetched when a caller does
	// not ask for a specific amount.
	DefaultLimit = 10
	// MaxLimit is the provider page size ceiling.
	MaxLimit = 200
)

// SearchRequest is the canonical event search input. Every historical
// call shape normalizes into this struct before a provider is touched.
type SearchRequest struct {
	Identity model.ArtistIdentity
	Region   types.Region
	Limit    int
}

// RequestOption mutates a SearchRequest under construction.
type RequestOption func(*SearchRequest)

// WithRegion restricts the search to a market region.
func WithRegion(region types.Region) RequestOption {
	return func(r *SearchRequest) {
		r.Region = region
	}
}

// WithLimit caps the number of events returned.
func WithLimit(limit int) RequestOption {
	return func(r *SearchRequest) {
		r.Limit = limit
	}
}

// NewSearchRequest builds a canonical search request for an artist
// identity. The limit defaults to DefaultLimit and is clamped to
// [1, MaxLimit].
func NewSearchRequest(identity model.ArtistIdentity, opts ...RequestOption) SearchRequest {
	req := SearchRequest{
		Identity: identity,
		Limit:    DefaultLimit,
	}
	for _, opt := range opts {
		opt(&req)
	}
	if req.Limit < 1 {
		req.Limit = 1
	}
	if req.Limit > MaxLimit {
		req.Limit = MaxLimit
	}
	return req
}

// ParseLegacyArgs normalizes the historical positional call shapes
// (artist), (artist, limit), (artist, region) and (artist, region,
// limit) into a canonical request. Integer arguments set the limit and
// string arguments set the region; when two arguments carry the same
// kind the later one wins. Arguments past the second are ignored.
func ParseLegacyArgs(artist string, args ...any) (SearchRequest, error) {
	query := strings.TrimSpace(artist)
	if query == "" {
		return SearchRequest{}, ErrEmptyArtist
	}

	if len(args) > 2 {
		args = args[:2]
	}
	opts := make([]RequestOption, 0, len(args))
	for _, arg := range args {
		switch v := arg.(type) {
		case int:
			opts = append(opts, WithLimit(v))
		case int64:
			opts = append(opts, WithLimit(int(v)))
		case float64:
			opts = append(opts, WithLimit(int(v)))
		case string:
			opts = append(opts, WithRegion(types.ParseRegion(v)))
		}
	}
	return NewSearchRequest(model.ArtistIdentity{Query: query}, opts...), nil
}
