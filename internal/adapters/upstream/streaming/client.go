// Package streaming adapts the streaming platform's artist catalog to
// the identity resolver's port.
package streaming

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/okian/tourintel/internal/adapters/upstream"
	"github.com/okian/tourintel/internal/domain/model"
	"github.com/okian/tourintel/internal/domain/scoring"
)

const defaultBaseURL = "https://api.spotify.com/v1"

// Client looks up artist profiles on the streaming platform.
type Client struct {
	http     *upstream.Client
	baseURL  string
	token    string
	httpOpts []upstream.Option
}

// NewClient creates a streaming client authenticated by a bearer
// token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		token:   token,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http = upstream.NewClient("streaming", c.httpOpts...)
	return c
}

// LookupArtist returns the best-matching artist profile. A missing
// popularity value degrades to the neutral midpoint so downstream
// scoring is not skewed by catalog gaps.
func (c *Client) LookupArtist(ctx context.Context, name string) (model.StreamingProfile, error) {
	query := url.Values{}
	query.Set("q", name)
	query.Set("type", "artist")
	query.Set("limit", "1")

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.token)

	var payload struct {
		Artists struct {
			Items []struct {
				ID         string `json:"id"`
				Name       string `json:"name"`
				Popularity int    `json:"popularity"`
				Followers  struct {
					Total int64 `json:"total"`
				} `json:"followers"`
				ExternalURLs struct {
					Spotify string `json:"spotify"`
				} `json:"external_urls"`
			} `json:"items"`
		} `json:"artists"`
	}
	if err := c.http.GetJSON(ctx, c.baseURL+"/search?"+query.Encode(), header, &payload); err != nil {
		return model.StreamingProfile{}, fmt.Errorf("streaming artist search: %w", err)
	}
	if len(payload.Artists.Items) == 0 {
		return model.StreamingProfile{}, fmt.Errorf("%w: %q", ErrArtistNotFound, name)
	}

	item := payload.Artists.Items[0]
	profile := model.StreamingProfile{
		ID:         item.ID,
		Name:       item.Name,
		Followers:  item.Followers.Total,
		Popularity: item.Popularity,
		URL:        item.ExternalURLs.Spotify,
	}
	if profile.Name == "" {
		profile.Name = name
	}
	if profile.Popularity == 0 {
		profile.Popularity = scoring.NeutralMidpoint
	}
	return profile, nil
}

// FallbackProfile is the neutral stand-in used when the platform is
// unreachable: zero followers, midpoint popularity, no URL.
func FallbackProfile(name string) model.StreamingProfile {
	return model.StreamingProfile{
		Name:       name,
		Popularity: scoring.NeutralMidpoint,
	}
}
