// Package shortvideo adapts the short-video platform's hashtag stats,
// the third popularity bucket behind streaming and video.
package shortvideo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/okian/tourintel/internal/adapters/upstream"
	"github.com/okian/tourintel/internal/domain/model"
)

const defaultBaseURL = "https://api.tikapi.io/public"

// Trend labels attached to hashtag stats.
const (
	TrendRising = "rising"
	TrendStable = "stable"
)

// Client looks up hashtag engagement on the short-video platform.
type Client struct {
	http     *upstream.Client
	baseURL  string
	apiKey   string
	httpOpts []upstream.Option
}

// NewClient creates a short-video client authenticated by an API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http = upstream.NewClient("shortvideo", c.httpOpts...)
	return c
}

// LookupHashtag returns view volume and weekly growth for the artist's
// hashtag, labeled rising while growth is positive.
func (c *Client) LookupHashtag(ctx context.Context, name string) (model.ShortVideoStats, error) {
	query := url.Values{}
	query.Set("q", name)

	header := http.Header{}
	header.Set("X-API-Key", c.apiKey)

	var payload struct {
		Hashtags []struct {
			Name  string `json:"name"`
			Stats struct {
				Views        int64   `json:"views"`
				WeeklyGrowth float64 `json:"weekly_growth"`
			} `json:"stats"`
		} `json:"hashtags"`
	}
	if err := c.http.GetJSON(ctx, c.baseURL+"/hashtag/search?"+query.Encode(), header, &payload); err != nil {
		return model.ShortVideoStats{}, fmt.Errorf("short-video hashtag search: %w", err)
	}
	if len(payload.Hashtags) == 0 {
		return model.ShortVideoStats{}, fmt.Errorf("%w: %q", ErrNoHashtagData, name)
	}

	tag := payload.Hashtags[0]
	stats := model.ShortVideoStats{
		Tag:          tag.Name,
		Views:        tag.Stats.Views,
		WeeklyGrowth: tag.Stats.WeeklyGrowth,
		Trend:        TrendStable,
	}
	if stats.WeeklyGrowth > 0 {
		stats.Trend = TrendRising
	}
	return stats, nil
}
