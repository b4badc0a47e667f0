// Package video adapts the video platform's channel catalog. Momentum
// is a heuristic derived from subscriber scale; the platform exposes
// no direct trend signal on the cheap API tier.
package video

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/okian/tourintel/internal/adapters/upstream"
	"github.com/okian/tourintel/internal/domain/model"
	"github.com/okian/tourintel/internal/domain/scoring"
	"github.com/okian/tourintel/pkg/logger"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// Momentum heuristic bands over subscriber counts.
const (
	momentumHuge   = 70
	momentumLarge  = 62
	momentumMedium = 56

	hugeFloor   = 10_000_000
	largeFloor  = 3_000_000
	mediumFloor = 1_000_000
)

// Client looks up channel profiles on the video platform.
type Client struct {
	http     *upstream.Client
	baseURL  string
	apiKey   string
	httpOpts []upstream.Option
	logger   logger.Logger
}

// NewClient creates a video platform client authenticated by an API
// key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		logger:  logger.Get().Named("video"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http = upstream.NewClient("video", c.httpOpts...)
	return c
}

// LookupChannel finds the artist's channel and its subscriber count.
// A failed statistics call degrades to zero subscribers instead of
// failing the lookup, because the channel identity alone is useful.
func (c *Client) LookupChannel(ctx context.Context, name string) (model.VideoProfile, error) {
	search := url.Values{}
	search.Set("part", "snippet")
	search.Set("q", name)
	search.Set("type", "channel")
	search.Set("maxResults", "1")
	search.Set("key", c.apiKey)

	var found struct {
		Items []struct {
			Snippet struct {
				ChannelID    string `json:"channelId"`
				ChannelTitle string `json:"channelTitle"`
			} `json:"snippet"`
		} `json:"items"`
	}
	if err := c.http.GetJSON(ctx, c.baseURL+"/search?"+search.Encode(), nil, &found); err != nil {
		return model.VideoProfile{}, fmt.Errorf("video channel search: %w", err)
	}
	if len(found.Items) == 0 {
		return model.VideoProfile{}, fmt.Errorf("%w: %q", ErrChannelNotFound, name)
	}

	profile := model.VideoProfile{
		ChannelID: found.Items[0].Snippet.ChannelID,
		Title:     found.Items[0].Snippet.ChannelTitle,
	}
	if profile.Title == "" {
		profile.Title = name
	}

	stats := url.Values{}
	stats.Set("part", "statistics")
	stats.Set("id", profile.ChannelID)
	stats.Set("key", c.apiKey)

	var channels struct {
		Items []struct {
			Statistics struct {
				SubscriberCount string `json:"subscriberCount"`
			} `json:"statistics"`
		} `json:"items"`
	}
	if err := c.http.GetJSON(ctx, c.baseURL+"/channels?"+stats.Encode(), nil, &channels); err != nil {
		c.logger.Warn(ctx, "channel statistics unavailable",
			logger.String("channel", profile.ChannelID),
			logger.Error(err))
	} else if len(channels.Items) > 0 {
		if subs, err := strconv.ParseInt(channels.Items[0].Statistics.SubscriberCount, 10, 64); err == nil {
			profile.Subscribers = subs
		}
	}

	profile.Momentum = momentumFor(profile.Subscribers)
	return profile, nil
}

// momentumFor maps subscriber scale onto the 0-100 momentum band.
func momentumFor(subscribers int64) int {
	switch {
	case subscribers >= hugeFloor:
		return momentumHuge
	case subscribers >= largeFloor:
		return momentumLarge
	case subscribers >= mediumFloor:
		return momentumMedium
	default:
		return scoring.NeutralMidpoint
	}
}
