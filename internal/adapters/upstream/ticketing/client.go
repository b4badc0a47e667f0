// Package ticketing adapts the ticketing provider's discovery API to
// the domain ports: event search, attraction lookup and verified-fan
// program detection.
package ticketing

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/tourintel/internal/adapters/upstream"
	"github.com/okian/tourintel/internal/domain/events"
	"github.com/okian/tourintel/internal/domain/model"
	"github.com/okian/tourintel/pkg/logger"
)

const (
	defaultBaseURL = "https://app.ticketmaster.com/discovery/v2"

	// musicSegment keeps searches inside the concert catalog.
	musicSegment = "Music"

	eventSort      = "date,asc"
	attractionSort = "relevance,desc"

	// verifiedFanSearchSize is how many events are scanned for
	// verified-fan presale signals per lookup.
	verifiedFanSearchSize = 50
)

// Client talks to the ticketing discovery API.
type Client struct {
	http     *upstream.Client
	baseURL  string
	apiKey   string
	httpOpts []upstream.Option
	logger   logger.Logger
}

// NewClient creates a ticketing client authenticated by an API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		logger:  logger.Get().Named("ticketing"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http = upstream.NewClient("ticketing", c.httpOpts...)
	return c
}

// SearchEvents runs one discovery search for the request's artist,
// filtered to the region's country codes. Records failing
// normalization are dropped with a warning.
func (c *Client) SearchEvents(ctx context.Context, req events.SearchRequest) ([]model.Event, []string, error) {
	query := url.Values{}
	query.Set("keyword", req.Identity.DisplayName())
	query.Set("segmentName", musicSegment)
	query.Set("size", strconv.Itoa(req.Limit))
	query.Set("sort", eventSort)
	if codes := req.Region.CountryCodes(); codes != nil {
		query.Set("countryCode", strings.Join(codes, ","))
	}

	var payload struct {
		Embedded struct {
			Events []map[string]any `json:"events"`
		} `json:"_embedded"`
	}
	if err := c.http.GetJSON(ctx, c.endpoint("events.json", query), nil, &payload); err != nil {
		return nil, nil, fmt.Errorf("ticketing event search: %w", err)
	}

	found := make([]model.Event, 0, len(payload.Embedded.Events))
	var warnings []string
	for i, raw := range payload.Embedded.Events {
		ev, ok := events.Normalize(raw)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("dropped malformed ticketing record %d", i))
			continue
		}
		found = append(found, ev)
	}
	return found, warnings, nil
}

// SearchAttraction finds the best-matching attraction for an artist
// name, carrying the provider IDs and official site link used by the
// identity resolver.
func (c *Client) SearchAttraction(ctx context.Context, name string) (model.Attraction, error) {
	query := url.Values{}
	query.Set("keyword", name)
	query.Set("classificationName", strings.ToLower(musicSegment))
	query.Set("size", "1")
	query.Set("sort", attractionSort)

	var payload struct {
		Embedded struct {
			Attractions []struct {
				ID            string `json:"id"`
				Name          string `json:"name"`
				URL           string `json:"url"`
				ExternalLinks struct {
					Homepage []struct {
						URL string `json:"url"`
					} `json:"homepage"`
				} `json:"externalLinks"`
			} `json:"attractions"`
		} `json:"_embedded"`
	}
	if err := c.http.GetJSON(ctx, c.endpoint("attractions.json", query), nil, &payload); err != nil {
		return model.Attraction{}, fmt.Errorf("ticketing attraction search: %w", err)
	}
	if len(payload.Embedded.Attractions) == 0 {
		return model.Attraction{}, fmt.Errorf("%w: %q", ErrNoAttraction, name)
	}

	item := payload.Embedded.Attractions[0]
	attraction := model.Attraction{
		ID:   item.ID,
		Name: item.Name,
		URL:  item.URL,
	}
	if len(item.ExternalLinks.Homepage) > 0 {
		attraction.OfficialSite = item.ExternalLinks.Homepage[0].URL
	}
	return attraction, nil
}

// VerifiedFanPrograms scans the artist's upcoming events for
// verified-fan presale signals. It never fails: provider errors
// produce an empty result carrying a warning instead.
func (c *Client) VerifiedFanPrograms(ctx context.Context, identity model.ArtistIdentity) model.VerifiedFanResult {
	query := url.Values{}
	query.Set("keyword", identity.DisplayName())
	query.Set("segmentName", musicSegment)
	query.Set("size", strconv.Itoa(verifiedFanSearchSize))

	var payload struct {
		Embedded struct {
			Events []struct {
				Name  string `json:"name"`
				URL   string `json:"url"`
				Sales struct {
					Presales []struct {
						Name string `json:"name"`
						URL  string `json:"url"`
					} `json:"presales"`
				} `json:"sales"`
			} `json:"events"`
		} `json:"_embedded"`
	}
	if err := c.http.GetJSON(ctx, c.endpoint("events.json", query), nil, &payload); err != nil {
		c.logger.Warn(ctx, "verified fan lookup failed",
			logger.String("artist", identity.DisplayName()),
			logger.Error(err))
		return model.VerifiedFanResult{
			Programs: []model.VerifiedFanProgram{},
			Warning:  fmt.Sprintf("verified fan lookup failed: %v", err),
		}
	}

	programs := make([]model.VerifiedFanProgram, 0, 2)
	seen := make(map[string]struct{})
	add := func(name, link string) {
		key := name + "|" + link
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		programs = append(programs, model.VerifiedFanProgram{Name: name, URL: link})
	}
	for _, ev := range payload.Embedded.Events {
		for _, presale := range ev.Sales.Presales {
			if verifiedFanSignal(presale.Name) || verifiedFanSignalInURL(presale.URL) {
				link := presale.URL
				if link == "" {
					link = ev.URL
				}
				add(presale.Name, link)
			}
		}
		if verifiedFanSignal(ev.Name) || verifiedFanSignalInURL(ev.URL) {
			add(ev.Name, ev.URL)
		}
	}
	return model.VerifiedFanResult{Programs: programs}
}

func (c *Client) endpoint(path string, query url.Values) string {
	query.Set("apikey", c.apiKey)
	return c.baseURL + "/" + path + "?" + query.Encode()
}

func verifiedFanSignal(text string) bool {
	t := strings.ToLower(text)
	return strings.Contains(t, "verified fan") ||
		strings.Contains(t, "verifiedfan") ||
		strings.Contains(t, "verified-fan") ||
		strings.Contains(t, "fan registration")
}

func verifiedFanSignalInURL(link string) bool {
	u := strings.ToLower(link)
	for _, needle := range []string{"verifiedfan", "verified-fan", "verified_fan", "fan-registration"} {
		if strings.Contains(u, needle) {
			return true
		}
	}
	return false
}
