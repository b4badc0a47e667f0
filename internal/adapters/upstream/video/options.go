package video

import (
	"strings"

	"github.com/okian/tourintel/internal/adapters/upstream"
)

// Option configures the video client.
type Option func(*Client)

// WithBaseURL overrides the platform endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPOptions forwards options to the shared upstream client.
func WithHTTPOptions(opts ...upstream.Option) Option {
	return func(c *Client) {
		c.httpOpts = append(c.httpOpts, opts...)
	}
}
