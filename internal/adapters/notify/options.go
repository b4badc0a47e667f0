package notify

import (
	"net/http"
	"time"
)

// Option configures a Webhook sink.
type Option func(*Webhook)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(w *Webhook) {
		if client != nil {
			w.httpClient = client
		}
	}
}

// WithTimeout bounds a single delivery attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(w *Webhook) {
		if timeout > 0 {
			w.httpClient.Timeout = timeout
		}
	}
}
