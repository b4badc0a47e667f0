// Package upstream provides the shared HTTP machinery for signal
// source adapters: rate limiting, circuit breaking, bounded retries
// with exponential backoff, and JSON decoding mapped onto a small
// error taxonomy.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/okian/tourintel/pkg/logger"
	"github.com/okian/tourintel/pkg/metrics"
)

// Request outcomes recorded in metrics.
const (
	outcomeSuccess     = "success"
	outcomeError       = "error"
	outcomeRateLimited = "rate_limited"
	outcomeTimeout     = "timeout"
	outcomeBreakerOpen = "breaker_open"
)

// Client tuning defaults.
const (
	defaultTimeout    = 10 * time.Second
	defaultMaxRetries = 5
	defaultBaseDelay  = 1 * time.Second
	defaultRateLimit  = rate.Limit(5) // requests per second
	defaultRateBurst  = 10

	breakerMaxHalfOpenRequests = 3
	breakerCountingInterval    = 1 * time.Minute
	breakerOpenTimeout         = 2 * time.Minute
	breakerMinRequests         = 10
	breakerFailureRatio        = 0.6

	maxResponseBytes = 10 << 20 // 10 MiB
)

// Client wraps an http.Client with the protections every provider
// call needs. One Client per provider so breaker and limiter state
// stay isolated.
type Client struct {
	name       string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	maxRetries int
	baseDelay  time.Duration
	logger     logger.Logger
}

// NewClient creates a provider client with configuration options.
func NewClient(name string, opts ...Option) *Client {
	c := &Client{
		name:       name,
		httpClient: &http.Client{Timeout: defaultTimeout},
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		logger:     logger.Get().Named("upstream." + name),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.limiter == nil {
		c.limiter = rate.NewLimiter(defaultRateLimit, defaultRateBurst)
	}

	c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: breakerMaxHalfOpenRequests,
		Interval:    breakerCountingInterval,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= breakerMinRequests && failureRatio >= breakerFailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.UpdateBreakerState(name, breakerStateGauge(to))
			metrics.RecordBreakerTransition(name, to.String())
			c.logger.Warn(context.Background(), "circuit breaker state changed",
				logger.String("provider", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})

	return c
}

// Name returns the provider name used in logs and metric labels.
func (c *Client) Name() string {
	return c.name
}

// GetJSON issues a GET against url and decodes the 2xx response body
// into out. Transient failures retry with exponential backoff; 429
// honors Retry-After. The returned error wraps one of the package
// sentinels for everything the caller can act on.
func (c *Client) GetJSON(ctx context.Context, url string, header http.Header, out any) error {
	start := time.Now()
	err := c.getJSON(ctx, url, header, out)
	metrics.RecordUpstreamDuration(c.name, float64(time.Since(start).Milliseconds()))
	metrics.RecordUpstreamRequest(c.name, outcomeFor(err))
	return err
}

func (c *Client) getJSON(ctx context.Context, url string, header http.Header, out any) error {
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.RecordUpstreamRetry(c.name)
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %s rate limiter: %w", ErrTimeout, c.name, err)
		}

		resp, err := c.doAttempt(ctx, url, header)
		if err != nil {
			switch {
			case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
				// Open breaker means stop hammering; no point retrying.
				return fmt.Errorf("%w: %s circuit open: %w", ErrUpstreamUnavailable, c.name, err)
			case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
				return fmt.Errorf("%w: %s: %w", ErrTimeout, c.name, err)
			default:
				lastErr = fmt.Errorf("%w: %s: %w", ErrUpstreamUnavailable, c.name, err)
				if waitErr := c.backoff(ctx, attempt, 0); waitErr != nil {
					return waitErr
				}
				continue
			}
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return c.decode(resp, out)
		case resp.StatusCode == http.StatusTooManyRequests:
			retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
			drain(resp)
			metrics.RecordUpstreamRateLimited(c.name)
			lastErr = fmt.Errorf("%w: %s returned 429", ErrRateLimited, c.name)
			c.logger.Warn(ctx, "upstream rate limited",
				logger.String("provider", c.name),
				logger.Duration("retry_after", retryAfter),
			)
			if waitErr := c.backoff(ctx, attempt, retryAfter); waitErr != nil {
				return waitErr
			}
			continue
		default:
			// Remaining non-2xx statuses are not retryable.
			drain(resp)
			return fmt.Errorf("%s: unexpected status %d", c.name, resp.StatusCode)
		}
	}

	return lastErr
}

// doAttempt performs one round trip through the circuit breaker.
// 5xx counts as a breaker failure; everything below does not.
func (c *Client) doAttempt(ctx context.Context, url string, header http.Header) (*http.Response, error) {
	return c.breaker.Execute(func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		for key, values := range header {
			for _, value := range values {
				req.Header.Add(key, value)
			}
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			code := resp.StatusCode
			drain(resp)
			return nil, fmt.Errorf("server error %d", code)
		}
		return resp, nil
	})
}

// decode reads the body into out, mapping failures to
// ErrMalformedResponse.
func (c *Client) decode(resp *http.Response, out any) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: %s: reading body: %w", ErrMalformedResponse, c.name, err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedResponse, c.name, err)
	}
	return nil
}

// backoff sleeps for the attempt's exponential delay, or the server
// supplied Retry-After when longer. Aborts early on context done.
func (c *Client) backoff(ctx context.Context, attempt int, retryAfter time.Duration) error {
	delay := c.baseDelay * (1 << attempt)
	if retryAfter > delay {
		delay = retryAfter
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %s: %w", ErrTimeout, c.name, ctx.Err())
	case <-timer.C:
		return nil
	}
}

// parseRetryAfter reads a Retry-After header given in seconds.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// drain discards and closes a response body so the transport can
// reuse the connection.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
}

// outcomeFor maps an error to its metrics outcome label.
func outcomeFor(err error) string {
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.Is(err, ErrRateLimited):
		return outcomeRateLimited
	case errors.Is(err, ErrTimeout):
		return outcomeTimeout
	case errors.Is(err, gobreaker.ErrOpenState):
		return outcomeBreakerOpen
	default:
		return outcomeError
	}
}

// breakerStateGauge maps a gobreaker state onto the metrics gauge
// values.
func breakerStateGauge(state gobreaker.State) int {
	switch state {
	case gobreaker.StateClosed:
		return metrics.BreakerClosed
	case gobreaker.StateHalfOpen:
		return metrics.BreakerHalfOpen
	case gobreaker.StateOpen:
		return metrics.BreakerOpen
	default:
		return metrics.BreakerClosed
	}
}
