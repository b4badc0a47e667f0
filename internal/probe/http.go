package probe

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

// HTTPClient wraps http.Client with a timeout.
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request bound to ctx.
func (c *HTTPClient) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// FetchResult is one intel fetch outcome: the raw body for
// key-presence checks plus the decoded report for value checks.
type FetchResult struct {
	Query  Query
	Raw    []byte
	Report Report
	Err    error
}

// intelURL builds the intel endpoint URL for a query.
func intelURL(baseURL string, q Query) string {
	params := url.Values{}
	params.Set("artist", q.Artist)
	if q.Region != "" {
		params.Set("region", q.Region)
	}
	return baseURL + "/api/v1/intel?" + params.Encode()
}

// heatmapURL builds the heatmap endpoint URL for a query.
func heatmapURL(baseURL string, q Query) string {
	params := url.Values{}
	params.Set("artist", q.Artist)
	if q.Region != "" {
		params.Set("region", q.Region)
	}
	return baseURL + "/api/v1/heatmap?" + params.Encode()
}

// fetchReports fetches the intel report for every query concurrently.
func fetchReports(ctx context.Context, config *Config, queries []Query, stats *Stats) ([]FetchResult, error) {
	log.Printf("📤 Fetching %d intel reports with %d workers...", len(queries), config.Workers)

	client := newHTTPClient(config.Timeout)

	var (
		fetched int64
		failed  int64
	)

	queryChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	results := make([]FetchResult, len(queries))
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for idx := range queryChan {
				select {
				case <-ctx.Done():
					return
				default:
					result := fetchSingleReport(ctx, client, config.BaseURL, queries[idx])
					results[idx] = result

					if result.Err != nil {
						atomic.AddInt64(&failed, 1)
						if config.Verbose {
							log.Printf("❌ %q (%s): %v", result.Query.Artist, result.Query.Region, result.Err)
						}
					} else {
						atomic.AddInt64(&fetched, 1)
					}
				}
			}
		}()
	}

	go func() {
		defer close(queryChan)
		for i := range queries {
			select {
			case <-ctx.Done():
				return
			case queryChan <- i:
			}
		}
	}()

	wg.Wait()

	stats.ReportsFetched = int(atomic.LoadInt64(&fetched))
	stats.ReportsFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`✅ Report fetching completed:
   Fetched: %d
   Failed: %d
`, stats.ReportsFetched, stats.ReportsFailed)

	return results, nil
}

// fetchSingleReport fetches and decodes one intel report.
func fetchSingleReport(ctx context.Context, client *HTTPClient, baseURL string, q Query) FetchResult {
	result := FetchResult{Query: q}

	resp, err := client.Get(ctx, intelURL(baseURL, q))
	if err != nil {
		result.Err = fmt.Errorf("request failed: %w", err)
		return result
	}

	body, err := readResponseBody(resp)
	if err != nil {
		result.Err = fmt.Errorf("failed to read response: %w", err)
		return result
	}

	if resp.StatusCode != StatusOK {
		result.Err = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
		return result
	}

	result.Raw = body
	if err := json.Unmarshal(body, &result.Report); err != nil {
		result.Err = fmt.Errorf("failed to decode report: %w", err)
	}
	return result
}

// fetchHeatmap fetches the cached heatmap for one query. A 404 means
// no heatmap is cached yet, reported as an empty list without error.
func fetchHeatmap(ctx context.Context, client *HTTPClient, baseURL string, q Query) ([]CityWeight, error) {
	resp, err := client.Get(ctx, heatmapURL(baseURL, q))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Cities []CityWeight `json:"cities"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode heatmap: %w", err)
	}
	return payload.Cities, nil
}
