package shortvideo_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/tourintel/internal/adapters/upstream"
	"github.com/okian/tourintel/internal/adapters/upstream/shortvideo"
	"github.com/okian/tourintel/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newTestClient(baseURL string) *shortvideo.Client {
	return shortvideo.NewClient("test-key",
		shortvideo.WithBaseURL(baseURL),
		shortvideo.WithHTTPOptions(
			upstream.WithMaxRetries(1),
			upstream.WithBaseDelay(time.Millisecond),
			upstream.WithRateLimit(1000, 1000),
		),
	)
}

func TestLookupHashtag(t *testing.T) {
	Convey("Given the short-video hashtag index", t, func() {
		ctx := context.Background()

		Convey("When the hashtag is trending up", func() {
			var gotKey, gotQ string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotKey = r.Header.Get("X-API-Key")
				gotQ = r.URL.Query().Get("q")
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{
					"hashtags": [{
						"name": "bts",
						"stats": {"views": 128000000000, "weekly_growth": 12.5}
					}]
				}`))
			}))
			defer srv.Close()

			stats, err := newTestClient(srv.URL).LookupHashtag(ctx, "bts")

			Convey("Then the request should be authenticated and keyed by the artist", func() {
				So(err, ShouldBeNil)
				So(gotKey, ShouldEqual, "test-key")
				So(gotQ, ShouldEqual, "bts")
			})

			Convey("And the stats should label the rising trend", func() {
				So(stats.Tag, ShouldEqual, "bts")
				So(stats.Views, ShouldEqual, int64(128000000000))
				So(stats.WeeklyGrowth, ShouldEqual, 12.5)
				So(stats.Trend, ShouldEqual, shortvideo.TrendRising)
			})
		})

		Convey("When growth is flat", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"hashtags": [{"name": "quiet", "stats": {"views": 1000, "weekly_growth": 0}}]}`))
			}))
			defer srv.Close()

			stats, err := newTestClient(srv.URL).LookupHashtag(ctx, "quiet")

			Convey("Then the trend should read stable", func() {
				So(err, ShouldBeNil)
				So(stats.Trend, ShouldEqual, shortvideo.TrendStable)
			})
		})

		Convey("When the platform has no data", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"hashtags": []}`))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).LookupHashtag(ctx, "nobody")

			Convey("Then the no-data sentinel should surface", func() {
				So(errors.Is(err, shortvideo.ErrNoHashtagData), ShouldBeTrue)
			})
		})

		Convey("When the platform is down", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).LookupHashtag(ctx, "bts")

			Convey("Then the unavailable sentinel should surface", func() {
				So(errors.Is(err, upstream.ErrUpstreamUnavailable), ShouldBeTrue)
			})
		})
	})
}
