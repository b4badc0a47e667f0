package streaming_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/tourintel/internal/adapters/upstream"
	"github.com/okian/tourintel/internal/adapters/upstream/streaming"
	"github.com/okian/tourintel/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newTestClient(baseURL string) *streaming.Client {
	return streaming.NewClient("test-token",
		streaming.WithBaseURL(baseURL),
		streaming.WithHTTPOptions(
			upstream.WithMaxRetries(1),
			upstream.WithBaseDelay(time.Millisecond),
			upstream.WithRateLimit(1000, 1000),
		),
	)
}

func TestLookupArtist(t *testing.T) {
	Convey("Given the streaming artist catalog", t, func() {
		ctx := context.Background()

		Convey("When the catalog has a match", func() {
			var gotAuth, gotQ, gotType, gotLimit string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				gotQ = r.URL.Query().Get("q")
				gotType = r.URL.Query().Get("type")
				gotLimit = r.URL.Query().Get("limit")
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{
					"artists": {
						"items": [{
							"id": "3Nrfpe0tUJi4K4DXYWgMUX",
							"name": "BTS",
							"popularity": 94,
							"followers": {"total": 75000000},
							"external_urls": {"spotify": "https://open.example/bts"}
						}]
					}
				}`))
			}))
			defer srv.Close()

			client := newTestClient(srv.URL)
			profile, err := client.LookupArtist(ctx, "bts")

			Convey("Then the request should carry the bearer token and search shape", func() {
				So(err, ShouldBeNil)
				So(gotAuth, ShouldEqual, "Bearer test-token")
				So(gotQ, ShouldEqual, "bts")
				So(gotType, ShouldEqual, "artist")
				So(gotLimit, ShouldEqual, "1")
			})

			Convey("And the profile should carry the catalog data", func() {
				So(profile.ID, ShouldEqual, "3Nrfpe0tUJi4K4DXYWgMUX")
				So(profile.Name, ShouldEqual, "BTS")
				So(profile.Popularity, ShouldEqual, 94)
				So(profile.Followers, ShouldEqual, 75000000)
				So(profile.URL, ShouldEqual, "https://open.example/bts")
			})
		})

		Convey("When the catalog omits popularity", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"artists": {"items": [{"id": "x", "name": "Obscure Act"}]}}`))
			}))
			defer srv.Close()

			client := newTestClient(srv.URL)
			profile, err := client.LookupArtist(ctx, "obscure act")

			Convey("Then popularity should degrade to the neutral midpoint", func() {
				So(err, ShouldBeNil)
				So(profile.Popularity, ShouldEqual, 50)
			})
		})

		Convey("When the catalog has no match", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"artists": {"items": []}}`))
			}))
			defer srv.Close()

			client := newTestClient(srv.URL)
			_, err := client.LookupArtist(ctx, "nobody")

			Convey("Then the not-found sentinel should surface", func() {
				So(errors.Is(err, streaming.ErrArtistNotFound), ShouldBeTrue)
			})
		})

		Convey("When the platform is down", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			}))
			defer srv.Close()

			client := newTestClient(srv.URL)
			_, err := client.LookupArtist(ctx, "bts")

			Convey("Then the unavailable sentinel should surface", func() {
				So(errors.Is(err, upstream.ErrUpstreamUnavailable), ShouldBeTrue)
			})
		})
	})
}

func TestFallbackProfile(t *testing.T) {
	Convey("Given an unreachable platform", t, func() {
		Convey("When building the fallback profile", func() {
			profile := streaming.FallbackProfile("bts")

			Convey("Then it should be neutral rather than punishing", func() {
				So(profile.Name, ShouldEqual, "bts")
				So(profile.Followers, ShouldEqual, 0)
				So(profile.Popularity, ShouldEqual, 50)
				So(profile.URL, ShouldEqual, "")
			})
		})
	})
}
