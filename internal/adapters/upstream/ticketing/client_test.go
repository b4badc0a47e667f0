package ticketing_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/tourintel/internal/adapters/upstream"
	"github.com/okian/tourintel/internal/adapters/upstream/ticketing"
	"github.com/okian/tourintel/internal/domain/events"
	"github.com/okian/tourintel/internal/domain/model"
	"github.com/okian/tourintel/internal/domain/types"
	"github.com/okian/tourintel/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newTestClient(baseURL string) *ticketing.Client {
	return ticketing.NewClient("test-key",
		ticketing.WithBaseURL(baseURL),
		ticketing.WithHTTPOptions(
			upstream.WithMaxRetries(1),
			upstream.WithBaseDelay(time.Millisecond),
			upstream.WithRateLimit(1000, 1000),
		),
	)
}

func TestSearchEvents(t *testing.T) {
	Convey("Given a ticketing discovery endpoint", t, func() {
		ctx := context.Background()
		identity := model.ArtistIdentity{Query: "bts", Name: "BTS"}

		Convey("When searching with a regional request", func() {
			var gotQuery map[string]string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				gotQuery = map[string]string{
					"apikey":      q.Get("apikey"),
					"keyword":     q.Get("keyword"),
					"segmentName": q.Get("segmentName"),
					"size":        q.Get("size"),
					"sort":        q.Get("sort"),
					"countryCode": q.Get("countryCode"),
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{
					"_embedded": {
						"events": [
							{
								"id": "ev1",
								"name": "BTS Night One",
								"url": "https://tickets.example/ev1",
								"dates": {"start": {"localDate": "2026-09-12"}},
								"_embedded": {"venues": [{"name": "SoFi Stadium", "city": {"name": "Los Angeles"}}]}
							},
							{"id": "broken-no-name"}
						]
					}
				}`))
			}))
			defer srv.Close()

			client := newTestClient(srv.URL)
			req := events.NewSearchRequest(identity,
				events.WithRegion(types.RegionNA),
				events.WithLimit(25),
			)
			found, warnings, err := client.SearchEvents(ctx, req)

			Convey("Then the provider call should carry the canonical parameters", func() {
				So(err, ShouldBeNil)
				So(gotQuery["apikey"], ShouldEqual, "test-key")
				So(gotQuery["keyword"], ShouldEqual, "BTS")
				So(gotQuery["segmentName"], ShouldEqual, "Music")
				So(gotQuery["size"], ShouldEqual, "25")
				So(gotQuery["sort"], ShouldEqual, "date,asc")
				So(gotQuery["countryCode"], ShouldEqual, "US,CA")
			})

			Convey("And malformed records should drop with a warning", func() {
				So(found, ShouldHaveLength, 1)
				So(found[0].Name, ShouldEqual, "BTS Night One")
				So(found[0].City, ShouldEqual, "Los Angeles")
				So(warnings, ShouldHaveLength, 1)
				So(warnings[0], ShouldContainSubstring, "malformed")
			})
		})

		Convey("When searching globally", func() {
			var sawCountry bool
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				sawCountry = r.URL.Query().Has("countryCode")
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"_embedded": {"events": []}}`))
			}))
			defer srv.Close()

			client := newTestClient(srv.URL)
			req := events.NewSearchRequest(identity, events.WithRegion(types.RegionGlobal))
			found, warnings, err := client.SearchEvents(ctx, req)

			Convey("Then the country filter should be omitted", func() {
				So(err, ShouldBeNil)
				So(sawCountry, ShouldBeFalse)
				So(found, ShouldBeEmpty)
				So(warnings, ShouldBeEmpty)
			})
		})

		Convey("When the provider is unreachable", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}))
			defer srv.Close()

			client := newTestClient(srv.URL)
			_, _, err := client.SearchEvents(ctx, events.NewSearchRequest(identity))

			Convey("Then the wrapped sentinel should surface", func() {
				So(errors.Is(err, upstream.ErrUpstreamUnavailable), ShouldBeTrue)
			})
		})
	})
}

func TestSearchAttraction(t *testing.T) {
	Convey("Given an attraction search endpoint", t, func() {
		ctx := context.Background()

		Convey("When the provider has a match", func() {
			var gotQuery map[string]string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				gotQuery = map[string]string{
					"classificationName": q.Get("classificationName"),
					"size":               q.Get("size"),
					"sort":               q.Get("sort"),
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{
					"_embedded": {
						"attractions": [{
							"id": "K8vZ9171",
							"name": "BTS",
							"url": "https://tickets.example/bts",
							"externalLinks": {"homepage": [{"url": "https://bts.example"}]}
						}]
					}
				}`))
			}))
			defer srv.Close()

			client := newTestClient(srv.URL)
			attraction, err := client.SearchAttraction(ctx, "BTS")

			Convey("Then the attraction identity should be returned", func() {
				So(err, ShouldBeNil)
				So(gotQuery["classificationName"], ShouldEqual, "music")
				So(gotQuery["size"], ShouldEqual, "1")
				So(gotQuery["sort"], ShouldEqual, "relevance,desc")
				So(attraction.ID, ShouldEqual, "K8vZ9171")
				So(attraction.Name, ShouldEqual, "BTS")
				So(attraction.URL, ShouldEqual, "https://tickets.example/bts")
				So(attraction.OfficialSite, ShouldEqual, "https://bts.example")
			})
		})

		Convey("When the provider has no match", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{}`))
			}))
			defer srv.Close()

			client := newTestClient(srv.URL)
			_, err := client.SearchAttraction(ctx, "Nobody Plays Here")

			Convey("Then the no-match sentinel should be returned", func() {
				So(errors.Is(err, ticketing.ErrNoAttraction), ShouldBeTrue)
			})
		})
	})
}

func TestVerifiedFanPrograms(t *testing.T) {
	Convey("Given a verified-fan scan", t, func() {
		ctx := context.Background()
		identity := model.ArtistIdentity{Query: "bts", Name: "BTS"}

		Convey("When presales carry verified-fan signals", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{
					"_embedded": {
						"events": [
							{
								"name": "BTS World Tour",
								"url": "https://tickets.example/ev1",
								"sales": {
									"presales": [
										{"name": "Verified Fan Onsale", "url": "https://tickets.example/vf"},
										{"name": "General Presale", "url": "https://tickets.example/gp"}
									]
								}
							},
							{
								"name": "BTS Fan Registration Window",
								"url": "https://tickets.example/ev2"
							}
						]
					}
				}`))
			}))
			defer srv.Close()

			client := newTestClient(srv.URL)
			result := client.VerifiedFanPrograms(ctx, identity)

			Convey("Then the flagged programs should be collected", func() {
				So(result.Found(), ShouldBeTrue)
				So(result.Warning, ShouldEqual, "")
				So(result.Programs, ShouldHaveLength, 2)
				So(result.Programs[0].Name, ShouldEqual, "Verified Fan Onsale")
				So(result.Programs[0].URL, ShouldEqual, "https://tickets.example/vf")
				So(result.Programs[1].Name, ShouldEqual, "BTS Fan Registration Window")
			})
		})

		Convey("When no event carries a signal", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"_embedded": {"events": [{"name": "Plain Show", "url": "https://t.example/1"}]}}`))
			}))
			defer srv.Close()

			client := newTestClient(srv.URL)
			result := client.VerifiedFanPrograms(ctx, identity)

			Convey("Then the result should be empty without a warning", func() {
				So(result.Found(), ShouldBeFalse)
				So(result.Warning, ShouldEqual, "")
			})
		})

		Convey("When the provider fails", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer srv.Close()

			client := newTestClient(srv.URL)
			result := client.VerifiedFanPrograms(ctx, identity)

			Convey("Then the lookup should degrade to empty with a warning", func() {
				So(result.Found(), ShouldBeFalse)
				So(result.Programs, ShouldBeEmpty)
				So(result.Warning, ShouldContainSubstring, "verified fan lookup failed")
			})
		})
	})
}
