package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/okian/tourintel/internal/adapters/upstream"
	service "github.com/okian/tourintel/internal/app"
	"github.com/okian/tourintel/internal/domain/model"
	"github.com/okian/tourintel/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// eventually polls check until it passes or the timeout runs out.
func eventually(timeout time.Duration, check func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if check() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return check()
}

func TestServiceIntegration_ConcurrentMissCollapse(t *testing.T) {
	Convey("Given a started service and a provider held mid-flight", t, func() {
		tk := &stubTicketing{
			events:  fixtureEvents(),
			entered: make(chan struct{}),
			block:   make(chan struct{}),
		}
		svc := newTestService(tk)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When many callers resolve the same cold key at once", func() {
			type outcome struct {
				intel model.IntelReport
				err   error
			}

			const callers = 8
			results := make(chan outcome, callers)
			var wg sync.WaitGroup
			for i := 0; i < callers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					intel, err := svc.ResolveIntel(ctx, "bts", types.RegionUS)
					results <- outcome{intel: intel, err: err}
				}()
			}

			// Hold the winning run inside the provider until the other
			// callers reach the in-flight wait, then let it finish.
			<-tk.entered
			time.Sleep(100 * time.Millisecond)
			close(tk.block)
			wg.Wait()
			close(results)

			collected := make([]outcome, 0, callers)
			for res := range results {
				collected = append(collected, res)
			}

			Convey("Then every caller should get the single computed report", func() {
				ids := make(map[string]struct{})
				for _, res := range collected {
					So(res.err, ShouldBeNil)
					So(res.intel.ReportID, ShouldNotBeEmpty)
					So(res.intel.ArtistQuery, ShouldEqual, "bts")
					ids[res.intel.ReportID] = struct{}{}
				}
				So(ids, ShouldHaveLength, 1)
			})

			Convey("And the provider should be hit once for events and once for the heatmap", func() {
				So(tk.calls(), ShouldEqual, 2)
			})
		})
	})
}

func TestServiceIntegration_StaleWhileRevalidate(t *testing.T) {
	Convey("Given a service with a very short report TTL", t, func() {
		tk := &stubTicketing{events: fixtureEvents()}
		svc := newTestService(tk, service.WithReportTTL(60*time.Millisecond))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		first, err := svc.ResolveIntel(ctx, "bts", types.RegionUS)
		So(err, ShouldBeNil)

		Convey("When the entry goes stale", func() {
			time.Sleep(90 * time.Millisecond)

			stale, err := svc.ResolveIntel(ctx, "bts", types.RegionUS)

			Convey("Then the old report should serve immediately", func() {
				So(err, ShouldBeNil)
				So(stale.ReportID, ShouldEqual, first.ReportID)
			})

			Convey("And a background refresh should replace it", func() {
				So(err, ShouldBeNil)
				replaced := eventually(2*time.Second, func() bool {
					intel, err := svc.ResolveIntel(ctx, "bts", types.RegionUS)
					return err == nil && intel.ReportID != first.ReportID
				})
				So(replaced, ShouldBeTrue)
			})
		})
	})
}

func TestServiceIntegration_RateLimitPreservesCache(t *testing.T) {
	Convey("Given a cached report and a provider that starts rate limiting", t, func() {
		tk := &stubTicketing{events: fixtureEvents()}
		svc := newTestService(tk, service.WithReportTTL(60*time.Millisecond))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		first, err := svc.ResolveIntel(ctx, "bts", types.RegionUS)
		So(err, ShouldBeNil)
		So(tk.calls(), ShouldEqual, 2)

		tk.setSearchErr(fmt.Errorf("ticketing search: %w", upstream.ErrRateLimited))

		Convey("When the entry goes stale and the refresh fails", func() {
			time.Sleep(90 * time.Millisecond)

			stale, err := svc.ResolveIntel(ctx, "bts", types.RegionUS)

			Convey("Then the old report should still serve", func() {
				So(err, ShouldBeNil)
				So(stale.ReportID, ShouldEqual, first.ReportID)
			})

			Convey("And the failed run should extend the entry instead of evicting it", func() {
				So(err, ShouldBeNil)
				So(eventually(2*time.Second, func() bool { return tk.calls() >= 3 }), ShouldBeTrue)
				time.Sleep(50 * time.Millisecond)

				kept, err := svc.ResolveIntel(ctx, "bts", types.RegionUS)
				So(err, ShouldBeNil)
				So(kept.ReportID, ShouldEqual, first.ReportID)
				So(tk.calls(), ShouldEqual, 3)
			})
		})
	})
}

func TestServiceIntegration_UnknownArtistContract(t *testing.T) {
	Convey("Given providers that know nothing about the artist", t, func() {
		notFound := fmt.Errorf("artist lookup: %w", upstream.ErrUpstreamUnavailable)
		tk := &stubTicketing{
			searchErr:     fmt.Errorf("event search: %w", upstream.ErrUpstreamUnavailable),
			attractionErr: notFound,
		}
		svc := service.New(
			service.WithTicketing(tk),
			service.WithStreaming(stubStreaming{err: notFound}),
			service.WithVideo(stubVideo{err: notFound}),
			service.WithShortVideo(stubShortVideo{err: notFound}),
			service.WithWorkerCount(1),
			service.WithRefreshInterval(0),
		)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When resolving the unknown artist", func() {
			intel, err := svc.ResolveIntel(ctx, "nobody you have heard of", "")

			Convey("Then the pipeline should degrade instead of failing", func() {
				So(err, ShouldBeNil)
				So(intel.ReportID, ShouldNotBeEmpty)
				So(intel.ArtistQuery, ShouldEqual, "nobody you have heard of")
				So(intel.ArtistName, ShouldEqual, "nobody you have heard of")
				So(intel.Events, ShouldNotBeNil)
				So(intel.Events, ShouldHaveLength, 0)
				So(intel.Warnings, ShouldNotBeEmpty)
			})

			Convey("And the major-market prior should fill the city ranking", func() {
				So(err, ShouldBeNil)
				So(intel.BestCities, ShouldHaveLength, 10)
				So(intel.BestCities[0].City, ShouldEqual, "New York")
				for i := 1; i < len(intel.BestCities); i++ {
					So(intel.BestCities[i].Weight, ShouldBeLessThan, intel.BestCities[i-1].Weight)
				}
			})

			Convey("And the rating should report the missing data", func() {
				So(err, ShouldBeNil)
				So(intel.ArtistRating.Stars, ShouldEqual, 1)
				So(intel.ArtistRating.Label, ShouldEqual, "Emerging")
				So(intel.ArtistRating.Score, ShouldEqual, 0)
				So(intel.ArtistRating.Note, ShouldEqual, "no platform data available")
			})

			Convey("And the notes should still summarize the horizon", func() {
				So(err, ShouldBeNil)
				So(intel.Notes, ShouldContain, "Upcoming events in North America (US/CA): 0")
			})

			Convey("And the serialized report should keep every contract key", func() {
				So(err, ShouldBeNil)

				payload, marshalErr := json.Marshal(intel)
				So(marshalErr, ShouldBeNil)

				var raw map[string]any
				So(json.Unmarshal(payload, &raw), ShouldBeNil)

				for _, key := range []string{
					"report_id", "artist_query", "artist_name", "generated_at",
					"artist_rating", "best_cities", "events", "notes", "warnings",
				} {
					_, present := raw[key]
					So(present, ShouldBeTrue)
				}
				So(raw["events"], ShouldNotBeNil)
			})
		})
	})
}
