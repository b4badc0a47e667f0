package api_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/okian/tourintel/internal/adapters/http/api"
	"github.com/okian/tourintel/internal/adapters/upstream"
	service "github.com/okian/tourintel/internal/app"
	"github.com/okian/tourintel/internal/domain/model"
	"github.com/okian/tourintel/internal/domain/types"
	"github.com/okian/tourintel/internal/refresh"
	. "github.com/smartystreets/goconvey/convey"
)

// mockService is a scriptable Dependencies implementation that records
// the arguments of its last call.
type mockService struct {
	intel      model.IntelReport
	intelErr   error
	cities     []model.CityWeight
	heatmapOK  bool
	refreshed  model.IntelReport
	refreshErr error
	stats      map[string]any

	lastQuery  string
	lastRegion types.Region
}

func (m *mockService) ResolveIntel(_ context.Context, query string, region types.Region) (model.IntelReport, error) {
	m.lastQuery, m.lastRegion = query, region
	if m.intelErr != nil {
		return model.IntelReport{}, m.intelErr
	}
	return m.intel, nil
}

func (m *mockService) CachedHeatmap(_ context.Context, query string, region types.Region) ([]model.CityWeight, bool) {
	m.lastQuery, m.lastRegion = query, region
	return m.cities, m.heatmapOK
}

func (m *mockService) ForceRefresh(_ context.Context, query string, region types.Region) (model.IntelReport, error) {
	m.lastQuery, m.lastRegion = query, region
	if m.refreshErr != nil {
		return model.IntelReport{}, m.refreshErr
	}
	return m.refreshed, nil
}

func (m *mockService) Stats(_ context.Context) map[string]any {
	return m.stats
}

// errorBody mirrors the wire shape of API error responses.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func fixtureReport() model.IntelReport {
	return model.IntelReport{
		ReportID:    "11111111-2222-3333-4444-555555555555",
		ArtistQuery: "bts",
		ArtistName:  "BTS",
		GeneratedAt: "2026-08-25T12:00:00Z",
		BestCities:  []model.CityWeight{{City: "Newark", Weight: 20}},
		Events:      []model.ScoredEvent{},
		Notes:       []string{"Upcoming events in United States: 0"},
		Warnings:    []string{},
	}
}

func newMux(deps api.Dependencies) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps).Register(mux)
	return mux
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockService{
			intel:     fixtureReport(),
			refreshed: fixtureReport(),
			stats:     map[string]any{"started": true},
		}
		mux := newMux(deps)

		Convey("Then the health endpoint should answer", func() {
			req := httptest.NewRequest("GET", "/healthz", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("And the stats endpoint should answer", func() {
			req := httptest.NewRequest("GET", "/stats", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("And the metrics endpoint should serve the registry", func() {
			req := httptest.NewRequest("GET", "/metrics", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And unknown paths should fall through to 404", func() {
			req := httptest.NewRequest("GET", "/unknown", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestIntelHandler(t *testing.T) {
	Convey("Given the intel endpoint", t, func() {
		deps := &mockService{intel: fixtureReport()}
		mux := newMux(deps)

		Convey("When requesting without an artist", func() {
			req := httptest.NewRequest("GET", "/api/v1/intel", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should reject the request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)

				var body errorBody
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body.Code, ShouldEqual, "missing_artist")
			})
		})

		Convey("When requesting an artist with a region", func() {
			req := httptest.NewRequest("GET", "/api/v1/intel?artist=bts&region=us", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the resolved report should return as JSON", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var intel model.IntelReport
				So(json.Unmarshal(w.Body.Bytes(), &intel), ShouldBeNil)
				So(intel.ReportID, ShouldEqual, fixtureReport().ReportID)
				So(intel.ArtistName, ShouldEqual, "BTS")
			})

			Convey("And the region alias should be canonicalized", func() {
				So(deps.lastQuery, ShouldEqual, "bts")
				So(deps.lastRegion, ShouldEqual, types.RegionUS)
			})
		})

		Convey("When posting instead of getting", func() {
			req := httptest.NewRequest("POST", "/api/v1/intel?artist=bts", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the method should not match", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the service has not started", func() {
			deps.intelErr = service.ErrNotStarted
			req := httptest.NewRequest("GET", "/api/v1/intel?artist=bts", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should answer service unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)

				var body errorBody
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body.Code, ShouldEqual, "not_ready")
			})
		})

		Convey("When the upstream is rate limited", func() {
			deps.intelErr = fmt.Errorf("event search: %w", upstream.ErrRateLimited)
			req := httptest.NewRequest("GET", "/api/v1/intel?artist=bts", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should answer bad gateway", func() {
				So(w.Code, ShouldEqual, http.StatusBadGateway)

				var body errorBody
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body.Code, ShouldEqual, "upstream_rate_limited")
			})
		})
	})
}

func TestHeatmapHandler(t *testing.T) {
	Convey("Given the heatmap endpoint", t, func() {
		deps := &mockService{}
		mux := newMux(deps)

		Convey("When requesting without an artist", func() {
			req := httptest.NewRequest("GET", "/api/v1/heatmap", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should reject the request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When no heatmap is cached", func() {
			req := httptest.NewRequest("GET", "/api/v1/heatmap?artist=bts", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should answer not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)

				var body errorBody
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body.Code, ShouldEqual, "heatmap_not_found")
			})
		})

		Convey("When a heatmap is cached", func() {
			deps.heatmapOK = true
			deps.cities = []model.CityWeight{
				{City: "Newark", Weight: 20},
				{City: "Chicago", Weight: 10},
			}
			req := httptest.NewRequest("GET", "/api/v1/heatmap?artist=bts&region=NA", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the ranking should return as JSON", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var body struct {
					Artist string             `json:"artist"`
					Region string             `json:"region"`
					Cities []model.CityWeight `json:"cities"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body.Artist, ShouldEqual, "bts")
				So(body.Region, ShouldEqual, "NA")
				So(body.Cities, ShouldHaveLength, 2)
				So(body.Cities[0].City, ShouldEqual, "Newark")
			})
		})
	})
}

func TestRefreshHandler(t *testing.T) {
	Convey("Given the refresh endpoint", t, func() {
		deps := &mockService{refreshed: fixtureReport()}
		mux := newMux(deps)

		Convey("When posting a JSON body", func() {
			payload := `{"artist": "bts", "region": "EU"}`
			req := httptest.NewRequest("POST", "/api/v1/refresh", strings.NewReader(payload))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the refreshed report should return", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastQuery, ShouldEqual, "bts")
				So(deps.lastRegion, ShouldEqual, types.RegionEU)
			})
		})

		Convey("When posting with query parameters only", func() {
			req := httptest.NewRequest("POST", "/api/v1/refresh?artist=bts&region=US", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the parameters should drive the refresh", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastQuery, ShouldEqual, "bts")
				So(deps.lastRegion, ShouldEqual, types.RegionUS)
			})
		})

		Convey("When posting a malformed body", func() {
			req := httptest.NewRequest("POST", "/api/v1/refresh", strings.NewReader("{not json"))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should reject the request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When posting without an artist anywhere", func() {
			req := httptest.NewRequest("POST", "/api/v1/refresh", strings.NewReader(`{}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should reject the request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)

				var body errorBody
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body.Code, ShouldEqual, "missing_artist")
			})
		})

		Convey("When a refresh is already in flight", func() {
			deps.refreshErr = refresh.ErrRefreshInFlight
			req := httptest.NewRequest("POST", "/api/v1/refresh?artist=bts", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should answer conflict", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)

				var body errorBody
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body.Code, ShouldEqual, "refresh_in_flight")
			})
		})

		Convey("When getting instead of posting", func() {
			req := httptest.NewRequest("GET", "/api/v1/refresh?artist=bts", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the method should not match", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}
