package notify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/tourintel/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestWebhookSend(t *testing.T) {
	Convey("Given a webhook sink", t, func() {
		ctx := context.Background()

		Convey("When the endpoint accepts the alert", func() {
			var (
				gotContentType string
				gotBody        []byte
			)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotContentType = r.Header.Get("Content-Type")
				gotBody, _ = io.ReadAll(r.Body)
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			sink := NewWebhook(server.URL)
			err := sink.Send(ctx, "BTS is trending EXTREME in New York")

			So(err, ShouldBeNil)
			So(gotContentType, ShouldEqual, "application/json")

			var payload map[string]string
			So(json.Unmarshal(gotBody, &payload), ShouldBeNil)
			So(payload["content"], ShouldEqual, "BTS is trending EXTREME in New York")
		})

		Convey("When the endpoint rejects the alert", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			}))
			defer server.Close()

			sink := NewWebhook(server.URL)
			err := sink.Send(ctx, "alert")

			So(err, ShouldNotBeNil)
			So(errors.Is(err, ErrDeliveryFailed), ShouldBeTrue)
		})

		Convey("When the endpoint is unreachable", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			server.Close()

			sink := NewWebhook(server.URL, WithTimeout(time.Second))
			err := sink.Send(ctx, "alert")

			So(err, ShouldNotBeNil)
			So(errors.Is(err, ErrDeliveryFailed), ShouldBeTrue)
		})

		Convey("When no URL is configured", func() {
			sink := NewWebhook("")
			err := sink.Send(ctx, "alert")

			So(errors.Is(err, ErrNoWebhookURL), ShouldBeTrue)
		})
	})
}

func TestDiscard(t *testing.T) {
	Convey("Given a discard sink", t, func() {
		Convey("When sending, it accepts silently", func() {
			var sink Sink = Discard{}
			So(sink.Send(context.Background(), "anything"), ShouldBeNil)
		})
	})
}
