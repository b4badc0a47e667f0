package rating_test

import (
	"testing"

	"github.com/okian/tourintel/internal/domain/model"
	rating "github.com/okian/tourintel/internal/domain/rating"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRate(t *testing.T) {
	Convey("Given every platform reporting", t, func() {
		in := rating.Input{
			Streaming: model.StreamingProfile{
				Name:       "BTS",
				Popularity: 94,
				Followers:  10_000_000,
			},
			HasStreaming: true,
			Video: model.VideoProfile{
				Subscribers: 10_000_000,
				Momentum:    70,
			},
			HasVideo: true,
			ShortVideo: model.ShortVideoStats{
				Views:        5_000_000_000,
				WeeklyGrowth: 12,
			},
			HasShortVideo: true,
		}

		Convey("When rating the artist", func() {
			got := rating.Rate(in)

			Convey("Then the composite should follow the locked blend", func() {
				// streaming 0.70*94 + 0.30*100 = 95.8
				// video 0.65*100 + 0.35*70 = 89.5
				// short 0.75*100 + 0.25*12 = 78
				// 0.50*95.8 + 0.25*89.5 + 0.25*78 = 89.775
				So(got.Score, ShouldAlmostEqual, 89.775, 0.0001)
				So(got.Stars, ShouldEqual, 5)
				So(got.Label, ShouldEqual, "Rockstar")
				So(got.Note, ShouldEqual, "")
			})

			Convey("And the platform sub-scores should carry their weights", func() {
				So(got.Streaming.Present, ShouldBeTrue)
				So(got.Streaming.Weight, ShouldAlmostEqual, 0.50, 0.0001)
				So(got.Streaming.Score, ShouldAlmostEqual, 95.8, 0.0001)
				So(got.Video.Weight, ShouldAlmostEqual, 0.25, 0.0001)
				So(got.ShortVideo.Weight, ShouldAlmostEqual, 0.25, 0.0001)
			})
		})

		Convey("When rating the same input twice", func() {
			So(rating.Rate(in), ShouldResemble, rating.Rate(in))
		})
	})

	Convey("Given an absent video bucket", t, func() {
		in := rating.Input{
			Streaming: model.StreamingProfile{
				Popularity: 94,
				Followers:  10_000_000,
			},
			HasStreaming: true,
			ShortVideo: model.ShortVideoStats{
				Views:        5_000_000_000,
				WeeklyGrowth: 12,
			},
			HasShortVideo: true,
		}

		Convey("When rating the artist", func() {
			got := rating.Rate(in)

			Convey("Then the weights should renormalize proportionally", func() {
				// (0.50*95.8 + 0.25*78) / 0.75
				So(got.Score, ShouldAlmostEqual, 89.8666666, 0.0001)
				So(got.Streaming.Weight, ShouldAlmostEqual, 0.50/0.75, 0.0001)
				So(got.ShortVideo.Weight, ShouldAlmostEqual, 0.25/0.75, 0.0001)
			})

			Convey("And the absent bucket should stay zeroed", func() {
				So(got.Video.Present, ShouldBeFalse)
				So(got.Video.Weight, ShouldEqual, 0)
				So(got.Video.Score, ShouldEqual, 0)
			})
		})
	})

	Convey("Given only the streaming bucket", t, func() {
		Convey("When rating the artist", func() {
			got := rating.Rate(rating.Input{
				Streaming: model.StreamingProfile{
					Popularity: 60,
					Followers:  625_000,
				},
				HasStreaming: true,
			})

			Convey("Then the bucket should carry the whole weight", func() {
				// followers norm (625k/10M)^0.25 = 0.5 so the bucket
				// scores 0.70*60 + 0.30*50 = 57
				So(got.Streaming.Weight, ShouldAlmostEqual, 1.0, 0.0001)
				So(got.Score, ShouldAlmostEqual, 57, 0.0001)
				So(got.Stars, ShouldEqual, 3)
				So(got.Label, ShouldEqual, "Hot")
			})
		})
	})

	Convey("Given no platform data at all", t, func() {
		Convey("When rating the artist", func() {
			got := rating.Rate(rating.Input{})

			Convey("Then the rating should degrade explicitly", func() {
				So(got.Stars, ShouldEqual, 1)
				So(got.Label, ShouldEqual, "Emerging")
				So(got.Score, ShouldEqual, 0)
				So(got.Note, ShouldEqual, "no platform data available")
				So(got.Streaming.Present, ShouldBeFalse)
				So(got.Video.Present, ShouldBeFalse)
				So(got.ShortVideo.Present, ShouldBeFalse)
			})
		})
	})

	Convey("Given runaway short-video growth", t, func() {
		Convey("When weekly growth exceeds 100 percent", func() {
			got := rating.Rate(rating.Input{
				ShortVideo: model.ShortVideoStats{
					Views:        5_000_000_000,
					WeeklyGrowth: 400,
				},
				HasShortVideo: true,
			})

			Convey("Then the growth term should clamp rather than explode", func() {
				// 0.75*100 + 0.25*100 = 100, all weight on one bucket
				So(got.Score, ShouldAlmostEqual, 100, 0.0001)
				So(got.Stars, ShouldEqual, 5)
			})
		})
	})
}
