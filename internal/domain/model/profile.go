package model

// StreamingProfile is a streaming-platform artist snapshot.
type StreamingProfile struct {
	ID         string
	Name       string
	Followers  int64
	Popularity int // 0..100
	URL        string
}

// VideoProfile is a video-platform channel snapshot. Momentum is a
// 0..100 heuristic derived from subscriber scale when the platform
// exposes no trend signal of its own.
type VideoProfile struct {
	ChannelID   string
	Title       string
	Subscribers int64
	Momentum    int
}

// ShortVideoStats is a short-video hashtag snapshot.
type ShortVideoStats struct {
	Tag          string
	Views        int64
	WeeklyGrowth float64 // percent
	Trend        string  // "rising" or "stable"
}
