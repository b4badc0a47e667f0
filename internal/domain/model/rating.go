package model

// PlatformScore is one platform bucket inside an ArtistRating.
// Weight is the effective weight after absent buckets redistributed
// theirs across the present ones.
type PlatformScore struct {
	Score   float64 `json:"score"`
	Weight  float64 `json:"weight"`
	Present bool    `json:"present"`
}

// ArtistRating grades an artist's overall popularity across
// streaming, video, and short-video platforms.
type ArtistRating struct {
	Stars      int           `json:"stars"` // 1..5
	Label      string        `json:"label"`
	Score      float64       `json:"score"` // composite 0..100
	Streaming  PlatformScore `json:"streaming"`
	Video      PlatformScore `json:"video"`
	ShortVideo PlatformScore `json:"short_video"`
	Note       string        `json:"note,omitempty"`
}
