package shortvideo

import "errors"

// ErrNoHashtagData is returned when the platform has no stats for the
// artist's hashtag.
var ErrNoHashtagData = errors.New("no hashtag data")
