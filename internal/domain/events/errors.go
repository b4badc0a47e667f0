package events

import "errors"

// ErrEmptyArtist is returned when a search request is built without an
// artist query.
var ErrEmptyArtist = errors.New("artist query is empty")
