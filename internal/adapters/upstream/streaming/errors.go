package streaming

import "errors"

// ErrArtistNotFound is returned when the catalog search yields no
// artist for the query.
var ErrArtistNotFound = errors.New("artist not found in streaming catalog")
