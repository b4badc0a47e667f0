package ticketing

import "errors"

// ErrNoAttraction is returned when the provider has no attraction
// matching the artist name.
var ErrNoAttraction = errors.New("no matching attraction")
