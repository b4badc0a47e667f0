package refresh

import "errors"

// ErrRefreshInFlight indicates another refresh already holds the key;
// callers should serve the last-known-good cache entry instead.
var ErrRefreshInFlight = errors.New("refresh already in flight")
