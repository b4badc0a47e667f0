package video

import "errors"

// ErrChannelNotFound is returned when the platform search yields no
// channel for the artist.
var ErrChannelNotFound = errors.New("video channel not found")
