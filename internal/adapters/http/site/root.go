// Package site serves the embedded intel console: a single page that
// drives the intel API from the browser.
package site

import (
	"context"
	"errors"
	"net/http"
)

// Error constants.
var (
	ErrServe = errors.New("console serve failed")
)

// Register attaches the embedded console routes to mux. The console
// owns the root path; API routes register their own, more specific
// patterns.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	files := http.FileServer(FS())
	mux.Handle("/", files)
}
