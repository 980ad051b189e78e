// Package site serves the embedded prediction form.
package site

import (
	"context"
	"net/http"
)

// Register attaches the embedded form at / to mux. Paths not claimed by
// other handlers fall through to the embedded files and 404 when absent.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	files := http.FileServer(FS())
	mux.Handle("/", files)
}
