package http

import (
	"io/fs"
	"net/http"
)

// NewDocumentHandler serves the presentation document at "/" and
// "/index.html" and every other asset from static.
func NewDocumentHandler(document []byte, static fs.FS) http.Handler {
	mux := http.NewServeMux()
	serveDocument := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(document)
	}
	mux.HandleFunc("GET /{$}", serveDocument)
	mux.HandleFunc("GET /index.html", serveDocument)
	mux.Handle("GET /", http.FileServer(http.FS(static)))
	return mux
}
