// Package web holds the embedded presentation document and its static assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var files embed.FS

// DocumentPath is the asset path of the presentation document.
const DocumentPath = "index.html"

// Static returns the asset tree rooted at the document directory.
func Static() fs.FS {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Document returns the presentation document.
func Document() ([]byte, error) {
	return fs.ReadFile(Static(), DocumentPath)
}
