// Package web carries the UI assets compiled into the binary. The app
// ships as a single executable for the shop's office machine, so templates
// and the stylesheet travel inside it rather than alongside it.
package web

import (
	"embed"
	"io/fs"
	"log"
)

//go:embed static templates
var assets embed.FS

// StaticFS returns the stylesheet and other static assets.
func StaticFS() fs.FS { return sub("static") }

// TemplatesFS returns the HTML templates.
func TemplatesFS() fs.FS { return sub("templates") }

// sub roots the embedded tree at dir. Failure means the binary was built
// without the assets, which nothing can recover from at runtime.
func sub(dir string) fs.FS {
	f, err := fs.Sub(assets, dir)
	if err != nil {
		log.Fatalf("embedded %s assets missing: %v", dir, err)
	}
	return f
}
