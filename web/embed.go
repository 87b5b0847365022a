// Package web provides embedded static assets for the public site.
// In development, templates load TailwindCSS from the CDN; in production,
// the compiled stylesheet is embedded here and served at /static/.
package web

import "embed"

// StaticFS embeds the web/static/ directory tree.
//
//go:embed all:static
var StaticFS embed.FS
