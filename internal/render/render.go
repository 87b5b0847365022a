// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the public site and
// the authoring page. Every page template is paired with the shared base
// layout and rendered into a buffer, so output can be cached before it is
// written.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"coursepress/internal/markdown"
	"coursepress/internal/models"
)

//go:embed templates/site/*.html
var siteFS embed.FS

// PageData holds all data passed to page templates.
type PageData struct {
	SiteName    string         // Site name for header and <title>
	Title       string         // Page title for <title> tag
	Description string         // <meta name="description">
	Section     string         // Active nav section (e.g., "courses", "blog")
	Data        map[string]any // Page-specific data
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
	siteName  string
}

// New creates a Renderer by parsing all page templates from the embedded
// filesystem. When devMode is true, templates load TailwindCSS from the CDN;
// otherwise they reference the compiled stylesheet under /static/.
func New(siteName string, devMode bool) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		siteName:  siteName,
		funcMap: template.FuncMap{
			// deref safely dereferences a string pointer for use in templates.
			"deref": func(s *string) string {
				if s == nil {
					return ""
				}
				return *s
			},
			"isDev": func() bool {
				return devMode
			},
			"badgeClass": func(d models.Difficulty) string {
				return d.BadgeClass()
			},
			// body renders a lesson or blog body. Bodies are authored by the
			// trusted admin, so raw HTML is kept.
			"body": func(source string) template.HTML {
				out, err := markdown.ToHTML(source)
				if err != nil {
					slog.Warn("markdown render failed", "error", err)
					return template.HTML(template.HTMLEscapeString(source))
				}
				return template.HTML(out) //nolint:gosec
			},
			"excerpt": func(source string) string {
				return markdown.Excerpt(source, markdown.CardExcerptLen)
			},
			"date": func(t time.Time) string {
				return t.Format("January 2, 2006")
			},
			"active": func(current, target string) string {
				if current == target {
					return "text-indigo-600 font-semibold"
				}
				return "text-slate-600 hover:text-indigo-600"
			},
			"year": func() int {
				return time.Now().Year()
			},
		},
	}

	entries, err := fs.ReadDir(siteFS, "templates/site")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	// Parse each page template paired with the base layout.
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "base.html" || !strings.HasSuffix(name, ".html") {
			continue
		}
		tmpl, err := template.New("base.html").Funcs(r.funcMap).ParseFS(
			siteFS, "templates/site/base.html", "templates/site/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[strings.TrimSuffix(name, ".html")] = tmpl
	}

	return r, nil
}

// Bytes renders a full page into memory.
func (rn *Renderer) Bytes(name string, data *PageData) ([]byte, error) {
	tmpl, ok := rn.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}
	if data.SiteName == "" {
		data.SiteName = rn.siteName
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Page renders a full page with the given status code. Rendering happens
// before any header is written, so a template error still yields a clean 500.
func (rn *Renderer) Page(w http.ResponseWriter, status int, name string, data *PageData) {
	out, err := rn.Bytes(name, data)
	if err != nil {
		slog.Error("render page", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	Write(w, status, out)
}

// Write sends already-rendered HTML.
func Write(w http.ResponseWriter, status int, html []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(html) //nolint:errcheck
}
