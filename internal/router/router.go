// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for
// CoursePress. The JSON API lives under /api; the server-rendered site
// owns every other path, with course slugs matched last.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"coursepress/internal/handlers"
	"coursepress/internal/middleware"
	"coursepress/web"
)

// Config holds router options that come from the application config.
type Config struct {
	DevMode bool
	// ImageOrigin is where uploaded images are served from, allowed in
	// the Content-Security-Policy.
	ImageOrigin string
	// WriteLimiter rate-limits POST /api/* per client. Nil disables it.
	WriteLimiter *middleware.RateLimiter
}

// New creates the configured Chi router with all middleware and route
// groups wired up.
func New(api *handlers.API, pages *handlers.Pages, cfg Config) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(cfg.DevMode, cfg.ImageOrigin))

	r.Get("/health", healthHandler)
	r.Handle("/static/*", staticHandler())

	limited := func(h http.HandlerFunc) http.Handler {
		if cfg.WriteLimiter == nil {
			return h
		}
		return cfg.WriteLimiter.Middleware(h)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/courses", func(r chi.Router) {
			r.Get("/", api.ListCourses)
			r.Method(http.MethodPost, "/", limited(api.CreateCourse))
			r.Get("/{courseSlug}", api.GetCourse)
		})
		r.Route("/blogs", func(r chi.Router) {
			r.Get("/", api.ListBlogs)
			r.Method(http.MethodPost, "/", limited(api.CreateBlog))
			r.Get("/{blogSlug}", api.GetBlog)
		})
		r.Method(http.MethodPost, "/user", limited(api.Subscribe))

		r.NotFound(apiNotFound)
		r.MethodNotAllowed(apiMethodNotAllowed)
	})

	// Site pages. Static segments win over the {courseSlug} patterns.
	r.Get("/", pages.Home)
	r.Get("/courses", pages.Courses)
	r.Get("/blog", pages.BlogList)
	r.Get("/blog/{blogSlug}", pages.BlogPost)
	r.Get("/about", pages.About)
	r.Get("/join-us", pages.JoinUs)
	r.Get("/privacypolicy", pages.PrivacyPolicy)
	r.Get("/hadminh", pages.Admin)
	r.Get("/{courseSlug}", pages.Course)
	r.Get("/{courseSlug}/{lessonSlug}", pages.Course)

	r.NotFound(pages.NotFound)

	return r
}

// staticHandler serves the embedded web/static tree under /static/.
func staticHandler() http.Handler {
	sub, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(err)
	}
	files := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		files.ServeHTTP(w, r)
	})
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func apiNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"Not found"}`))
}

func apiMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	w.Write([]byte(`{"error":"Method not allowed"}`))
}
