// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"coursepress/internal/cache"
	"coursepress/internal/catalog"
	"coursepress/internal/markdown"
	"coursepress/internal/models"
	"coursepress/internal/render"
)

// Number of items shown on the homepage.
const (
	homeCourses = 6
	homePosts   = 3
)

// Pages groups handlers for the server-rendered site. Successful pages are
// stored in the Valkey page cache and served from it on the next hit.
type Pages struct {
	renderer  *render.Renderer
	service   *catalog.Service
	resolver  *catalog.Resolver
	pageCache *cache.PageCache
}

// NewPages creates the page handler group. pageCache may be nil.
func NewPages(renderer *render.Renderer, service *catalog.Service, resolver *catalog.Resolver, pageCache *cache.PageCache) *Pages {
	return &Pages{
		renderer:  renderer,
		service:   service,
		resolver:  resolver,
		pageCache: pageCache,
	}
}

// buildFunc produces the template name and data for a page.
type buildFunc func(ctx context.Context) (string, *render.PageData, error)

// serve checks the page cache, builds and renders on a miss, and caches the
// result. An empty key disables caching for the request.
func (p *Pages) serve(w http.ResponseWriter, r *http.Request, key string, build buildFunc) {
	ctx := r.Context()

	if key != "" {
		if cached, ok := p.pageCache.Get(ctx, key); ok {
			render.Write(w, http.StatusOK, cached)
			return
		}
	}

	name, data, err := build(ctx)
	if err != nil {
		p.renderError(w, r, err)
		return
	}

	out, err := p.renderer.Bytes(name, data)
	if err != nil {
		slog.Error("render page", "template", name, "path", r.URL.Path, "error", err)
		p.renderer.Page(w, http.StatusInternalServerError, "error", &render.PageData{Title: "Error"})
		return
	}

	if key != "" {
		p.pageCache.Set(ctx, key, out)
	}
	render.Write(w, http.StatusOK, out)
}

// renderError shows the 404 page for missing courses, lessons and posts and
// the generic error page for anything else.
func (p *Pages) renderError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		msg   string
		verr  *catalog.ValidationError
		found = true
	)
	switch {
	case errors.Is(err, catalog.ErrCourseNotFound):
		msg, found = "Course not found.", false
	case errors.Is(err, catalog.ErrLessonNotFound):
		msg, found = "Lesson not found.", false
	case errors.Is(err, catalog.ErrBlogNotFound):
		msg, found = "Blog post not found.", false
	case errors.As(err, &verr):
		found = false
	}
	if !found {
		p.notFound(w, msg)
		return
	}

	slog.Error("page failed", "path", r.URL.Path, "error", err)
	p.renderer.Page(w, http.StatusInternalServerError, "error", &render.PageData{Title: "Error"})
}

func (p *Pages) notFound(w http.ResponseWriter, msg string) {
	p.renderer.Page(w, http.StatusNotFound, "notfound", &render.PageData{
		Title: "Not Found",
		Data:  map[string]any{"Message": msg},
	})
}

// NotFound is the router fallback for unknown paths.
func (p *Pages) NotFound(w http.ResponseWriter, r *http.Request) {
	p.notFound(w, "")
}

// Home renders the landing page with the latest courses and posts.
func (p *Pages) Home(w http.ResponseWriter, r *http.Request) {
	p.serve(w, r, cache.HomepageKey(), func(ctx context.Context) (string, *render.PageData, error) {
		courses, err := p.service.ListCourses(ctx)
		if err != nil {
			return "", nil, err
		}
		posts, err := p.service.ListBlogPosts(ctx)
		if err != nil {
			return "", nil, err
		}
		return "home", &render.PageData{
			Title:       "Home",
			Description: "Free, hands-on programming courses and articles.",
			Data: map[string]any{
				"Courses": firstN(courses, homeCourses),
				"Posts":   firstN(posts, homePosts),
			},
		}, nil
	})
}

// Courses renders the course catalog. Search results are not cached.
func (p *Pages) Courses(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	key := cache.CourseListKey()
	if q != "" {
		key = ""
	}

	p.serve(w, r, key, func(ctx context.Context) (string, *render.PageData, error) {
		courses, err := p.service.SearchCourses(ctx, q)
		if err != nil {
			return "", nil, err
		}
		return "courses", &render.PageData{
			Title:       "Courses",
			Description: "Browse all courses by difficulty and topic.",
			Section:     "courses",
			Data: map[string]any{
				"Courses": courses,
				"Query":   q,
			},
		}, nil
	})
}

// Course renders a course page at /{courseSlug} or /{courseSlug}/{lessonSlug}.
// Without a lesson slug the first lesson is shown.
func (p *Pages) Course(w http.ResponseWriter, r *http.Request) {
	courseSlug := chi.URLParam(r, "courseSlug")
	lessonSlug := chi.URLParam(r, "lessonSlug")

	p.serve(w, r, cache.CourseKey(courseSlug, lessonSlug), func(ctx context.Context) (string, *render.PageData, error) {
		view, err := p.resolver.CourseView(ctx, courseSlug, lessonSlug)
		if err != nil {
			return "", nil, err
		}

		title := view.Course.Title
		desc := markdown.Truncate(view.Course.Description, markdown.MetaExcerptLen)
		if view.Active != nil {
			title = view.Active.Title + " | " + view.Course.Title
			if ex := markdown.Excerpt(view.Active.Body, markdown.MetaExcerptLen); ex != "" {
				desc = ex
			}
		}

		return "course", &render.PageData{
			Title:       title,
			Description: desc,
			Section:     "courses",
			Data:        map[string]any{"View": view},
		}, nil
	})
}

// BlogList renders all blog posts.
func (p *Pages) BlogList(w http.ResponseWriter, r *http.Request) {
	p.serve(w, r, cache.BlogListKey(), func(ctx context.Context) (string, *render.PageData, error) {
		posts, err := p.service.ListBlogPosts(ctx)
		if err != nil {
			return "", nil, err
		}
		return "blog_list", &render.PageData{
			Title:       "Blog",
			Description: "News, tutorials and notes from the course authors.",
			Section:     "blog",
			Data:        map[string]any{"Posts": posts},
		}, nil
	})
}

// BlogPost renders a single post at /blog/{blogSlug}.
func (p *Pages) BlogPost(w http.ResponseWriter, r *http.Request) {
	blogSlug := chi.URLParam(r, "blogSlug")

	p.serve(w, r, cache.BlogKey(blogSlug), func(ctx context.Context) (string, *render.PageData, error) {
		post, err := p.service.BlogPost(ctx, blogSlug)
		if err != nil {
			return "", nil, err
		}
		return "blog_post", &render.PageData{
			Title:       post.Title,
			Description: markdown.Excerpt(post.Content, markdown.MetaExcerptLen),
			Section:     "blog",
			Data:        map[string]any{"Post": post},
		}, nil
	})
}

// About renders the about page.
func (p *Pages) About(w http.ResponseWriter, r *http.Request) {
	p.static(w, r, "about", "About", "Who we are and why we teach.")
}

// JoinUs renders the newsletter sign-up page.
func (p *Pages) JoinUs(w http.ResponseWriter, r *http.Request) {
	p.static(w, r, "join_us", "Join Us", "Get new courses and posts in your inbox.")
}

// PrivacyPolicy renders the privacy policy.
func (p *Pages) PrivacyPolicy(w http.ResponseWriter, r *http.Request) {
	p.static(w, r, "privacypolicy", "Privacy Policy", "How we handle your data.")
}

func (p *Pages) static(w http.ResponseWriter, r *http.Request, name, title, desc string) {
	p.serve(w, r, cache.StaticKey(name), func(context.Context) (string, *render.PageData, error) {
		return name, &render.PageData{
			Title:       title,
			Description: desc,
			Section:     strings.ReplaceAll(name, "_", "-"),
		}, nil
	})
}

// Admin renders the authoring page. It is never cached.
func (p *Pages) Admin(w http.ResponseWriter, r *http.Request) {
	p.serve(w, r, "", func(context.Context) (string, *render.PageData, error) {
		return "admin", &render.PageData{
			Title: "Authoring",
			Data: map[string]any{
				"Difficulties": []models.Difficulty{
					models.DifficultyBeginner,
					models.DifficultyIntermediate,
					models.DifficultyAdvanced,
				},
			},
		}, nil
	})
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
