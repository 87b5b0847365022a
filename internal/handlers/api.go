// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"coursepress/internal/cache"
	"coursepress/internal/catalog"
	"coursepress/internal/models"
	"coursepress/internal/newsletter"
)

// API groups the JSON endpoints mounted under /api.
type API struct {
	service    *catalog.Service
	resolver   *catalog.Resolver
	newsletter *newsletter.Service
	pageCache  *cache.PageCache
}

// NewAPI creates the API handler group. pageCache may be nil.
func NewAPI(service *catalog.Service, resolver *catalog.Resolver, nl *newsletter.Service, pageCache *cache.PageCache) *API {
	return &API{
		service:    service,
		resolver:   resolver,
		newsletter: nl,
		pageCache:  pageCache,
	}
}

// ListCourses returns every course with its lessons, newest first. An
// optional ?q= filters by title or description.
func (a *API) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := a.service.SearchCourses(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, err, "list_courses")
		return
	}
	if courses == nil {
		courses = []models.Course{}
	}
	writeJSON(w, http.StatusOK, courses)
}

// CreateCourse handles the multipart course authoring form.
func (a *API) CreateCourse(w http.ResponseWriter, r *http.Request) {
	if !parseUploadForm(w, r) {
		return
	}

	img, err := formImage(r, "image", "courseImageFile")
	if err != nil {
		writeUploadError(w, err)
		return
	}
	if msg := validateImageType(img); msg != "" {
		writeFieldError(w, "image", msg)
		return
	}

	in := catalog.CourseInput{
		Title:       formValue(r, "title", "courseTitle"),
		Difficulty:  formValue(r, "difficulty", "courseDifficulty"),
		Description: formValue(r, "description", "courseDescription"),
		Image:       img,
		Sections:    formValue(r, "contentSections", "courseContentSections"),
	}
	if msg := validateCourseForm(in.Sections); msg != "" {
		writeFieldError(w, "contentSections", msg)
		return
	}

	created, err := a.service.CreateCourse(r.Context(), in)
	if err != nil {
		if errors.Is(err, catalog.ErrCourseIncomplete) {
			// The course was briefly visible; drop anything rendered meanwhile.
			a.pageCache.InvalidateAll(context.WithoutCancel(r.Context()))
		}
		writeServiceError(w, err, "create_course")
		return
	}

	a.pageCache.CourseAdded(r.Context())

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":    "Course and content created successfully!",
		"courseId":   created.ID,
		"courseSlug": created.Slug,
	})
}

// GetCourse returns one course with its lessons, or a single lesson when
// ?contentSlug= is given.
func (a *API) GetCourse(w http.ResponseWriter, r *http.Request) {
	courseSlug := chi.URLParam(r, "courseSlug")

	if lessonSlug := r.URL.Query().Get("contentSlug"); lessonSlug != "" {
		course, lesson, err := a.resolver.Lesson(r.Context(), courseSlug, lessonSlug)
		if err != nil {
			writeServiceError(w, err, "get_lesson")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"courseTitle": course.Title,
			"content":     lesson,
		})
		return
	}

	course, err := a.resolver.CourseWithLessons(r.Context(), courseSlug)
	if err != nil {
		writeServiceError(w, err, "get_course")
		return
	}
	if course.Lessons == nil {
		course.Lessons = []models.Lesson{}
	}
	writeJSON(w, http.StatusOK, course)
}

// ListBlogs returns every blog post, newest first.
func (a *API) ListBlogs(w http.ResponseWriter, r *http.Request) {
	posts, err := a.service.ListBlogPosts(r.Context())
	if err != nil {
		writeServiceError(w, err, "list_blogs")
		return
	}
	if posts == nil {
		posts = []models.BlogPost{}
	}
	writeJSON(w, http.StatusOK, posts)
}

// CreateBlog handles the multipart blog authoring form.
func (a *API) CreateBlog(w http.ResponseWriter, r *http.Request) {
	if !parseUploadForm(w, r) {
		return
	}

	img, err := formImage(r, "blogImageFile", "image")
	if err != nil {
		writeUploadError(w, err)
		return
	}
	if msg := validateImageType(img); msg != "" {
		writeFieldError(w, "blogImageFile", msg)
		return
	}

	in := catalog.BlogInput{
		Title:    formValue(r, "blogTitle", "title"),
		Content:  formValue(r, "blogContent", "content"),
		Image:    img,
		Metadata: formValue(r, "blogMetaData", "metadata"),
	}
	if msg := validateBlogForm(in.Content, in.Metadata); msg != "" {
		writeFieldError(w, "blogContent", msg)
		return
	}

	created, err := a.service.CreateBlogPost(r.Context(), in)
	if err != nil {
		writeServiceError(w, err, "create_blog")
		return
	}

	a.pageCache.BlogAdded(r.Context())

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Blog post created successfully",
		"blog":    created,
	})
}

// GetBlog returns one blog post.
func (a *API) GetBlog(w http.ResponseWriter, r *http.Request) {
	post, err := a.service.BlogPost(r.Context(), chi.URLParam(r, "blogSlug"))
	if err != nil {
		writeServiceError(w, err, "get_blog")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

type subscribeRequest struct {
	Email string `json:"email"`
}

// Subscribe adds an email to the newsletter list.
func (a *API) Subscribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	outcome, err := a.newsletter.Subscribe(r.Context(), req.Email)
	var verr validation.Error
	switch {
	case errors.As(err, &verr):
		writeError(w, verr.Error(), http.StatusBadRequest)
	case errors.Is(err, newsletter.ErrConflict):
		writeError(w, "This email is already subscribed.", http.StatusConflict)
	case err != nil:
		writeError(w, "Could not subscribe right now. Please try again later.", http.StatusInternalServerError)
	case outcome == newsletter.AlreadySubscribed:
		writeJSON(w, http.StatusOK, map[string]string{"message": "You are already subscribed!"})
	default:
		writeJSON(w, http.StatusCreated, map[string]string{"message": "Thanks for subscribing!"})
	}
}

// parseUploadForm caps the body and parses the multipart form. It writes
// the error response itself and reports whether the handler may continue.
func parseUploadForm(w http.ResponseWriter, r *http.Request) bool {
	if r.ContentLength > maxUploadSize {
		writeError(w, "Request too large (max 20 MB)", http.StatusRequestEntityTooLarge)
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, "Request too large (max 20 MB)", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, "Expected a multipart form", http.StatusBadRequest)
		return false
	}
	return true
}

func writeUploadError(w http.ResponseWriter, err error) {
	if errors.Is(err, errImageTooLarge) {
		writeError(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	slog.Warn("read upload failed", "error", err)
	writeError(w, "Could not read uploaded file", http.StatusBadRequest)
}

// writeServiceError maps catalog errors to HTTP responses. Unexpected
// errors are logged and reported as a generic 500.
func writeServiceError(w http.ResponseWriter, err error, operation string) {
	var verr *catalog.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "Missing or invalid fields.",
			"fields": verr.FieldMessages(),
		})
	case errors.Is(err, catalog.ErrCourseNotFound):
		writeError(w, "Course not found", http.StatusNotFound)
	case errors.Is(err, catalog.ErrLessonNotFound):
		writeError(w, "Content not found", http.StatusNotFound)
	case errors.Is(err, catalog.ErrBlogNotFound):
		writeError(w, "Blog post not found", http.StatusNotFound)
	case errors.Is(err, catalog.ErrConflict):
		writeError(w, "An entry with this title already exists. Please choose a different title.", http.StatusConflict)
	case errors.Is(err, catalog.ErrUpload):
		writeError(w, "Image upload failed", http.StatusInternalServerError)
	default:
		slog.Error("request failed", "operation", operation, "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func writeFieldError(w http.ResponseWriter, field, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":  msg,
		"fields": map[string]string{field: msg},
	})
}

// writeError sends a JSON error response.
func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "error", err)
	}
}
