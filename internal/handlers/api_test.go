// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"coursepress/internal/models"
)

const twoSections = `[{"title":"Intro","body":"Welcome"},{"title":"Setup","body":"Install Go","metadata":{"minutes":5}}]`

func courseForm(title string) map[string]string {
	return map[string]string{
		"courseTitle":           title,
		"courseDifficulty":      "Beginner",
		"courseDescription":     "Learn the basics",
		"courseContentSections": twoSections,
	}
}

func TestCreateCourse(t *testing.T) {
	env := newTestEnv(t, nil)

	req := multipartRequest(t, "/api/courses", courseForm("Go Basics"),
		formFile{field: "courseImageFile", filename: "cover.png", data: pngBytes(t)})
	rec := httptest.NewRecorder()
	env.API.CreateCourse(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	body := decodeJSON(t, rec)
	if body["message"] != "Course and content created successfully!" {
		t.Errorf("message: got %v", body["message"])
	}
	if body["courseSlug"] != "go-basics" {
		t.Errorf("courseSlug: got %v, want go-basics", body["courseSlug"])
	}
	if _, ok := body["courseId"].(float64); !ok {
		t.Errorf("courseId missing or not a number: %v", body["courseId"])
	}

	courses, _ := env.Memory.Courses().ListWithLessons(context.Background())
	if len(courses) != 1 {
		t.Fatalf("courses stored: got %d, want 1", len(courses))
	}
	lessons := courses[0].Lessons
	if len(lessons) != 2 || lessons[0].Slug != "intro" || lessons[1].Slug != "setup" {
		t.Fatalf("lessons: got %+v", lessons)
	}
	if lessons[0].Position != 0 || lessons[1].Position != 1 {
		t.Errorf("positions: got %d, %d", lessons[0].Position, lessons[1].Position)
	}
	if !strings.HasPrefix(courses[0].ImageURL, "https://cdn.test/courseimages/") {
		t.Errorf("image url: got %q", courses[0].ImageURL)
	}
	if len(env.Images.Keys()) == 0 {
		t.Error("image was not uploaded")
	}
}

func TestCreateCourse_ShortFieldNames(t *testing.T) {
	env := newTestEnv(t, nil)

	req := multipartRequest(t, "/api/courses", map[string]string{
		"title":           "Rust 101",
		"difficulty":      "Intermediate",
		"description":     "Ownership and borrowing",
		"contentSections": `[]`,
	}, formFile{field: "image", filename: "cover.png", data: pngBytes(t)})
	rec := httptest.NewRecorder()
	env.API.CreateCourse(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if got := decodeJSON(t, rec)["courseSlug"]; got != "rust-101" {
		t.Errorf("courseSlug: got %v, want rust-101", got)
	}
}

func TestCreateCourse_Invalid(t *testing.T) {
	img := formFile{field: "courseImageFile", filename: "cover.png", data: pngBytes(t)}

	tests := []struct {
		name      string
		fields    map[string]string
		files     []formFile
		wantField string
	}{
		{
			name:      "missing image",
			fields:    courseForm("Go Basics"),
			wantField: "image",
		},
		{
			name:      "missing title",
			fields:    courseForm(""),
			files:     []formFile{img},
			wantField: "title",
		},
		{
			name:      "title without slug characters",
			fields:    courseForm("!!!"),
			files:     []formFile{img},
			wantField: "title",
		},
		{
			name: "sections not an array",
			fields: map[string]string{
				"courseTitle":           "Go Basics",
				"courseDifficulty":      "Beginner",
				"courseContentSections": `{"title":"Intro"}`,
			},
			files:     []formFile{img},
			wantField: "contentSections",
		},
		{
			name: "section without title",
			fields: map[string]string{
				"courseTitle":           "Go Basics",
				"courseDifficulty":      "Beginner",
				"courseContentSections": `[{"body":"no title"}]`,
			},
			files:     []formFile{img},
			wantField: "contentSections",
		},
		{
			name: "section title without slug characters",
			fields: map[string]string{
				"courseTitle":           "Go Basics",
				"courseDifficulty":      "Beginner",
				"courseContentSections": `[{"title":"Intro"},{"title":"日本語"}]`,
			},
			files:     []formFile{img},
			wantField: "contentSections",
		},
		{
			name:      "not an image",
			fields:    courseForm("Go Basics"),
			files:     []formFile{{field: "courseImageFile", filename: "notes.txt", data: []byte("plain text, not an image")}},
			wantField: "image",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)

			rec := httptest.NewRecorder()
			env.API.CreateCourse(rec, multipartRequest(t, "/api/courses", tt.fields, tt.files...))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want %d (body %s)", rec.Code, http.StatusBadRequest, rec.Body.String())
			}
			fields, _ := decodeJSON(t, rec)["fields"].(map[string]any)
			if _, ok := fields[tt.wantField]; !ok {
				t.Errorf("fields: got %v, want key %q", fields, tt.wantField)
			}
			if env.Memory.CourseCreates != 0 {
				t.Errorf("course inserts: got %d, want 0", env.Memory.CourseCreates)
			}
		})
	}
}

func TestCreateCourse_DuplicateTitle(t *testing.T) {
	env := newTestEnv(t, nil)
	env.Memory.AddCourse("Go Basics", "go-basics", models.DifficultyBeginner)

	req := multipartRequest(t, "/api/courses", courseForm("Go  basics!"),
		formFile{field: "courseImageFile", filename: "cover.png", data: pngBytes(t)})
	rec := httptest.NewRecorder()
	env.API.CreateCourse(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d (body %s)", rec.Code, http.StatusConflict, rec.Body.String())
	}
	if env.Memory.CourseCreates != 0 {
		t.Errorf("course inserts: got %d, want 0", env.Memory.CourseCreates)
	}
	if len(env.Images.Keys()) != 0 {
		t.Errorf("image uploaded for a rejected course: %v", env.Images.Keys())
	}
}

func TestCreateCourse_LessonFailureRemovesCourse(t *testing.T) {
	env := newTestEnv(t, nil)
	env.Memory.CreateBatchErr = errors.New("insert content: connection reset")

	req := multipartRequest(t, "/api/courses", courseForm("Go Basics"),
		formFile{field: "courseImageFile", filename: "cover.png", data: pngBytes(t)})
	rec := httptest.NewRecorder()
	env.API.CreateCourse(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want %d (body %s)", rec.Code, http.StatusInternalServerError, rec.Body.String())
	}
	if env.Memory.CourseDeletes != 1 {
		t.Errorf("compensating deletes: got %d, want 1", env.Memory.CourseDeletes)
	}
}

func TestCreateCourse_NotMultipart(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/courses", strings.NewReader(`{"title":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.API.CreateCourse(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestGetCourse(t *testing.T) {
	env := newTestEnv(t, nil)
	c := env.Memory.AddCourse("Go Basics", "go-basics", models.DifficultyBeginner)
	env.Memory.AddLesson(c.ID, "Setup", "setup", 1)
	env.Memory.AddLesson(c.ID, "Intro", "intro", 0)

	t.Run("course with lessons", func(t *testing.T) {
		req := withChiURLParams(httptest.NewRequest(http.MethodGet, "/api/courses/go-basics", nil), "courseSlug", "go-basics")
		rec := httptest.NewRecorder()
		env.API.GetCourse(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
		}
		var got models.Course
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Slug != "go-basics" || len(got.Lessons) != 2 {
			t.Fatalf("course: got %+v", got)
		}
		if got.Lessons[0].Slug != "intro" {
			t.Errorf("first lesson: got %q, want intro", got.Lessons[0].Slug)
		}
	})

	t.Run("single lesson", func(t *testing.T) {
		req := withChiURLParams(httptest.NewRequest(http.MethodGet, "/api/courses/go-basics?contentSlug=setup", nil), "courseSlug", "go-basics")
		rec := httptest.NewRecorder()
		env.API.GetCourse(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
		}
		body := decodeJSON(t, rec)
		if body["courseTitle"] != "Go Basics" {
			t.Errorf("courseTitle: got %v", body["courseTitle"])
		}
		content, _ := body["content"].(map[string]any)
		if content["slug"] != "setup" {
			t.Errorf("content: got %v", content)
		}
	})

	notFound := []struct {
		name   string
		target string
		slug   string
	}{
		{"unknown course", "/api/courses/nope", "nope"},
		{"unknown lesson", "/api/courses/go-basics?contentSlug=nope", "go-basics"},
	}
	for _, tt := range notFound {
		t.Run(tt.name, func(t *testing.T) {
			req := withChiURLParams(httptest.NewRequest(http.MethodGet, tt.target, nil), "courseSlug", tt.slug)
			rec := httptest.NewRecorder()
			env.API.GetCourse(rec, req)

			if rec.Code != http.StatusNotFound {
				t.Fatalf("status: got %d, want %d", rec.Code, http.StatusNotFound)
			}
			if _, ok := decodeJSON(t, rec)["error"]; !ok {
				t.Error("404 response should carry an error message")
			}
		})
	}
}

func TestListCourses(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := httptest.NewRecorder()
	env.API.ListCourses(rec, httptest.NewRequest(http.MethodGet, "/api/courses", nil))
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("empty list: got %s, want []", got)
	}

	env.Memory.AddCourse("Go Basics", "go-basics", models.DifficultyBeginner)
	env.Memory.AddCourse("Advanced Rust", "advanced-rust", models.DifficultyAdvanced)

	rec = httptest.NewRecorder()
	env.API.ListCourses(rec, httptest.NewRequest(http.MethodGet, "/api/courses?q=rust", nil))
	var got []models.Course
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "advanced-rust" {
		t.Errorf("search: got %+v", got)
	}
}

func TestCreateBlog_SuffixesDuplicates(t *testing.T) {
	env := newTestEnv(t, nil)

	want := []string{"hello-world", "hello-world-1", "hello-world-2"}
	for i, w := range want {
		req := multipartRequest(t, "/api/blogs", map[string]string{
			"blogTitle":   "Hello World",
			"blogContent": "First post",
		})
		rec := httptest.NewRecorder()
		env.API.CreateBlog(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("post %d status: got %d (body %s)", i, rec.Code, rec.Body.String())
		}
		body := decodeJSON(t, rec)
		if body["message"] != "Blog post created successfully" {
			t.Errorf("message: got %v", body["message"])
		}
		blog, _ := body["blog"].(map[string]any)
		if blog["slug"] != w {
			t.Errorf("post %d slug: got %v, want %s", i, blog["slug"], w)
		}
	}
}

func TestCreateBlog_MissingContent(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := httptest.NewRecorder()
	env.API.CreateBlog(rec, multipartRequest(t, "/api/blogs", map[string]string{"blogTitle": "Hello"}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
	fields, _ := decodeJSON(t, rec)["fields"].(map[string]any)
	if _, ok := fields["blogContent"]; !ok {
		t.Errorf("fields: got %v, want blogContent", fields)
	}
}

func TestGetBlog(t *testing.T) {
	env := newTestEnv(t, nil)
	env.Memory.AddBlog("Hello World", "hello-world", "First post")

	req := withChiURLParams(httptest.NewRequest(http.MethodGet, "/api/blogs/hello-world", nil), "blogSlug", "hello-world")
	rec := httptest.NewRecorder()
	env.API.GetBlog(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if got := decodeJSON(t, rec)["title"]; got != "Hello World" {
		t.Errorf("title: got %v", got)
	}

	req = withChiURLParams(httptest.NewRequest(http.MethodGet, "/api/blogs/missing", nil), "blogSlug", "missing")
	rec = httptest.NewRecorder()
	env.API.GetBlog(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing post status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestSubscribe(t *testing.T) {
	env := newTestEnv(t, nil)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/user", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		env.API.Subscribe(rec, req)
		return rec
	}

	if rec := post(`{"email":"ada@example.com"}`); rec.Code != http.StatusCreated {
		t.Fatalf("first subscribe: got %d, want %d", rec.Code, http.StatusCreated)
	}
	if rec := post(`{"email":"  ADA@example.com "}`); rec.Code != http.StatusOK {
		t.Errorf("repeat subscribe: got %d, want %d", rec.Code, http.StatusOK)
	}

	bad := []string{`{"email":""}`, `{"email":"not-an-email"}`, `not json`}
	for _, body := range bad {
		rec := post(body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: got %d, want %d", body, rec.Code, http.StatusBadRequest)
		}
		if _, ok := decodeJSON(t, rec)["error"]; !ok {
			t.Errorf("body %s: response should carry an error message", body)
		}
	}
}
