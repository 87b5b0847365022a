// Package catalogtest provides in-memory repositories and an image store
// for tests of the catalog package and the HTTP handlers.
package catalogtest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"coursepress/internal/models"
	"coursepress/internal/store"
)

// Memory implements the catalog course, lesson and blog repositories over
// maps. Error fields let tests inject failures into specific operations.
// Writes fail with ctx.Err() on a done context, as database/sql does.
type Memory struct {
	mu      sync.Mutex
	nextID  int64
	now     time.Time
	courses []models.Course
	lessons []models.Lesson
	blogs   []models.BlogPost
	subs    []models.Subscriber

	// Injected failures.
	LookupErr       error
	CreateCourseErr error
	CreateBatchErr  error
	DeleteErr       error
	CreateBlogErr   []error // consumed one per Create call

	// BeforeCreateBatch runs at the start of Lessons.CreateBatch, before the
	// context check, so tests can cancel the request mid-pipeline.
	BeforeCreateBatch func()

	// Call counters.
	CourseCreates int
	CourseDeletes int
	BlogCreates   int
	SlugProbes    []string
}

// NewMemory returns an empty Memory whose clock starts at a fixed time and
// advances one minute per insert, so newest-first ordering is stable.
func NewMemory() *Memory {
	return &Memory{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *Memory) tick() (int64, time.Time) {
	m.nextID++
	m.now = m.now.Add(time.Minute)
	return m.nextID, m.now
}

// Courses returns the course repository view.
func (m *Memory) Courses() *Courses { return &Courses{m} }

// Lessons returns the lesson repository view.
func (m *Memory) Lessons() *Lessons { return &Lessons{m} }

// Blogs returns the blog repository view.
func (m *Memory) Blogs() *Blogs { return &Blogs{m} }

// Subscribers returns the subscriber repository view.
func (m *Memory) Subscribers() *Subscribers { return &Subscribers{m} }

// Courses is the in-memory course repository.
type Courses struct{ m *Memory }

func (r *Courses) SlugExists(_ context.Context, slug string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.SlugProbes = append(r.m.SlugProbes, slug)
	if r.m.LookupErr != nil {
		return false, r.m.LookupErr
	}
	for _, c := range r.m.courses {
		if c.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *Courses) FindBySlug(_ context.Context, slug string) (*models.Course, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.LookupErr != nil {
		return nil, r.m.LookupErr
	}
	for _, c := range r.m.courses {
		if c.Slug == slug {
			c.Lessons = nil
			return &c, nil
		}
	}
	return nil, nil
}

func (r *Courses) Create(ctx context.Context, c *models.Course) (*models.Course, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.CourseCreates++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.m.CreateCourseErr != nil {
		return nil, r.m.CreateCourseErr
	}
	for _, existing := range r.m.courses {
		if existing.Slug == c.Slug {
			return nil, fmt.Errorf("create course %q: %w", c.Slug, store.ErrDuplicate)
		}
	}
	row := *c
	row.ID, row.CreatedAt = r.m.tick()
	row.Lessons = nil
	r.m.courses = append(r.m.courses, row)
	return &row, nil
}

func (r *Courses) Delete(ctx context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.CourseDeletes++
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.m.DeleteErr != nil {
		return r.m.DeleteErr
	}
	kept := r.m.courses[:0]
	for _, c := range r.m.courses {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	r.m.courses = kept
	lessons := r.m.lessons[:0]
	for _, l := range r.m.lessons {
		if l.CourseID != id {
			lessons = append(lessons, l)
		}
	}
	r.m.lessons = lessons
	return nil
}

func (r *Courses) ListWithLessons(_ context.Context) ([]models.Course, error) {
	return r.filter(func(models.Course) bool { return true })
}

func (r *Courses) Search(_ context.Context, q string) ([]models.Course, error) {
	q = strings.ToLower(q)
	return r.filter(func(c models.Course) bool {
		return strings.Contains(strings.ToLower(c.Title), q) ||
			strings.Contains(strings.ToLower(c.Description), q)
	})
}

func (r *Courses) filter(keep func(models.Course) bool) ([]models.Course, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.LookupErr != nil {
		return nil, r.m.LookupErr
	}
	out := []models.Course{}
	for _, c := range r.m.courses {
		if !keep(c) {
			continue
		}
		c.Lessons = r.m.lessonsOf(c.ID)
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// lessonsOf returns a course's lessons ordered by position, then ID.
// Callers hold the lock.
func (m *Memory) lessonsOf(courseID int64) []models.Lesson {
	out := []models.Lesson{}
	for _, l := range m.lessons {
		if l.CourseID == courseID {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Lessons is the in-memory lesson repository.
type Lessons struct{ m *Memory }

func (r *Lessons) FindBySlug(_ context.Context, courseID int64, slug string) (*models.Lesson, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.LookupErr != nil {
		return nil, r.m.LookupErr
	}
	for _, l := range r.m.lessonsOf(courseID) {
		if l.Slug == slug {
			return &l, nil
		}
	}
	return nil, nil
}

func (r *Lessons) ListByCourse(_ context.Context, courseID int64) ([]models.Lesson, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.LookupErr != nil {
		return nil, r.m.LookupErr
	}
	return r.m.lessonsOf(courseID), nil
}

// CreateBatch is all-or-nothing, like the transactional store.
func (r *Lessons) CreateBatch(ctx context.Context, courseID int64, lessons []models.Lesson) error {
	if r.m.BeforeCreateBatch != nil {
		r.m.BeforeCreateBatch()
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.m.CreateBatchErr != nil {
		return r.m.CreateBatchErr
	}
	for i, l := range lessons {
		l.ID, _ = r.m.tick()
		l.CourseID = courseID
		l.Position = i
		r.m.lessons = append(r.m.lessons, l)
	}
	return nil
}

// AddLesson appends a lesson directly, bypassing the authoring pipeline.
func (m *Memory) AddLesson(courseID int64, title, slug string, position int) models.Lesson {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := models.Lesson{CourseID: courseID, Title: title, Body: "body of " + title, Slug: slug, Position: position}
	l.ID, _ = m.tick()
	m.lessons = append(m.lessons, l)
	return l
}

// AddCourse inserts a course directly, bypassing the authoring pipeline.
func (m *Memory) AddCourse(title, slug string, difficulty models.Difficulty) models.Course {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := models.Course{Title: title, Slug: slug, Difficulty: difficulty, ImageURL: "https://cdn.test/" + slug + ".png"}
	c.ID, c.CreatedAt = m.tick()
	m.courses = append(m.courses, c)
	return c
}

// Blogs is the in-memory blog repository.
type Blogs struct{ m *Memory }

func (r *Blogs) SlugExists(_ context.Context, slug string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.SlugProbes = append(r.m.SlugProbes, slug)
	if r.m.LookupErr != nil {
		return false, r.m.LookupErr
	}
	for _, b := range r.m.blogs {
		if b.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *Blogs) FindBySlug(_ context.Context, slug string) (*models.BlogPost, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.LookupErr != nil {
		return nil, r.m.LookupErr
	}
	for _, b := range r.m.blogs {
		if b.Slug == slug {
			return &b, nil
		}
	}
	return nil, nil
}

func (r *Blogs) Create(ctx context.Context, b *models.BlogPost) (*models.BlogPost, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.BlogCreates++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(r.m.CreateBlogErr) > 0 {
		err := r.m.CreateBlogErr[0]
		r.m.CreateBlogErr = r.m.CreateBlogErr[1:]
		if err != nil {
			return nil, err
		}
	}
	for _, existing := range r.m.blogs {
		if existing.Slug == b.Slug {
			return nil, fmt.Errorf("create blog %q: %w", b.Slug, store.ErrDuplicate)
		}
	}
	row := *b
	row.ID, row.CreatedAt = r.m.tick()
	r.m.blogs = append(r.m.blogs, row)
	return &row, nil
}

func (r *Blogs) List(_ context.Context) ([]models.BlogPost, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.LookupErr != nil {
		return nil, r.m.LookupErr
	}
	out := append([]models.BlogPost{}, r.m.blogs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// AddBlog inserts a blog post directly.
func (m *Memory) AddBlog(title, slug, content string) models.BlogPost {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := models.BlogPost{Title: title, Slug: slug, Content: content}
	b.ID, b.CreatedAt = m.tick()
	m.blogs = append(m.blogs, b)
	return b
}

// Subscribers is the in-memory newsletter repository.
type Subscribers struct{ m *Memory }

func (r *Subscribers) FindByEmail(_ context.Context, email string) (*models.Subscriber, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.LookupErr != nil {
		return nil, r.m.LookupErr
	}
	for _, s := range r.m.subs {
		if s.Email == email {
			return &s, nil
		}
	}
	return nil, nil
}

func (r *Subscribers) Create(ctx context.Context, email string) (*models.Subscriber, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, s := range r.m.subs {
		if s.Email == email {
			return nil, fmt.Errorf("create subscriber: %w", store.ErrDuplicate)
		}
	}
	s := models.Subscriber{Email: email}
	s.ID, s.CreatedAt = r.m.tick()
	r.m.subs = append(r.m.subs, s)
	return &s, nil
}

// Images is an in-memory ImageStore.
type Images struct {
	mu        sync.Mutex
	Objects   map[string][]byte
	UploadErr error
}

// NewImages returns an empty image store.
func NewImages() *Images {
	return &Images{Objects: make(map[string][]byte)}
}

func (s *Images) Upload(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UploadErr != nil {
		return s.UploadErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}
	s.Objects[key] = buf.Bytes()
	return nil
}

func (s *Images) FileURL(key string) string {
	return "https://cdn.test/" + key
}

// Keys returns the stored object keys in sorted order.
func (s *Images) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.Objects))
	for k := range s.Objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
