package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"coursepress/internal/imaging"
	"coursepress/internal/models"
	"coursepress/internal/slug"
	"coursepress/internal/store"
)

// Object key prefixes, one per kind of image.
const (
	courseImagePrefix = "courseimages"
	blogImagePrefix   = "blogimages"
)

// thumbWidth is the maximum width of course card thumbnails.
const thumbWidth = 480

// maxBlogAttempts bounds the resolve-then-insert loop when concurrent
// posts race for the same slug.
const maxBlogAttempts = 3

// rollbackTimeout bounds the compensating delete of a half-created course.
const rollbackTimeout = 5 * time.Second

// CourseCreated is returned after a course and its lessons are stored.
type CourseCreated struct {
	ID   int64  `json:"courseId"`
	Slug string `json:"courseSlug"`
}

// BlogCreated is returned after a blog post is stored.
type BlogCreated struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
}

// Service runs the authoring pipeline and the listing queries behind the
// public pages and the JSON API.
type Service struct {
	courses      CourseRepository
	lessons      LessonRepository
	blogs        BlogRepository
	images       ImageStore
	coursePolicy slug.Policy
}

// NewService creates a Service. coursePolicy decides what happens when a
// new course title collides with an existing course slug.
func NewService(courses CourseRepository, lessons LessonRepository, blogs BlogRepository, images ImageStore, coursePolicy slug.Policy) *Service {
	if coursePolicy == "" {
		coursePolicy = slug.PolicyReject
	}
	return &Service{
		courses:      courses,
		lessons:      lessons,
		blogs:        blogs,
		images:       images,
		coursePolicy: coursePolicy,
	}
}

// CreateCourse stores a course, its image and its lessons. Lessons take
// their position from their order in the input. If the lessons cannot be
// written the course row is deleted again; the uploaded image is left in
// place and logged.
func (s *Service) CreateCourse(ctx context.Context, in CourseInput) (*CourseCreated, error) {
	if err := in.Validate(); err != nil {
		return nil, wrapValidation(err)
	}
	sections, err := ParseSections(in.Sections)
	if err != nil {
		return nil, err
	}

	courseSlug, err := s.resolveSlug(ctx, in.Title, slug.ScopeFunc(s.courses.SlugExists), s.coursePolicy, "course")
	if err != nil {
		return nil, err
	}

	imageKey, imageURL, err := s.uploadImage(ctx, courseImagePrefix, in.Image)
	if err != nil {
		slog.Error("course image upload failed", "operation", "create_course", "scope", "course", "slug", courseSlug, "error", err)
		return nil, err
	}
	thumbURL := s.uploadThumbnail(ctx, imageKey, in.Image)

	course, err := s.courses.Create(ctx, &models.Course{
		Title:       in.Title,
		Description: in.Description,
		Difficulty:  models.Difficulty(in.Difficulty),
		ImageURL:    imageURL,
		ThumbURL:    thumbURL,
		Slug:        courseSlug,
	})
	if err != nil {
		logOrphanImage(imageKey)
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", ErrConflict, courseSlug)
		}
		slog.Error("insert course failed", "operation", "create_course", "scope", "course", "slug", courseSlug, "error", err)
		return nil, err
	}

	lessons := make([]models.Lesson, len(sections))
	for i, sec := range sections {
		lessons[i] = models.Lesson{
			Title:    sec.Title,
			Body:     sec.Body,
			Metadata: sec.Metadata,
			Slug:     slug.Generate(sec.Title),
			Position: i,
		}
	}

	if err := s.lessons.CreateBatch(ctx, course.ID, lessons); err != nil {
		slog.Error("insert lessons failed, removing course", "operation", "create_lessons", "scope", "content", "slug", courseSlug, "error", err)
		s.removeCourse(ctx, course)
		logOrphanImage(imageKey)
		return nil, fmt.Errorf("%w: %w", ErrCourseIncomplete, err)
	}

	slog.Info("course created", "slug", courseSlug, "id", course.ID, "lessons", len(lessons))
	return &CourseCreated{ID: course.ID, Slug: course.Slug}, nil
}

// removeCourse deletes a course whose lessons could not be written. It runs
// detached from ctx: a client that disconnected mid-request must not leave
// a lessonless course behind.
func (s *Service) removeCourse(ctx context.Context, course *models.Course) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()
	if err := s.courses.Delete(ctx, course.ID); err != nil {
		slog.Error("compensating course delete failed", "operation", "delete_course", "scope", "course", "slug", course.Slug, "course_id", course.ID, "error", err)
	}
}

// CreateBlogPost stores a blog post under a unique slug, suffixing -1, -2,
// ... on collisions. A storage-level duplicate from a concurrent insert
// triggers a fresh slug resolution, up to maxBlogAttempts in total.
func (s *Service) CreateBlogPost(ctx context.Context, in BlogInput) (*BlogCreated, error) {
	if err := in.Validate(); err != nil {
		return nil, wrapValidation(err)
	}

	scope := slug.ScopeFunc(s.blogs.SlugExists)
	blogSlug, err := s.resolveSlug(ctx, in.Title, scope, slug.PolicySuffix, "blogs")
	if err != nil {
		return nil, err
	}

	var imageKey string
	var imageURL *string
	if in.Image != nil {
		key, url, err := s.uploadImage(ctx, blogImagePrefix, in.Image)
		if err != nil {
			slog.Error("blog image upload failed", "operation", "create_blog", "scope", "blogs", "slug", blogSlug, "error", err)
			return nil, err
		}
		imageKey, imageURL = key, &url
	}

	var metadata *string
	if m := strings.TrimSpace(in.Metadata); m != "" {
		metadata = &m
	}

	for attempt := 1; ; attempt++ {
		post, err := s.blogs.Create(ctx, &models.BlogPost{
			Title:    in.Title,
			Content:  in.Content,
			ImageURL: imageURL,
			Metadata: metadata,
			Slug:     blogSlug,
		})
		if err == nil {
			slog.Info("blog post created", "slug", post.Slug, "id", post.ID)
			return &BlogCreated{ID: post.ID, Slug: post.Slug}, nil
		}
		if !errors.Is(err, store.ErrDuplicate) {
			slog.Error("insert blog failed", "operation", "create_blog", "scope", "blogs", "slug", blogSlug, "error", err)
			logOrphanImage(imageKey)
			return nil, err
		}
		if attempt == maxBlogAttempts {
			logOrphanImage(imageKey)
			return nil, fmt.Errorf("%w: %s", ErrConflict, blogSlug)
		}
		slog.Warn("blog slug taken concurrently, resolving again", "slug", blogSlug, "attempt", attempt)
		blogSlug, err = s.resolveSlug(ctx, in.Title, scope, slug.PolicySuffix, "blogs")
		if err != nil {
			logOrphanImage(imageKey)
			return nil, err
		}
	}
}

// resolveSlug maps slug package errors onto catalog errors.
func (s *Service) resolveSlug(ctx context.Context, title string, scope slug.Scope, policy slug.Policy, table string) (string, error) {
	resolved, err := slug.Resolve(ctx, title, scope, policy)
	switch {
	case err == nil:
		return resolved, nil
	case errors.Is(err, slug.ErrEmpty):
		field := "title"
		if table == "blogs" {
			field = "blogTitle"
		}
		return "", fieldError(field, "must contain at least one letter or digit")
	case errors.Is(err, slug.ErrTaken):
		return "", fmt.Errorf("%w: %s", ErrConflict, slug.Generate(title))
	default:
		slog.Error("slug lookup failed", "operation", "resolve_slug", "scope", table, "slug", slug.Generate(title), "error", err)
		return "", err
	}
}

// uploadImage stores img under prefix with a random key and returns the key
// and its public URL.
func (s *Service) uploadImage(ctx context.Context, prefix string, img *ImageUpload) (string, string, error) {
	if s.images == nil {
		return "", "", fmt.Errorf("%w: object storage is not configured", ErrUpload)
	}
	key := prefix + "/" + uuid.New().String() + img.ext()
	if err := s.images.Upload(ctx, key, img.ContentType, bytes.NewReader(img.Data), int64(len(img.Data))); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	return key, s.images.FileURL(key), nil
}

// uploadThumbnail stores a downscaled JPEG next to the original. Failures
// only cost the card a smaller image, so they are logged and ignored.
func (s *Service) uploadThumbnail(ctx context.Context, originalKey string, img *ImageUpload) *string {
	thumb, err := imaging.Thumbnail(img.Data, thumbWidth)
	if err != nil {
		slog.Warn("thumbnail generation skipped", "key", originalKey, "error", err)
		return nil
	}
	if thumb == nil {
		// Already small enough to serve as its own thumbnail.
		return nil
	}
	key := strings.TrimSuffix(originalKey, img.ext()) + "_thumb.jpg"
	if err := s.images.Upload(ctx, key, "image/jpeg", bytes.NewReader(thumb), int64(len(thumb))); err != nil {
		slog.Warn("thumbnail upload failed", "key", key, "error", err)
		return nil
	}
	url := s.images.FileURL(key)
	return &url
}

func logOrphanImage(key string) {
	if key != "" {
		slog.Warn("uploaded image left without a row", "key", key)
	}
}

// ListCourses returns all courses newest first, lessons nested.
func (s *Service) ListCourses(ctx context.Context) ([]models.Course, error) {
	return s.courses.ListWithLessons(ctx)
}

// SearchCourses filters courses by title or description. A blank query
// lists everything.
func (s *Service) SearchCourses(ctx context.Context, q string) ([]models.Course, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return s.courses.ListWithLessons(ctx)
	}
	return s.courses.Search(ctx, q)
}

// ListBlogPosts returns all blog posts newest first.
func (s *Service) ListBlogPosts(ctx context.Context) ([]models.BlogPost, error) {
	return s.blogs.List(ctx)
}

// BlogPost looks up one blog post by slug.
func (s *Service) BlogPost(ctx context.Context, blogSlug string) (*models.BlogPost, error) {
	if blogSlug == "" {
		return nil, fieldError("slug", "blog slug is required")
	}
	post, err := s.blogs.FindBySlug(ctx, blogSlug)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrBlogNotFound
	}
	return post, nil
}
