package catalog

import (
	"context"
	"io"

	"coursepress/internal/models"
)

// CourseRepository is the course side of the content store.
// *store.CourseStore satisfies it.
type CourseRepository interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
	FindBySlug(ctx context.Context, slug string) (*models.Course, error)
	Create(ctx context.Context, c *models.Course) (*models.Course, error)
	Delete(ctx context.Context, id int64) error
	ListWithLessons(ctx context.Context) ([]models.Course, error)
	Search(ctx context.Context, q string) ([]models.Course, error)
}

// LessonRepository reads and writes the lessons of a course.
// *store.LessonStore satisfies it.
type LessonRepository interface {
	FindBySlug(ctx context.Context, courseID int64, slug string) (*models.Lesson, error)
	ListByCourse(ctx context.Context, courseID int64) ([]models.Lesson, error)
	CreateBatch(ctx context.Context, courseID int64, lessons []models.Lesson) error
}

// BlogRepository is the blog side of the content store.
// *store.BlogStore satisfies it.
type BlogRepository interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
	FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	Create(ctx context.Context, b *models.BlogPost) (*models.BlogPost, error)
	List(ctx context.Context) ([]models.BlogPost, error)
}

// ImageStore writes course and blog images to object storage.
// *storage.Client satisfies it.
type ImageStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	FileURL(key string) string
}
