// Package catalog holds the course and blog use cases: resolving slugs to
// pages and authoring new content. It talks to storage only through the
// repository interfaces in repository.go.
package catalog

import (
	"context"
	"fmt"

	"coursepress/internal/models"
)

// CourseView is a course with its ordered lessons and the lesson currently
// being displayed. Active is nil only when the course has no lessons.
type CourseView struct {
	Course      *models.Course
	Lessons     []models.Lesson
	Active      *models.Lesson
	ActiveIndex int
}

// IsActive reports whether l is the lesson being displayed.
func (v *CourseView) IsActive(l models.Lesson) bool {
	return v.Active != nil && v.Active.ID == l.ID
}

// Prev returns the lesson before the active one, or nil.
func (v *CourseView) Prev() *models.Lesson {
	if v.ActiveIndex <= 0 {
		return nil
	}
	return &v.Lessons[v.ActiveIndex-1]
}

// Next returns the lesson after the active one, or nil.
func (v *CourseView) Next() *models.Lesson {
	if v.ActiveIndex < 0 || v.ActiveIndex+1 >= len(v.Lessons) {
		return nil
	}
	return &v.Lessons[v.ActiveIndex+1]
}

// Empty reports whether the course has no lessons yet.
func (v *CourseView) Empty() bool {
	return len(v.Lessons) == 0
}

// Resolver maps course and lesson slugs to rows.
type Resolver struct {
	courses CourseRepository
	lessons LessonRepository
}

// NewResolver creates a Resolver over the given repositories.
func NewResolver(courses CourseRepository, lessons LessonRepository) *Resolver {
	return &Resolver{courses: courses, lessons: lessons}
}

// Course looks up a course by slug, without lessons.
func (r *Resolver) Course(ctx context.Context, courseSlug string) (*models.Course, error) {
	if courseSlug == "" {
		return nil, fieldError("slug", "course slug is required")
	}
	course, err := r.courses.FindBySlug(ctx, courseSlug)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	return course, nil
}

// CourseView resolves a course page. With an empty lessonSlug the first
// lesson is active; an unknown lessonSlug is ErrLessonNotFound, never a
// fallback to the first lesson.
func (r *Resolver) CourseView(ctx context.Context, courseSlug, lessonSlug string) (*CourseView, error) {
	course, err := r.Course(ctx, courseSlug)
	if err != nil {
		return nil, err
	}

	view := &CourseView{Course: course, ActiveIndex: -1}

	if lessonSlug != "" {
		active, err := r.lessons.FindBySlug(ctx, course.ID, lessonSlug)
		if err != nil {
			return nil, err
		}
		if active == nil {
			return nil, fmt.Errorf("%w: %s/%s", ErrLessonNotFound, courseSlug, lessonSlug)
		}
		view.Active = active
	}

	view.Lessons, err = r.lessons.ListByCourse(ctx, course.ID)
	if err != nil {
		return nil, err
	}

	if view.Active == nil {
		if len(view.Lessons) > 0 {
			view.Active = &view.Lessons[0]
			view.ActiveIndex = 0
		}
		return view, nil
	}

	for i := range view.Lessons {
		if view.Lessons[i].ID == view.Active.ID {
			view.ActiveIndex = i
			view.Active = &view.Lessons[i]
			break
		}
	}
	return view, nil
}

// Lesson resolves a single lesson of a course for the API.
func (r *Resolver) Lesson(ctx context.Context, courseSlug, lessonSlug string) (*models.Course, *models.Lesson, error) {
	course, err := r.Course(ctx, courseSlug)
	if err != nil {
		return nil, nil, err
	}
	lesson, err := r.lessons.FindBySlug(ctx, course.ID, lessonSlug)
	if err != nil {
		return nil, nil, err
	}
	if lesson == nil {
		return nil, nil, fmt.Errorf("%w: %s/%s", ErrLessonNotFound, courseSlug, lessonSlug)
	}
	return course, lesson, nil
}

// CourseWithLessons returns a course with all its lessons attached.
func (r *Resolver) CourseWithLessons(ctx context.Context, courseSlug string) (*models.Course, error) {
	course, err := r.Course(ctx, courseSlug)
	if err != nil {
		return nil, err
	}
	course.Lessons, err = r.lessons.ListByCourse(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	return course, nil
}
