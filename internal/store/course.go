// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"coursepress/internal/models"
)

const courseColumns = `id, title, description, difficulty, image_url, thumb_url, created_at, slug`

// CourseStore handles database operations on the course table.
type CourseStore struct {
	db *sql.DB
}

// NewCourseStore creates a new CourseStore with the given database connection.
func NewCourseStore(db *sql.DB) *CourseStore {
	return &CourseStore{db: db}
}

func scanCourse(row interface{ Scan(...any) error }, c *models.Course) error {
	return row.Scan(
		&c.ID, &c.Title, &c.Description, &c.Difficulty,
		&c.ImageURL, &c.ThumbURL, &c.CreatedAt, &c.Slug,
	)
}

// SlugExists reports whether any course already uses the slug.
func (s *CourseStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM course WHERE slug = $1)`, slug,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("course slug exists: %w", err)
	}
	return exists, nil
}

// FindBySlug retrieves a course by slug without its lessons. Returns nil if
// not found.
func (s *CourseStore) FindBySlug(ctx context.Context, slug string) (*models.Course, error) {
	c := &models.Course{}
	err := scanCourse(s.db.QueryRowContext(ctx,
		`SELECT `+courseColumns+` FROM course WHERE slug = $1`, slug,
	), c)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find course by slug: %w", err)
	}
	return c, nil
}

// Create inserts a course and returns it with the generated ID and
// timestamp. A slug collision yields ErrDuplicate.
func (s *CourseStore) Create(ctx context.Context, c *models.Course) (*models.Course, error) {
	result := &models.Course{}
	err := scanCourse(s.db.QueryRowContext(ctx, `
		INSERT INTO course (title, description, difficulty, image_url, thumb_url, slug)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+courseColumns,
		c.Title, c.Description, c.Difficulty, c.ImageURL, c.ThumbURL, c.Slug,
	), result)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("create course %q: %w", c.Slug, ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return result, nil
}

// Delete removes a course by ID. Its lessons go with it (ON DELETE CASCADE).
func (s *CourseStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM course WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}

// ListWithLessons returns every course, newest first, each carrying its
// lessons in position order. One LEFT JOIN query; courses without lessons
// still appear.
func (s *CourseStore) ListWithLessons(ctx context.Context) ([]models.Course, error) {
	return s.listWithLessons(ctx, `
		SELECT c.id, c.title, c.description, c.difficulty, c.image_url, c.thumb_url,
		       c.created_at, c.slug,
		       l.id, l.title, l.content, l.metadata, l.slug, l.position
		FROM course c
		LEFT JOIN content l ON l.category = c.id
		ORDER BY c.created_at DESC, c.id DESC, l.position, l.id
	`)
}

// Search is ListWithLessons restricted to courses whose title or
// description contains q, case-insensitively.
func (s *CourseStore) Search(ctx context.Context, q string) ([]models.Course, error) {
	return s.listWithLessons(ctx, `
		SELECT c.id, c.title, c.description, c.difficulty, c.image_url, c.thumb_url,
		       c.created_at, c.slug,
		       l.id, l.title, l.content, l.metadata, l.slug, l.position
		FROM course c
		LEFT JOIN content l ON l.category = c.id
		WHERE c.title ILIKE $1 OR c.description ILIKE $1
		ORDER BY c.created_at DESC, c.id DESC, l.position, l.id
	`, containsPattern(q))
}

func (s *CourseStore) listWithLessons(ctx context.Context, query string, args ...any) ([]models.Course, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		var (
			c        models.Course
			lessonID sql.NullInt64
			title    sql.NullString
			body     sql.NullString
			metadata []byte
			slug     sql.NullString
			position sql.NullInt64
		)
		if err := rows.Scan(
			&c.ID, &c.Title, &c.Description, &c.Difficulty,
			&c.ImageURL, &c.ThumbURL, &c.CreatedAt, &c.Slug,
			&lessonID, &title, &body, &metadata, &slug, &position,
		); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}

		// Rows arrive grouped by course, so a new ID starts a new course.
		if n := len(courses); n == 0 || courses[n-1].ID != c.ID {
			c.Lessons = []models.Lesson{}
			courses = append(courses, c)
		}
		if !lessonID.Valid {
			continue
		}
		cur := &courses[len(courses)-1]
		cur.Lessons = append(cur.Lessons, models.Lesson{
			ID:       lessonID.Int64,
			CourseID: cur.ID,
			Title:    title.String,
			Body:     body.String,
			Metadata: rawJSON(metadata),
			Slug:     slug.String,
			Position: int(position.Int64),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}
