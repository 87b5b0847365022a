// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"coursepress/internal/models"
)

const lessonColumns = `id, category, title, content, metadata, slug, position`

// LessonStore handles database operations on the content table, where each
// row is one lesson belonging to a course.
type LessonStore struct {
	db *sql.DB
}

// NewLessonStore creates a new LessonStore with the given database connection.
func NewLessonStore(db *sql.DB) *LessonStore {
	return &LessonStore{db: db}
}

// rawJSON turns a scanned JSONB column into a RawMessage, keeping NULL as nil.
func rawJSON(b []byte) json.RawMessage {
	if len(b) == 0 {
		return nil
	}
	return json.RawMessage(b)
}

// jsonArg converts optional metadata into a driver value for a ::jsonb cast.
func jsonArg(m json.RawMessage) any {
	if len(m) == 0 {
		return nil
	}
	return string(m)
}

func scanLesson(row interface{ Scan(...any) error }, l *models.Lesson) error {
	var metadata []byte
	if err := row.Scan(
		&l.ID, &l.CourseID, &l.Title, &l.Body, &metadata, &l.Slug, &l.Position,
	); err != nil {
		return err
	}
	l.Metadata = rawJSON(metadata)
	return nil
}

// FindBySlug returns the first lesson of a course with the given slug, in
// position order. Lesson slugs are not unique within a course, so duplicates
// resolve to the earliest. Returns nil if not found.
func (s *LessonStore) FindBySlug(ctx context.Context, courseID int64, slug string) (*models.Lesson, error) {
	l := &models.Lesson{}
	err := scanLesson(s.db.QueryRowContext(ctx, `
		SELECT `+lessonColumns+`
		FROM content
		WHERE category = $1 AND slug = $2
		ORDER BY position, id
		LIMIT 1
	`, courseID, slug), l)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find lesson by slug: %w", err)
	}
	return l, nil
}

// ListByCourse returns a course's lessons in position order.
func (s *LessonStore) ListByCourse(ctx context.Context, courseID int64) ([]models.Lesson, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+lessonColumns+`
		FROM content
		WHERE category = $1
		ORDER BY position, id
	`, courseID)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()

	lessons := []models.Lesson{}
	for rows.Next() {
		var l models.Lesson
		if err := scanLesson(rows, &l); err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

// CreateBatch inserts the lessons of one course in a single transaction.
// Each lesson's position is its index in the slice; either all rows are
// written or none are.
func (s *LessonStore) CreateBatch(ctx context.Context, courseID int64, lessons []models.Lesson) error {
	if len(lessons) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO content (title, content, metadata, slug, position, category)
		VALUES ($1, $2, $3::jsonb, $4, $5, $6)`)
	if err != nil {
		return fmt.Errorf("prepare lesson insert: %w", err)
	}
	defer stmt.Close()

	for i, l := range lessons {
		if _, err := stmt.ExecContext(ctx,
			l.Title, l.Body, jsonArg(l.Metadata), l.Slug, i, courseID,
		); err != nil {
			return fmt.Errorf("insert lesson %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit lessons: %w", err)
	}
	return nil
}
