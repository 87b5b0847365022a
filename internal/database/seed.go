package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

type seedLesson struct {
	title, body, slug string
}

// Seed populates an empty database with one sample course and one blog
// post so a fresh development instance has something to render. It does
// nothing when any course already exists.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM course").Scan(&count); err != nil {
		return fmt.Errorf("seed check courses: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var courseID int64
	err = tx.QueryRow(`
		INSERT INTO course (title, description, difficulty, image_url, slug)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, "Go Basics", "A short tour of the Go language.", "Beginner",
		"/static/img/sample-course.svg", "go-basics").Scan(&courseID)
	if err != nil {
		return fmt.Errorf("seed insert course: %w", err)
	}

	lessons := []seedLesson{
		{"Intro", "## Welcome\n\nWhy Go, and what you will build.", "intro"},
		{"Setup", "Install the toolchain and create a module.", "setup"},
		{"Hello World", "```go\nfmt.Println(\"hello\")\n```", "hello-world"},
	}
	for i, l := range lessons {
		if _, err := tx.Exec(`
			INSERT INTO content (title, content, slug, position, category)
			VALUES ($1, $2, $3, $4, $5)
		`, l.title, l.body, l.slug, i, courseID); err != nil {
			return fmt.Errorf("seed insert lesson %s: %w", l.slug, err)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO blogs (title, content, slug)
		VALUES ($1, $2, $3)
		ON CONFLICT (slug) DO NOTHING
	`, "Hello World", "Our first post.\n\nMore courses are on the way.", "hello-world"); err != nil {
		return fmt.Errorf("seed insert blog: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with sample content", "course", "go-basics", "lessons", len(lessons))
	return nil
}
