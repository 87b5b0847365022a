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

const blogColumns = `id, title, content, image_url, metadata, created_at, slug`

// BlogStore handles database operations on the blogs table.
type BlogStore struct {
	db *sql.DB
}

// NewBlogStore creates a new BlogStore with the given database connection.
func NewBlogStore(db *sql.DB) *BlogStore {
	return &BlogStore{db: db}
}

func scanBlog(row interface{ Scan(...any) error }, b *models.BlogPost) error {
	return row.Scan(&b.ID, &b.Title, &b.Content, &b.ImageURL, &b.Metadata, &b.CreatedAt, &b.Slug)
}

// SlugExists reports whether any blog post already uses the slug.
func (s *BlogStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM blogs WHERE slug = $1)`, slug,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("blog slug exists: %w", err)
	}
	return exists, nil
}

// FindBySlug retrieves a blog post by slug. Returns nil if not found.
func (s *BlogStore) FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	b := &models.BlogPost{}
	err := scanBlog(s.db.QueryRowContext(ctx,
		`SELECT `+blogColumns+` FROM blogs WHERE slug = $1`, slug,
	), b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find blog by slug: %w", err)
	}
	return b, nil
}

// Create inserts a blog post. A slug collision yields ErrDuplicate so the
// caller can pick the next suffix and retry.
func (s *BlogStore) Create(ctx context.Context, b *models.BlogPost) (*models.BlogPost, error) {
	result := &models.BlogPost{}
	err := scanBlog(s.db.QueryRowContext(ctx, `
		INSERT INTO blogs (title, content, image_url, metadata, slug)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+blogColumns,
		b.Title, b.Content, b.ImageURL, b.Metadata, b.Slug,
	), result)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("create blog %q: %w", b.Slug, ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("create blog: %w", err)
	}
	return result, nil
}

// List returns all blog posts, newest first.
func (s *BlogStore) List(ctx context.Context) ([]models.BlogPost, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+blogColumns+` FROM blogs ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	defer rows.Close()

	posts := []models.BlogPost{}
	for rows.Next() {
		var b models.BlogPost
		if err := scanBlog(rows, &b); err != nil {
			return nil, fmt.Errorf("scan blog: %w", err)
		}
		posts = append(posts, b)
	}
	return posts, rows.Err()
}
