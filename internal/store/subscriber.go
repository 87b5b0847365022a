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

// SubscriberStore handles newsletter sign-ups in the users table.
type SubscriberStore struct {
	db *sql.DB
}

// NewSubscriberStore creates a new SubscriberStore with the given database connection.
func NewSubscriberStore(db *sql.DB) *SubscriberStore {
	return &SubscriberStore{db: db}
}

// FindByEmail retrieves a subscriber by exact email. Returns nil if not found.
func (s *SubscriberStore) FindByEmail(ctx context.Context, email string) (*models.Subscriber, error) {
	sub := &models.Subscriber{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, created_at FROM users WHERE email = $1`, email,
	).Scan(&sub.ID, &sub.Email, &sub.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find subscriber: %w", err)
	}
	return sub, nil
}

// Create records a new subscriber. An existing email yields ErrDuplicate.
func (s *SubscriberStore) Create(ctx context.Context, email string) (*models.Subscriber, error) {
	sub := &models.Subscriber{}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (email) VALUES ($1) RETURNING id, email, created_at`, email,
	).Scan(&sub.ID, &sub.Email, &sub.CreatedAt)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("create subscriber: %w", ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("create subscriber: %w", err)
	}
	return sub, nil
}
