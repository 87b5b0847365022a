// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"encoding/json"
	"time"
)

// Difficulty is the advertised level of a course. Any non-empty value is
// accepted; the three known levels get dedicated styling.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// BadgeClass returns the CSS classes used to render the difficulty badge.
func (d Difficulty) BadgeClass() string {
	switch d {
	case DifficultyBeginner:
		return "bg-green-100 text-green-700"
	case DifficultyIntermediate:
		return "bg-yellow-100 text-yellow-700"
	case DifficultyAdvanced:
		return "bg-red-100 text-red-700"
	default:
		return "bg-slate-100 text-slate-600"
	}
}

// Course is a row of the course table. Slug is unique across all courses.
type Course struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Difficulty  Difficulty `json:"difficulty"`
	ImageURL    string     `json:"image_url"`
	ThumbURL    *string    `json:"thumb_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	Slug        string     `json:"slug"`

	// Populated by listing queries only.
	Lessons []Lesson `json:"content"`
}

// CardImage returns the thumbnail URL when one exists, the original otherwise.
func (c Course) CardImage() string {
	if c.ThumbURL != nil && *c.ThumbURL != "" {
		return *c.ThumbURL
	}
	return c.ImageURL
}

// Lesson is a content section of a course, stored in the content table.
// Its slug is only meaningful together with CourseID. Lessons are shown
// in Position order; ID breaks ties for rows written before positions
// existed.
type Lesson struct {
	ID       int64           `json:"id"`
	CourseID int64           `json:"-"`
	Title    string          `json:"title"`
	Body     string          `json:"content"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
	Slug     string          `json:"slug"`
	Position int             `json:"position"`
}
