package models

import "time"

// BlogPost is a row of the blogs table. Slug is unique across all posts.
type BlogPost struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ImageURL  *string   `json:"image_url"`
	Metadata  *string   `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Slug      string    `json:"slug"`
}
