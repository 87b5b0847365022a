package models

import "time"

// Subscriber is a newsletter signup, stored in the users table.
type Subscriber struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
