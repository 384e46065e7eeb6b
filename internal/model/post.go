package model

import "time"

// Post represents a post row in the database. Every post belongs to
// exactly one user.
type Post struct {
	ID        int64
	UserID    int64
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreatePostRequest represents a post creation request.
type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdatePostRequest represents a partial post update. Empty fields keep
// their stored values.
type UpdatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PostResponse represents a post in API responses.
type PostResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
