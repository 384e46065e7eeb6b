package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/postpad/postpad-go/internal/model"
)

// ErrPostNotFound covers both a missing post and a post owned by a
// different user; callers cannot tell the two apart.
var ErrPostNotFound = errors.New("post not found")

// PostRepository handles post persistence operations. Every query is
// scoped by owner.
type PostRepository struct {
	db *sql.DB
}

// NewPostRepository creates a new PostRepository.
func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create inserts a new post and sets the generated ID on the post struct.
func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	query := `INSERT INTO posts (user_id, title, content) VALUES (?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, post.UserID, post.Title, post.Content)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	post.ID = id
	return nil
}

// GetByID retrieves one of the owner's posts by ID.
func (r *PostRepository) GetByID(ctx context.Context, userID, postID int64) (*model.Post, error) {
	query := `SELECT id, user_id, title, content, created_at, updated_at
		FROM posts WHERE id = ? AND user_id = ?`

	post := &model.Post{}
	err := r.db.QueryRowContext(ctx, query, postID, userID).Scan(
		&post.ID, &post.UserID, &post.Title, &post.Content, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	return post, nil
}

// ListByUser retrieves all of a user's posts in insertion order.
func (r *PostRepository) ListByUser(ctx context.Context, userID int64) ([]model.Post, error) {
	query := `SELECT id, user_id, title, content, created_at, updated_at
		FROM posts WHERE user_id = ? ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}

	return posts, rows.Err()
}

// Update persists a post's title and content, scoped by owner.
func (r *PostRepository) Update(ctx context.Context, post *model.Post) error {
	query := `UPDATE posts SET title = ?, content = ? WHERE id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query, post.Title, post.Content, post.ID, post.UserID)
	if err != nil {
		return err
	}
	return requirePostRow(result)
}

// Delete removes one of the owner's posts.
func (r *PostRepository) Delete(ctx context.Context, userID, postID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ? AND user_id = ?`, postID, userID)
	if err != nil {
		return err
	}
	return requirePostRow(result)
}

func requirePostRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPostNotFound
	}
	return nil
}
