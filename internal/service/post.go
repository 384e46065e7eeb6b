package service

import (
	"context"
	"errors"

	"github.com/postpad/postpad-go/internal/model"
	"github.com/postpad/postpad-go/internal/repository"
)

var (
	ErrTitleRequired   = errors.New("title is required")
	ErrContentRequired = errors.New("content is required")
	ErrPostNotFound    = errors.New("post not found")
)

// PostStore persists posts, always scoped by owner.
type PostStore interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, userID, postID int64) (*model.Post, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, userID, postID int64) error
}

// PostService handles post business logic.
type PostService struct {
	posts PostStore
}

// NewPostService creates a new PostService.
func NewPostService(posts PostStore) *PostService {
	return &PostService{posts: posts}
}

// Create creates a new post owned by the user.
func (s *PostService) Create(ctx context.Context, userID int64, req model.CreatePostRequest) (model.PostResponse, error) {
	if req.Title == "" {
		return model.PostResponse{}, ErrTitleRequired
	}
	if req.Content == "" {
		return model.PostResponse{}, ErrContentRequired
	}

	post := &model.Post{UserID: userID, Title: req.Title, Content: req.Content}
	if err := s.posts.Create(ctx, post); err != nil {
		return model.PostResponse{}, err
	}

	return toPostResponse(post), nil
}

// Get returns one of the user's posts.
func (s *PostService) Get(ctx context.Context, userID, postID int64) (model.PostResponse, error) {
	post, err := s.posts.GetByID(ctx, userID, postID)
	if err != nil {
		return model.PostResponse{}, mapPostErr(err)
	}
	return toPostResponse(post), nil
}

// List returns all of the user's posts in insertion order.
func (s *PostService) List(ctx context.Context, userID int64) ([]model.PostResponse, error) {
	posts, err := s.posts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]model.PostResponse, len(posts))
	for i := range posts {
		result[i] = toPostResponse(&posts[i])
	}
	return result, nil
}

// Update applies a partial update to one of the user's posts. Fields
// absent from the request keep their stored values.
func (s *PostService) Update(ctx context.Context, userID, postID int64, req model.UpdatePostRequest) (model.PostResponse, error) {
	post, err := s.posts.GetByID(ctx, userID, postID)
	if err != nil {
		return model.PostResponse{}, mapPostErr(err)
	}

	if req.Title != "" {
		post.Title = req.Title
	}
	if req.Content != "" {
		post.Content = req.Content
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return model.PostResponse{}, mapPostErr(err)
	}

	return toPostResponse(post), nil
}

// Delete removes one of the user's posts.
func (s *PostService) Delete(ctx context.Context, userID, postID int64) error {
	return mapPostErr(s.posts.Delete(ctx, userID, postID))
}

func toPostResponse(p *model.Post) model.PostResponse {
	return model.PostResponse{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func mapPostErr(err error) error {
	if errors.Is(err, repository.ErrPostNotFound) {
		return ErrPostNotFound
	}
	return err
}
