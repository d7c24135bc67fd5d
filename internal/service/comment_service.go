package service

import (
	"context"

	"quill/internal/models"
	"quill/internal/repository"
)

// CommentService owns comment creation and listing for a post.
type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
}

// CreateCommentInput carries a new comment. UserID is the identity derived
// from the verified token.
type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

// NewCommentService returns a CommentService backed by the given repositories.
func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository) *CommentService {
	return &CommentService{comments: comments, posts: posts}
}

// ListForPost returns a post's comments, oldest first.
func (s *CommentService) ListForPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.comments.ListForPost(ctx, postID, limit, offset)
}

// Create attaches a comment to an existing post.
func (s *CommentService) Create(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if _, err := s.posts.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content: in.Content,
		UserID:  in.UserID,
		PostID:  in.PostID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}
