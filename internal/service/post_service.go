package service

import (
	"context"

	"quill/internal/cache"
	"quill/internal/models"
	"quill/internal/repository"
)

// PostService owns post lifecycle rules: creation, owner-only mutation, the
// one-way publish transition, and likes.
type PostService struct {
	posts repository.PostRepository
	users repository.UserRepository
}

// CreatePostInput carries the fields for a new post. AuthorID comes from the
// verified token, never from the request body.
type CreatePostInput struct {
	AuthorID uint
	Title    string
	Content  string
	Image    string
}

// UpdatePostInput carries a content mutation. ActorID is the identity derived
// from the verified token.
type UpdatePostInput struct {
	ActorID uint
	PostID  uint
	Title   string
	Content string
	Image   string
}

// NewPostService returns a PostService backed by the given repositories.
func NewPostService(posts repository.PostRepository, users repository.UserRepository) *PostService {
	return &PostService{posts: posts, users: users}
}

// publishedFirstPageLimit is the only page size served through the cache; the
// listing key is shared, so caching other sizes would serve truncated pages.
const publishedFirstPageLimit = 20

// ListPublished returns published posts with their authors, newest first.
// The default-size first page is served through the cache.
func (s *PostService) ListPublished(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post

	if offset == 0 && limit == publishedFirstPageLimit {
		err := cache.Aside(ctx, cache.PublishedListKey, &posts, cache.PublishedListTTL, func() error {
			var fetchErr error
			posts, fetchErr = s.posts.ListPublished(ctx, limit, offset)
			return fetchErr
		})
		return posts, err
	}

	return s.posts.ListPublished(ctx, limit, offset)
}

// Get returns a post with its comments and liking users, served through the
// cache. Mutations invalidate the key at the repository layer.
func (s *PostService) Get(ctx context.Context, id uint) (*models.Post, error) {
	var post *models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		var fetchErr error
		post, fetchErr = s.posts.GetByIDWithRelations(ctx, id)
		return fetchErr
	})
	return post, err
}

// ListByAuthor returns an author's posts, newest first. The author must
// exist; an unknown id is NOT_FOUND rather than an empty listing.
func (s *PostService) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, error) {
	if _, err := s.users.GetByID(ctx, authorID); err != nil {
		return nil, err
	}
	return s.posts.GetByAuthorID(ctx, authorID, limit, offset)
}

// Create persists a new unpublished post for the acting user.
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Title == "" || in.Content == "" {
		return nil, models.NewValidationError("Title and content are required")
	}

	post := &models.Post{
		Title:    in.Title,
		Content:  in.Content,
		Image:    in.Image,
		AuthorID: in.AuthorID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, post.ID)
}

// Update mutates a post's content fields. Only the post's author may update
// it; Published and AuthorID are never touched here.
func (s *PostService) Update(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != in.ActorID {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}

	if in.Title != "" {
		post.Title = in.Title
	}
	if in.Content != "" {
		post.Content = in.Content
	}
	if in.Image != "" {
		post.Image = in.Image
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, post.ID)
}

// Publish flips a post to published. Publishing an already published post is
// a successful no-op; there is no way back to unpublished.
func (s *PostService) Publish(ctx context.Context, actorID, postID uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actorID {
		return nil, models.NewForbiddenError("You can only publish your own posts")
	}
	if post.Published {
		return post, nil
	}

	if err := s.posts.SetPublished(ctx, postID); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, postID)
}

// Delete removes a post and returns the deleted record.
func (s *PostService) Delete(ctx context.Context, actorID, postID uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actorID {
		return nil, models.NewForbiddenError("You can only delete your own posts")
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return nil, err
	}
	return post, nil
}

// Like records the acting user's like. Liking twice is a no-op.
func (s *PostService) Like(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	if err := s.posts.Like(ctx, userID, postID); err != nil {
		return nil, err
	}
	return s.posts.GetByIDWithRelations(ctx, postID)
}

// Unlike removes the acting user's like if present.
func (s *PostService) Unlike(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	if err := s.posts.Unlike(ctx, userID, postID); err != nil {
		return nil, err
	}
	return s.posts.GetByIDWithRelations(ctx, postID)
}
