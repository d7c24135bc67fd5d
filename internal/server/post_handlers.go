package server

import (
	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// postBody is the request shape shared by create and update. The authorId
// field is accepted for wire compatibility but carries no authority: the
// acting identity always comes from the verified token.
type postBody struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Image    string `json:"image,omitempty"`
	AuthorID uint   `json:"authorId,omitempty"`
}

// GetPosts handles GET /posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	posts, err := s.postService.ListPublished(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(posts)
}

// GetPost handles GET /posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.Get(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(post)
}

// GetUserPosts handles GET /users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	authorID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	posts, err := s.postService.ListByAuthor(c.Context(), authorID, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(posts)
}

// CreatePost handles POST /posts/create
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req postBody
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.Create(c.Context(), service.CreatePostInput{
		AuthorID: actorID(c),
		Title:    req.Title,
		Content:  req.Content,
		Image:    req.Image,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(post)
}

// UpdatePost handles PUT /posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req postBody
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.Update(c.Context(), service.UpdatePostInput{
		ActorID: actorID(c),
		PostID:  postID,
		Title:   req.Title,
		Content: req.Content,
		Image:   req.Image,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(post)
}

// PublishPost handles PUT /posts/publish/:id
func (s *Server) PublishPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.Publish(c.Context(), actorID(c), postID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(post)
}

// DeletePost handles POST /posts/delete/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.Delete(c.Context(), actorID(c), postID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(post)
}

// LikePost handles POST /posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.Like(c.Context(), actorID(c), postID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(post)
}

// UnlikePost handles DELETE /posts/:id/like
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.Unlike(c.Context(), actorID(c), postID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(post)
}
