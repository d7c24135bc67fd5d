package server

import (
	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 50)

	comments, err := s.commentService.ListForPost(c.Context(), postID, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(comments)
}

// CreateComment handles POST /posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.Create(c.Context(), service.CreateCommentInput{
		UserID:  actorID(c),
		PostID:  postID,
		Content: req.Content,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}
