package server

import (
	"quill/internal/middleware"
	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	token, _, err := s.authService.Register(c.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		middleware.AuthAttempts.WithLabelValues("register", "failure").Inc()
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	middleware.AuthAttempts.WithLabelValues("register", "success").Inc()
	return c.JSON(fiber.Map{"token": token})
}

// Login handles POST /auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	token, _, err := s.authService.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		middleware.AuthAttempts.WithLabelValues("login", "failure").Inc()
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	middleware.AuthAttempts.WithLabelValues("login", "success").Inc()
	return c.JSON(fiber.Map{"token": token})
}

// Reauthenticate handles GET /auth/:token. It exchanges a still-valid token
// for a fresh one plus the user's profile with their posts and liked posts.
func (s *Server) Reauthenticate(c *fiber.Ctx) error {
	token := c.Params("token")

	newToken, user, err := s.authService.Reauthenticate(c.Context(), token)
	if err != nil {
		middleware.AuthAttempts.WithLabelValues("reauth", "failure").Inc()
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	middleware.AuthAttempts.WithLabelValues("reauth", "success").Inc()
	return c.JSON(fiber.Map{
		"newToken": newToken,
		"userData": user,
	})
}
