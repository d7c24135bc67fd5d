package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/models"
	"quill/internal/repository"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testJWTSecret = "test_secret"

// setupTestServer builds a Server against an in-memory sqlite database with
// routes registered on a fresh fiber app. The Prometheus middleware stays nil
// so repeated setups don't re-register collectors.
func setupTestServer(t *testing.T) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	s := &Server{
		config:         &config.Config{JWTSecret: testJWTSecret},
		db:             db,
		authService:    service.NewAuthService(userRepo, testJWTSecret),
		postService:    service.NewPostService(postRepo, userRepo),
		commentService: service.NewCommentService(commentRepo, postRepo),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return models.RespondWithError(c, models.StatusForError(err), err)
		},
	})
	s.SetupRoutes(app)

	return s, app, db
}

// createTestUser inserts a user with a bcrypt digest of the given password and
// returns the user and a valid token for it.
func createTestUser(t *testing.T, s *Server, db *gorm.DB, email, password string) (*models.User, string) {
	t.Helper()

	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{Email: email, Password: string(digest), Name: "Test User"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	token, err := s.authService.IssueToken(user.ID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return user, token
}

// doJSON performs a request with an optional JSON body and bearer token.
func doJSON(t *testing.T, app *fiber.App, method, target, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	return resp
}

// decodeBody unmarshals the response body into dest.
func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}
