package server

import (
	"context"
	"net/http"
	"testing"

	"quill/internal/config"
	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDWithRelations(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func TestRegister(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockUserRepository)

	s := &Server{
		config:      &config.Config{JWTSecret: testJWTSecret},
		authService: service.NewAuthService(mockRepo, testJWTSecret),
	}

	app.Post("/auth/register", s.Register)

	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func()
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]string{
				"email":    "test@example.com",
				"password": "Password123!",
				"name":     "Test User",
			},
			mockSetup: func() {
				mockRepo.On("GetByEmail", mock.Anything, "test@example.com").Return(nil, nil)
				mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Duplicate User",
			body: map[string]string{
				"email":    "exists@example.com",
				"password": "Password123!",
				"name":     "Test User",
			},
			mockSetup: func() {
				mockRepo.On("GetByEmail", mock.Anything, "exists@example.com").Return(&models.User{ID: 1}, nil)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "Missing Fields",
			body: map[string]string{
				"email": "incomplete@example.com",
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			resp := doJSON(t, app, http.MethodPost, "/auth/register", "", tt.body)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestRegister_ReturnsUsableToken(t *testing.T) {
	_, app, _ := setupTestServer(t)

	resp := doJSON(t, app, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    "fresh@example.com",
		"password": "hunter2",
		"name":     "Fresh",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body["token"])

	// The token must authenticate a protected route.
	resp = doJSON(t, app, http.MethodPost, "/posts/create", body["token"], map[string]string{
		"title":   "First",
		"content": "Hello",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	s, app, db := setupTestServer(t)
	createTestUser(t, s, db, "login@example.com", "correct-horse")

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
	}{
		{
			name:           "Success",
			body:           map[string]string{"email": "login@example.com", "password": "correct-horse"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Wrong Password",
			body:           map[string]string{"email": "login@example.com", "password": "wrong"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Unknown Email",
			body:           map[string]string{"email": "nobody@example.com", "password": "whatever"},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Missing Credentials",
			body:           map[string]string{},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, app, http.MethodPost, "/auth/login", "", tt.body)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var body map[string]string
				decodeBody(t, resp, &body)
				assert.NotEmpty(t, body["token"])
			}
		})
	}
}

func TestReauthenticate(t *testing.T) {
	s, app, db := setupTestServer(t)
	user, token := createTestUser(t, s, db, "reauth@example.com", "pw")

	t.Run("valid token gets a replacement and the profile", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/auth/"+token, "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			NewToken string      `json:"newToken"`
			UserData models.User `json:"userData"`
		}
		decodeBody(t, resp, &body)

		assert.NotEmpty(t, body.NewToken)
		assert.Equal(t, user.ID, body.UserData.ID)
		assert.Equal(t, user.Email, body.UserData.Email)

		// The replacement token identifies the same user.
		id, err := s.authService.VerifyToken(body.NewToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, id)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/auth/not.a.token", "", nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
