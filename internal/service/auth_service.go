// Package service implements the application's business rules on top of the
// repository layer.
package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"quill/internal/models"
	"quill/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// tokenTTL is the fixed validity window for every issued token.
	tokenTTL = 12 * time.Hour

	// bcryptCost is the fixed hashing work factor.
	bcryptCost = 5

	tokenIssuer   = "quill-api"
	tokenAudience = "quill-client"
)

// AuthService turns raw credentials or a bearer token into a verified
// identity and a fresh token.
type AuthService struct {
	users  repository.UserRepository
	secret []byte
}

// NewAuthService returns an AuthService signing tokens with the given secret.
func NewAuthService(users repository.UserRepository, secret string) *AuthService {
	return &AuthService{users: users, secret: []byte(secret)}
}

// Register creates a new user and issues a token for it. The email must not
// already be taken; the unique index on users.email backstops concurrent
// registrations racing past this check.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (string, *models.User, error) {
	if email == "" || password == "" || name == "" {
		return "", nil, models.NewValidationError("Email, password, and name are required")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if existing != nil {
		return "", nil, models.NewConflictError("User already exists")
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:    email,
		Password: string(digest),
		Name:     name,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return "", nil, models.NewInternalError(err)
	}
	return token, user, nil
}

// Login verifies credentials and issues a fresh token. It performs no writes.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	if email == "" || password == "" {
		return "", nil, models.NewValidationError("Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, models.NewNotFoundError("User", email)
	}

	// A malformed stored digest also lands here: verification reports
	// failure instead of propagating the error.
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, models.NewUnauthorizedError("Invalid credentials")
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return "", nil, models.NewInternalError(err)
	}
	return token, user, nil
}

// Reauthenticate verifies a token, loads the user's profile with their
// authored and liked posts, and issues a replacement token. The old token is
// not invalidated; it simply runs out its own expiry.
func (s *AuthService) Reauthenticate(ctx context.Context, token string) (string, *models.User, error) {
	userID, err := s.VerifyToken(token)
	if err != nil {
		return "", nil, err
	}

	user, err := s.users.GetByIDWithRelations(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	user.Password = ""

	newToken, err := s.IssueToken(user.ID)
	if err != nil {
		return "", nil, models.NewInternalError(err)
	}
	return newToken, user, nil
}

// IssueToken signs a 12-hour token for the given user id.
func (s *AuthService) IssueToken(userID uint) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": tokenIssuer,
		"aud": tokenAudience,
		"exp": now.Add(tokenTTL).Unix(),
		"iat": now.Unix(),
		"jti": uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyToken validates signature, expiry, issuer, and audience, and returns
// the user id encoded in the subject claim.
func (s *AuthService) VerifyToken(tokenString string) (uint, error) {
	if tokenString == "" {
		return 0, models.NewUnauthorizedError("Token required")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, models.NewUnauthorizedError("Invalid token claims")
	}

	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != tokenIssuer {
		return 0, models.NewUnauthorizedError("Invalid token issuer")
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != tokenAudience {
		return 0, models.NewUnauthorizedError("Invalid token audience")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, models.NewUnauthorizedError("Invalid subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, models.NewUnauthorizedError("Invalid user ID in token")
	}

	return uint(userID), nil
}
