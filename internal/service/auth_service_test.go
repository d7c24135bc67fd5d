package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"quill/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn              func(context.Context, uint) (*models.User, error)
	getByIDWithRelationsFn func(context.Context, uint) (*models.User, error)
	getByEmailFn           func(context.Context, string) (*models.User, error)
	createFn               func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByIDWithRelations(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDWithRelationsFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:              func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByIDWithRelationsFn: func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn:           func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:               func(_ context.Context, _ *models.User) error { return nil },
	}
}

// assertAppErrorCode asserts that err is an AppError with the given code.
func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

const testSecret = "test-secret-used-only-in-unit-tests"

func TestAuthService_Register_Validation(t *testing.T) {
	t.Parallel()

	svc := NewAuthService(noopUserRepo(), testSecret)
	ctx := context.Background()

	tests := []struct {
		name                  string
		email, password, user string
	}{
		{"missing email", "", "pw", "Alice"},
		{"missing password", "a@example.com", "", "Alice"},
		{"missing name", "a@example.com", "pw", ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := svc.Register(ctx, tc.email, tc.password, tc.user)
			assertAppErrorCode(t, err, models.CodeValidation)
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		return &models.User{ID: 7, Email: email}, nil
	}
	svc := NewAuthService(repo, testSecret)

	_, _, err := svc.Register(context.Background(), "taken@example.com", "pw", "Bob")
	assertAppErrorCode(t, err, models.CodeConflict)
}

func TestAuthService_Register_HashesPasswordAndIssuesToken(t *testing.T) {
	t.Parallel()

	var stored *models.User
	repo := noopUserRepo()
	repo.createFn = func(_ context.Context, user *models.User) error {
		user.ID = 42
		stored = user
		return nil
	}
	svc := NewAuthService(repo, testSecret)

	token, user, err := svc.Register(context.Background(), "new@example.com", "hunter2", "Carol")
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.NotEqual(t, "hunter2", stored.Password, "password must not be stored in plaintext")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("hunter2")))

	id, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	digest, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	known := &models.User{ID: 9, Email: "known@example.com", Password: string(digest)}

	newSvc := func() *AuthService {
		repo := noopUserRepo()
		repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
			if email == known.Email {
				return known, nil
			}
			return nil, nil
		}
		return NewAuthService(repo, testSecret)
	}

	t.Run("unknown email returns not found", func(t *testing.T) {
		t.Parallel()
		_, _, err := newSvc().Login(context.Background(), "missing@example.com", "whatever")
		assertAppErrorCode(t, err, models.CodeNotFound)
	})

	t.Run("wrong password returns unauthorized", func(t *testing.T) {
		t.Parallel()
		_, _, err := newSvc().Login(context.Background(), known.Email, "wrong")
		assertAppErrorCode(t, err, models.CodeUnauthorized)
	})

	t.Run("missing credentials return validation error", func(t *testing.T) {
		t.Parallel()
		_, _, err := newSvc().Login(context.Background(), "", "")
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("valid credentials issue a verifiable token", func(t *testing.T) {
		t.Parallel()
		token, user, err := newSvc().Login(context.Background(), known.Email, "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, known.ID, user.ID)

		id, err := newSvc().VerifyToken(token)
		require.NoError(t, err)
		assert.Equal(t, known.ID, id)
	})
}

func TestAuthService_Reauthenticate(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	repo.getByIDWithRelationsFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Email: "r@example.com", Password: "some-digest"}, nil
	}
	svc := NewAuthService(repo, testSecret)

	original, err := svc.IssueToken(5)
	require.NoError(t, err)

	fresh, user, err := svc.Reauthenticate(context.Background(), original)
	require.NoError(t, err)
	assert.Equal(t, uint(5), user.ID)
	assert.Empty(t, user.Password, "password digest must be stripped from the profile")

	// The replacement token identifies the same user.
	id, err := svc.VerifyToken(fresh)
	require.NoError(t, err)
	assert.Equal(t, uint(5), id)
}

func TestAuthService_Reauthenticate_DeletedUser(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	repo.getByIDWithRelationsFn = func(_ context.Context, id uint) (*models.User, error) {
		return nil, models.NewNotFoundError("User", id)
	}
	svc := NewAuthService(repo, testSecret)

	token, err := svc.IssueToken(5)
	require.NoError(t, err)

	_, _, err = svc.Reauthenticate(context.Background(), token)
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func TestAuthService_VerifyToken_Rejections(t *testing.T) {
	t.Parallel()

	svc := NewAuthService(noopUserRepo(), testSecret)

	t.Run("empty token", func(t *testing.T) {
		t.Parallel()
		_, err := svc.VerifyToken("")
		assertAppErrorCode(t, err, models.CodeUnauthorized)
	})

	t.Run("garbage token", func(t *testing.T) {
		t.Parallel()
		_, err := svc.VerifyToken("not.a.jwt")
		assertAppErrorCode(t, err, models.CodeUnauthorized)
	})

	t.Run("token signed with a different secret", func(t *testing.T) {
		t.Parallel()
		other := NewAuthService(noopUserRepo(), "a-completely-different-secret")
		token, err := other.IssueToken(1)
		require.NoError(t, err)

		_, err = svc.VerifyToken(token)
		assertAppErrorCode(t, err, models.CodeUnauthorized)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()
		now := time.Now()
		claims := jwt.MapClaims{
			"sub": "1",
			"iss": tokenIssuer,
			"aud": tokenAudience,
			"exp": now.Add(-time.Hour).Unix(),
			"iat": now.Add(-13 * time.Hour).Unix(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = svc.VerifyToken(token)
		assertAppErrorCode(t, err, models.CodeUnauthorized)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		t.Parallel()
		now := time.Now()
		claims := jwt.MapClaims{
			"sub": "1",
			"iss": "somebody-else",
			"aud": tokenAudience,
			"exp": now.Add(time.Hour).Unix(),
			"iat": now.Unix(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = svc.VerifyToken(token)
		assertAppErrorCode(t, err, models.CodeUnauthorized)
	})

	t.Run("unsigned token", func(t *testing.T) {
		t.Parallel()
		claims := jwt.MapClaims{
			"sub": "1",
			"iss": tokenIssuer,
			"aud": tokenAudience,
			"exp": time.Now().Add(time.Hour).Unix(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.VerifyToken(token)
		assertAppErrorCode(t, err, models.CodeUnauthorized)
	})
}

func TestAuthService_IssueToken_Claims(t *testing.T) {
	t.Parallel()

	svc := NewAuthService(noopUserRepo(), testSecret)
	tokenString, err := svc.IssueToken(123)
	require.NoError(t, err)

	token, err := jwt.Parse(tokenString, func(_ *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)

	assert.Equal(t, "123", claims["sub"])
	assert.Equal(t, tokenIssuer, claims["iss"])
	assert.Equal(t, tokenAudience, claims["aud"])
	assert.NotEmpty(t, claims["jti"])

	exp, ok := claims["exp"].(float64)
	require.True(t, ok)
	iat, ok := claims["iat"].(float64)
	require.True(t, ok)
	assert.InDelta(t, tokenTTL.Seconds(), exp-iat, 1, "expiry window should be the fixed TTL")
}
