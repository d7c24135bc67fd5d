// Package server contains the HTTP handlers and routing for the application's
// API endpoints.
package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quill/internal/cache"
	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/repository"
	"quill/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	authService    *service.AuthService
	postService    *service.PostService
	commentService *service.CommentService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient()), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use this with an in-memory database.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("quill-api"),
		authService:    service.NewAuthService(userRepo, cfg.JWTSecret),
		postService:    service.NewPostService(postRepo, userRepo),
		commentService: service.NewCommentService(commentRepo, postRepo),
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Tracing before the context middleware so traceID lands in locals first
	app.Use(middleware.TracingMiddleware())

	// Context middleware to propagate request ID, trace ID, and user ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth routes
	auth := app.Group("/auth")
	auth.Post("/login", s.Login)
	auth.Post("/register", s.Register)
	auth.Get("/:token", s.Reauthenticate)

	// Post routes. Fixed segments are registered before the generic /:id
	// routes so "create" and friends never parse as an id.
	posts := app.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Post("/create", s.AuthRequired(), s.CreatePost)
	posts.Put("/publish/:id", s.AuthRequired(), s.PublishPost)
	posts.Post("/delete/:id", s.AuthRequired(), s.DeletePost)
	posts.Get("/:id/comments", s.GetComments)
	posts.Post("/:id/comments", s.AuthRequired(), s.CreateComment)
	posts.Post("/:id/like", s.AuthRequired(), s.LikePost)
	posts.Delete("/:id/like", s.AuthRequired(), s.UnlikePost)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", s.AuthRequired(), s.UpdatePost)

	// User routes
	app.Get("/users/:id/posts", s.GetUserPosts)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// The cache is optional; readiness only depends on the database.
	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns middleware that verifies the bearer token and stores
// the acting identity in locals. Every mutating route derives its actor from
// this value; identity fields in request bodies carry no authority.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid authorization header format"))
		}

		userID, err := s.authService.VerifyToken(parts[1])
		if err != nil {
			return models.RespondWithError(c, models.StatusForError(err), err)
		}

		c.Locals("userID", userID)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}
