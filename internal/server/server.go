// Package server contains the HTTP handlers for the blog API.
package server

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"myblog/internal/auth"
	"myblog/internal/cache"
	"myblog/internal/config"
	"myblog/internal/database"
	"myblog/internal/mail"
	"myblog/internal/middleware"
	"myblog/internal/models"
	"myblog/internal/repository"
	"myblog/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
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
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	blogRepo       repository.BlogRepository
	categoryRepo   repository.CategoryRepository
	tagRepo        repository.TagRepository
	commentRepo    repository.CommentRepository
	messageRepo    repository.MessageRepository
	aboutMeRepo    repository.AboutMeRepository
	welcomeRepo    repository.WelcomeRepository
	codeStore      *auth.CodeStore
	mailer         mail.Mailer
	commentService *service.CommentService
	messageService *service.MessageService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	return NewServerWithDeps(cfg, db, cache.Connect(cfg.RedisURL))
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use this with an in-memory database and a Redis double.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	prom := middleware.InitMetrics("myblog-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       repository.NewUserRepository(db),
		blogRepo:       repository.NewBlogRepository(db),
		categoryRepo:   repository.NewCategoryRepository(db),
		tagRepo:        repository.NewTagRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		messageRepo:    repository.NewMessageRepository(db),
		aboutMeRepo:    repository.NewAboutMeRepository(db),
		welcomeRepo:    repository.NewWelcomeRepository(db),
		codeStore:      auth.NewCodeStore(redisClient),
		mailer:         mail.NewMailer(cfg),
	}
	server.commentService = service.NewCommentService(server.commentRepo, server.blogRepo, server.isSuperuserByUserID)
	server.messageService = service.NewMessageService(server.messageRepo, server.isSuperuserByUserID)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.Envelope{
				Code:    fiber.StatusTooManyRequests,
				Message: "Too many requests, please try again later.",
			})
		},
	}))

	// Uploaded avatars and other media
	app.Static("/media", s.config.MediaRoot)
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health check
	api.Get("/", s.HealthCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth routes
	api.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	api.Post("/initcode", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "initcode"), s.InitCode)
	api.Post("/register", s.Register)
	api.Post("/agreeuser", s.AuthRequired(), s.SuperuserRequired(), s.AgreeUser)
	api.Post("/activeuser", s.ActiveUser)
	api.Post("/resetpassword", s.AuthRequired(), s.ResetPassword)

	// User routes
	api.Get("/users", s.AuthRequired(), s.SuperuserRequired(), s.GetUsers)
	api.Put("/users/:id", s.AuthRequired(), s.UpdateUser)
	api.Delete("/users/:id", s.AuthRequired(), s.DeleteUser)
	api.Post("/avatar/upload", s.AuthRequired(), s.UploadAvatar)

	// Blog routes. Specific /:id/:resource and static segments go before
	// the generic /:id route.
	api.Get("/blogs", s.GetBlogs)
	api.Get("/blogs/hot", s.GetHotBlogs)
	api.Get("/blogs/latest", s.GetLatestBlogs)
	api.Get("/blogs/:id/comments", s.GetComments)
	api.Post("/blogs/:id/like", s.LikeBlog)
	api.Post("/blogs/:id/publish", s.AuthRequired(), s.SuperuserRequired(), s.PublishBlog)
	api.Post("/blogs/:id/archive", s.AuthRequired(), s.SuperuserRequired(), s.ArchiveBlog)
	api.Get("/blogs/:id", s.GetBlog)
	api.Post("/blogs", s.AuthRequired(), s.SuperuserRequired(), s.CreateBlog)
	api.Put("/blogs/:id", s.AuthRequired(), s.SuperuserRequired(), s.UpdateBlog)
	api.Delete("/blogs/:id", s.AuthRequired(), s.SuperuserRequired(), s.DeleteBlog)

	// Category routes
	api.Get("/categories", s.GetCategories)
	api.Get("/categories/:id/blogs", s.GetCategoryBlogs)
	api.Get("/categories/:id", s.GetCategory)
	api.Post("/categories", s.AuthRequired(), s.SuperuserRequired(), s.CreateCategory)
	api.Put("/categories/:id", s.AuthRequired(), s.SuperuserRequired(), s.UpdateCategory)
	api.Delete("/categories/:id", s.AuthRequired(), s.SuperuserRequired(), s.DeleteCategory)

	// Tag routes
	api.Get("/tags", s.GetTags)
	api.Get("/tags/:id/blogs", s.GetTagBlogs)
	api.Post("/tags", s.AuthRequired(), s.SuperuserRequired(), s.CreateTag)
	api.Put("/tags/:id", s.AuthRequired(), s.SuperuserRequired(), s.UpdateTag)
	api.Delete("/tags/:id", s.AuthRequired(), s.SuperuserRequired(), s.DeleteTag)

	// Comment routes
	api.Post("/comments", s.AuthRequired(), s.CreateComment)
	api.Delete("/comments/:id", s.AuthRequired(), s.DeleteComment)

	// Guestbook routes
	api.Get("/messages", s.GetMessages)
	api.Post("/messages", s.AuthRequired(), s.CreateMessage)
	api.Delete("/messages/:id/replies/:replyId", s.AuthRequired(), s.DeleteReply)
	api.Post("/messages/:id/replies", s.AuthRequired(), s.CreateReply)
	api.Delete("/messages/:id", s.AuthRequired(), s.DeleteMessage)

	// About-me / welcome pages
	api.Get("/aboutme", s.GetAboutMe)
	api.Put("/aboutme", s.AuthRequired(), s.SuperuserRequired(), s.PutAboutMe)
	api.Get("/welcome", s.GetWelcome)
	api.Put("/welcome", s.AuthRequired(), s.SuperuserRequired(), s.PutWelcome)
}

// HealthCheck handles readiness probe requests
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// The app works without Redis; report it without failing readiness.
		redisStatus = "unavailable"
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

// AuthRequired returns middleware that authenticates the request via the
// Authorization Bearer token, loads the user and stores it in locals.
// Missing, malformed and expired tokens are all rejected with 403, as are
// tokens for missing or not yet activated accounts.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Authorization required"))
		}

		userID, err := auth.ParseToken(s.config.JWTSecret, tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Invalid or expired token"))
		}

		user, err := s.userRepo.GetByID(c.Context(), userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Invalid or expired token"))
		}
		if !user.IsActive {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Account is not active"))
		}

		c.Locals("userID", user.ID)
		c.Locals("user", user)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, user.ID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// SuperuserRequired returns middleware that rejects non-superusers with 403.
// Must be placed after AuthRequired so that the user is available in locals.
func (s *Server) SuperuserRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals("user").(*models.User)
		if !user.IsSuperuser {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Superuser access required"))
		}
		return c.Next()
	}
}

// optionalUser attempts to load the user from the Authorization header but
// never fails; anonymous requests fall through with nil.
func (s *Server) optionalUser(c *fiber.Ctx) *models.User {
	tokenString := bearerToken(c)
	if tokenString == "" {
		return nil
	}
	userID, err := auth.ParseToken(s.config.JWTSecret, tokenString)
	if err != nil {
		return nil
	}
	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil || !user.IsActive {
		return nil
	}
	return user
}

// callerIsSuperuser reports whether the request carries a valid token of an
// active superuser. Works on routes without auth middleware.
func (s *Server) callerIsSuperuser(c *fiber.Ctx) bool {
	user := s.optionalUser(c)
	return user != nil && user.IsSuperuser
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Blog API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
