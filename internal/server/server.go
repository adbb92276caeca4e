// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	_ "murmur/docs" // swagger docs
	"murmur/internal/bootstrap"
	"murmur/internal/cache"
	"murmur/internal/config"
	"murmur/internal/featureflags"
	"murmur/internal/middleware"
	"murmur/internal/models"
	"murmur/internal/notifications"
	"murmur/internal/repository"
	"murmur/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const bodyLimit = 10 * 1024 * 1024

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	followRepo     repository.FollowRepository
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	featureFlags   *featureflags.Manager
	rateLimiter    *middleware.Limiter
	authService    *service.AuthService
	userService    *service.UserService
	followService  *service.FollowService
	postService    *service.PostService
	commentService *service.CommentService
	uploadService  *service.UploadService
}

// NewServer creates a new server instance, connecting to the database and
// Redis described by cfg.
func NewServer(cfg *config.Config) (*Server, error) {
	db, rdb, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, rdb)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; the server then runs without cache, token
// revocation or cross-instance notifications.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("config and database are required")
	}

	cache.SetClient(redisClient)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics(bootstrap.ServiceName),
		userRepo:       repository.NewUserRepository(db),
		postRepo:       repository.NewPostRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		followRepo:     repository.NewFollowRepository(db),
		notifier:       notifications.NewNotifier(redisClient),
		hub:            notifications.NewHub(),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		rateLimiter:    middleware.NewLimiter(redisClient, cfg.Env),
	}

	s.authService = service.NewAuthService(s.userRepo, redisClient, cfg)
	s.userService = service.NewUserService(s.userRepo, s.followRepo, s.postRepo)
	s.followService = service.NewFollowService(s.followRepo)
	s.postService = service.NewPostService(s.postRepo)
	s.commentService = service.NewCommentService(s.commentRepo)
	s.uploadService = service.NewUploadService(cfg, s.featureFlags)

	if err := s.uploadService.EnsureDir(); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return s, nil
}

// NewApp builds the Fiber application with middleware and routes.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Murmur API",
		BodyLimit: bodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err.Error())
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	if s.config.OTelEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Context Middleware to propagate Request ID and Trace ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers; uploads are embedded cross-origin by clients.
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: s.config.AllowedOrigins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Static("/uploads", s.uploadService.Dir(), fiber.Static{
		MaxAge: 3600,
	})

	api := app.Group("/api")
	api.Get("/", s.ReadinessCheck)
	api.Get("/swagger/*", swagger.HandlerDefault)
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Murmur Metrics Dashboard",
	}))

	// Auth is per route: handlers passed to Group run for every later /api path.
	authRequired := s.AuthRequired()

	auth := api.Group("/auth")
	auth.Post("/register", s.rateLimiter.Handler(middleware.RegisterLimit), s.Register)
	auth.Post("/login", s.rateLimiter.Handler(middleware.LoginLimit), s.Login)
	auth.Post("/logout", authRequired, s.Logout)

	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Post("/", authRequired, s.rateLimiter.Handler(middleware.CreatePostLimit), s.CreatePost)
	// Specific /:id/:resource routes before generic /:id
	posts.Get("/:id/comments", s.GetComments)
	posts.Post("/:id/comments", authRequired, s.rateLimiter.Handler(middleware.CommentLimit), s.CreateComment)
	posts.Post("/:id/like", authRequired, s.LikePost)
	posts.Get("/:id", s.GetPost)
	posts.Delete("/:id", authRequired, s.DeletePost)

	users := api.Group("/users")
	users.Get("/me", authRequired, s.GetMe)
	users.Get("/search/:query", s.rateLimiter.Handler(middleware.SearchLimit), s.SearchUsers)
	users.Put("/profile", authRequired, s.UpdateProfile)
	users.Post("/:id/follow", authRequired, s.rateLimiter.Handler(middleware.FollowLimit), s.FollowUser)
	users.Get("/:id", s.GetUserProfile)

	api.Post("/upload", authRequired, s.rateLimiter.Handler(middleware.UploadLimit), s.UploadImage)
	api.Get("/feature-flags", authRequired, s.GetFeatureFlags)

	api.Get("/ws", s.RequireUpgrade, authRequired, s.WebsocketHandler())
}

// StartRealtime wires the hub to Redis pub/sub until ctx is cancelled.
// Without Redis events are delivered to local connections only.
func (s *Server) StartRealtime(ctx context.Context) error {
	if !s.notifier.Enabled() {
		return nil
	}
	return s.hub.StartWiring(ctx, s.notifier)
}

// Start builds the app and listens on the configured port until Shutdown.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()

	if err := s.StartRealtime(ctx); err != nil {
		middleware.Logger.Warn("realtime wiring failed, events stay local", "error", err.Error())
	}

	middleware.Logger.Info("server starting", "port", s.config.Port, "env", s.config.Env)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err.Error())
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down notification hub", "error", err.Error())
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr.Error())
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr.Error())
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
