// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"circle/internal/config"
	"circle/internal/database"
	"circle/internal/mail"
	"circle/internal/media"
	"circle/internal/middleware"
	"circle/internal/repository"
	"circle/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	threadRepo     repository.ThreadRepository
	followRepo     repository.FollowRepository
	mailer         mail.Mailer
	mediaStore     media.Store
	authService    *service.AuthService
	threadService  *service.ThreadService
	userService    *service.UserService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	mediaStore, err := media.NewCloudinaryStore(cfg.CloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("media store init failed: %w", err)
	}

	mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom())

	return NewServerWithDeps(cfg, db, mediaStore, mailer)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes the DB and the
// external delegates.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, mediaStore media.Store, mailer mail.Mailer) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	threadRepo := repository.NewThreadRepository(db)
	followRepo := repository.NewFollowRepository(db)

	prom := middleware.InitMetrics("circle-api")

	server := &Server{
		config:         cfg,
		db:             db,
		promMiddleware: prom,
		userRepo:       userRepo,
		threadRepo:     threadRepo,
		followRepo:     followRepo,
		mailer:         mailer,
		mediaStore:     mediaStore,
	}
	server.authService = service.NewAuthService(userRepo, threadRepo, mailer, cfg.JWTSecret, cfg.ResetURLBase)
	server.threadService = service.NewThreadService(threadRepo, mediaStore)
	server.userService = service.NewUserService(userRepo, followRepo, mediaStore)

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
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	// Backwards-compatible legacy route: map /health to readiness
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/login", s.Login)
	auth.Post("/register", s.Register)
	auth.Post("/forgot-password", s.ForgotPassword)
	auth.Post("/reset-password", s.ResetPassword)
	auth.Get("/me", s.AuthRequired(), s.Me)

	// Thread routes. Listing is public; everything else requires auth.
	api.Get("/threads", s.GetThreads)

	threads := api.Group("/threads", s.AuthRequired())
	threads.Post("/", s.CreateThread)
	// Define specific /:threadId/:resource routes BEFORE generic /:id route
	threads.Post("/:threadId/like", s.ToggleLike)
	threads.Post("/:threadId/replies", s.CreateReply)
	threads.Get("/:threadId/replies", s.GetReplies)
	threads.Delete("/:threadId/replies/:replyId", s.DeleteReply)
	threads.Get("/:id", s.GetThread)

	// Singular aliases kept for client compatibility
	thread := api.Group("/thread", s.AuthRequired())
	thread.Put("/:id", s.UpdateThread)
	thread.Delete("/:id", s.DeleteThread)

	// User routes
	users := api.Group("/users", s.AuthRequired())
	users.Get("/", s.GetUsers)
	// Define specific /:userId/:resource routes BEFORE generic /:userId route
	users.Post("/:userId/follow", s.ToggleFollow)
	users.Get("/:userId/followers", s.GetFollowers)
	users.Get("/:userId/following", s.GetFollowing)
	users.Get("/:userId/suggest-users", s.SuggestUsers)
	users.Get("/:userId", s.GetUser)
	users.Put("/:userId", s.UpdateUser)
	users.Patch("/:userId", s.PatchUser)
	users.Delete("/:userId", s.DeleteUser)
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

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware. All failures answer
// with the same 401 body so callers cannot distinguish missing, malformed
// and expired credentials.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			return unauthorized(c)
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return unauthorized(c)
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return unauthorized(c)
		}

		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "circle-api" {
			return unauthorized(c)
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != "circle-client" {
			return unauthorized(c)
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return unauthorized(c)
		}
		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return unauthorized(c)
		}

		// Store user ID in context
		c.Locals("userID", uint(userID))
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": "Unauthorized",
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Circle API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Internal server error",
			})
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

	log.Println("Server shutdown complete")
	return nil
}
