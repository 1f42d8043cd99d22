// Package server contains the HTTP handlers for the application's pages.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/repository"
	"quill/internal/session"
	"quill/internal/views"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// AdminUserID is the single account that unlocks the admin page.
const AdminUserID uint = 9

// storeErrorMessage is the generic user-facing notice for store failures.
const storeErrorMessage = "Error! Looks like there was a problem! Please try again."

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) so the
// ErrorHandler doesn't overwrite the response.
var errResponseWritten = errors.New("response already written")

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	app            *fiber.App
	sessions       *session.Manager
	sessionStorage fiber.Storage
	redis          redis.UniversalClient
	users          repository.UserRepository
	posts          repository.PostRepository
	prom           *fiberprometheus.FiberPrometheus
}

// New creates a server instance with all dependencies initialized from config.
func New(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}

	var storage fiber.Storage
	var redisConn redis.UniversalClient
	if cfg.RedisURL != "" {
		redisStorage := session.RedisStorage(cfg.RedisURL)
		storage = redisStorage
		redisConn = redisStorage.Conn()
	}

	ttl := time.Duration(cfg.SessionTTLHours) * time.Hour
	srv := NewWithDeps(cfg, db, session.NewManager(ttl, storage))
	srv.sessionStorage = storage
	srv.redis = redisConn
	srv.prom = fiberprometheus.New("quill")
	return srv, nil
}

// NewWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes the database and
// session store. Metrics registration is skipped so repeated construction in
// tests doesn't collide on the Prometheus default registry.
func NewWithDeps(cfg *config.Config, db *gorm.DB, sessions *session.Manager) *Server {
	return &Server{
		config:   cfg,
		db:       db,
		sessions: sessions,
		users:    repository.NewUserRepository(db),
		posts:    repository.NewPostRepository(db),
	}
}

// BuildApp assembles the Fiber application: views, middleware, and routes.
func (s *Server) BuildApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Quill",
		Views:        views.Engine(),
		ViewsLayout:  "layouts/main",
		ErrorHandler: s.errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(middleware.ContextMiddleware())
	if s.prom != nil {
		s.prom.RegisterAt(app, "/metrics")
		app.Use(s.prom.Middleware)
	}
	app.Use(middleware.StructuredLogger())

	s.registerRoutes(app)

	// Any route not matched above gets the rendered 404 page.
	app.Use(func(c *fiber.Ctx) error {
		return s.renderNotFound(c)
	})

	s.app = app
	return app
}

func (s *Server) registerRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	app.Get("/", s.Index)
	app.Get("/date", s.DateJSON)

	app.Get("/login", s.LoginPage)
	app.Post("/login", s.Login)
	app.Get("/logout", s.RequireAuth(), s.Logout)
	app.Post("/logout", s.RequireAuth(), s.Logout)

	app.Get("/dashboard", s.RequireAuth(), s.Dashboard)
	app.Post("/dashboard", s.RequireAuth(), s.UpdateDashboard)

	// /user/add must precede the /user/:name wildcard.
	app.Get("/user/add", s.AddUserPage)
	app.Post("/user/add", s.AddUser)
	app.Get("/user/:name", s.UserGreeting)

	app.Get("/delete/:id", s.RequireAuth(), s.DeleteUser)
	app.Post("/delete/:id", s.RequireAuth(), s.DeleteUser)
	app.Get("/update/:id", s.RequireAuth(), s.UpdateUserPage)
	app.Post("/update/:id", s.RequireAuth(), s.UpdateUser)

	app.Get("/name", s.NamePage)
	app.Post("/name", s.Name)
	app.Get("/test_pw", s.TestPwPage)
	app.Post("/test_pw", s.TestPw)

	app.Get("/add-post", s.RequireAuth(), s.AddPostPage)
	app.Post("/add-post", s.RequireAuth(), s.AddPost)
	app.Get("/posts", s.ListPosts)
	// Specific /posts/... routes must precede the /posts/:id wildcard.
	app.Get("/posts/delete/:id", s.RequireAuth(), s.DeletePost)
	app.Get("/posts/edit/:id", s.RequireAuth(), s.EditPostPage)
	app.Post("/posts/edit/:id", s.RequireAuth(), s.EditPost)
	app.Get("/posts/:id", s.ShowPost)
	app.Post("/search", s.Search)

	app.Get("/admin", s.RequireAuth(), s.Admin)
}

// RequireAuth redirects anonymous requests to the login page. Authenticated
// requests get the user id stored in Locals and the request context.
func (s *Server) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, ok := s.sessions.UserID(c)
		if !ok {
			_ = s.sessions.Flash(c, "Please log in to access this page.")
			return c.Redirect("/login", fiber.StatusFound)
		}

		c.Locals("userID", uid)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, uid)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// currentUserID returns the authenticated user id placed in Locals by RequireAuth.
func currentUserID(c *fiber.Ctx) uint {
	uid, _ := c.Locals("userID").(uint)
	return uid
}

// render renders a view with the layout, navbar state, and pending flashes.
func (s *Server) render(c *fiber.Ctx, name string, bind fiber.Map) error {
	if bind == nil {
		bind = fiber.Map{}
	}
	uid, ok := s.sessions.UserID(c)
	bind["LoggedIn"] = ok
	bind["IsAdmin"] = ok && uid == AdminUserID
	bind["Flashes"] = s.sessions.PopFlashes(c)
	return c.Render(name, bind)
}

func (s *Server) renderNotFound(c *fiber.Ctx) error {
	c.Status(fiber.StatusNotFound)
	return c.Render("errors/404", fiber.Map{})
}

// parseID extracts a route parameter as a positive uint. On failure it writes
// the 404 page and returns errResponseWritten; callers should then return nil.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = s.renderNotFound(c)
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// errorHandler maps unhandled errors to the rendered error pages.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && fiberErr.Code == fiber.StatusNotFound {
		return s.renderNotFound(c)
	}
	if models.HasCode(err, models.CodeNotFound) {
		return s.renderNotFound(c)
	}

	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error",
		slog.String("error", err.Error()))
	c.Status(fiber.StatusInternalServerError)
	return c.Render("errors/500", fiber.Map{})
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests.
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

	sessionStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			sessionStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" || sessionStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"sessions": sessionStatus,
		},
		"time": time.Now(),
	})
}

// Start builds the app and begins serving.
func (s *Server) Start() error {
	app := s.BuildApp()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server and closes its resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.sessionStorage != nil {
		if serr := s.sessionStorage.Close(); serr != nil {
			middleware.Logger.Error("error closing session storage", slog.String("error", serr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
