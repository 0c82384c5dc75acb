package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/anonto42/aora/backend/internal/docstore"
	"github.com/anonto42/aora/backend/internal/handlers"
	"github.com/anonto42/aora/backend/internal/metrics"
	"github.com/anonto42/aora/backend/internal/repositories"
	"github.com/anonto42/aora/backend/internal/storage"
)

// Deps are the backends the routes are built on
type Deps struct {
	Backends map[string]string
	Store    docstore.Store
	Gateway  storage.Gateway
	Auth     echo.MiddlewareFunc
	Logger   *zap.Logger
	Registry *prometheus.Registry
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, d Deps) {
	var m *metrics.Metrics

	// Health check and metrics are always accessible
	e.GET("/health", handlers.NewHealthHandler(d.Store, d.Backends).HealthCheck)
	if d.Registry != nil {
		m = metrics.New(d.Registry)
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	// --- Initialize Repositories ---
	userRepo := repositories.NewUserRepository(d.Store, d.Logger, m)
	postRepo := repositories.NewPostRepository(d.Store, d.Gateway, d.Logger, m)
	bookmarkRepo := repositories.NewBookmarkRepository(d.Store, postRepo, d.Logger, m)

	// --- Protected routes ---
	api := e.Group("/api/v1")
	api.Use(d.Auth)

	handlers.NewUserHandler(userRepo).RegisterProfileRoutes(api)
	handlers.NewPostHandler(postRepo, userRepo).RegisterPostRoutes(api)
	handlers.NewBookmarkHandler(bookmarkRepo, postRepo).RegisterBookmarkRoutes(api)

	d.Logger.Info("all routes configured")
}
