package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/anonto42/aora/backend/internal/middleware"
	"github.com/anonto42/aora/backend/internal/router"
	"github.com/anonto42/aora/backend/pkg/config"
	"github.com/anonto42/aora/backend/pkg/firebase"
	"github.com/anonto42/aora/backend/pkg/logger"
	"github.com/anonto42/aora/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if !cfg.Loaded {
		zl.Info("no .env file found, using process environment")
	}
	if err := cfg.Validate(); err != nil {
		zl.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Firebase only when a component needs it
	var app *firebase.App
	if cfg.NeedsFirebase() {
		app, err = firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseStorageBucket, zl)
		if err != nil {
			zl.Fatal("failed to initialize firebase", zap.Error(err))
		}
	}

	store, err := config.OpenDocumentStore(ctx, cfg, app, zl)
	if err != nil {
		zl.Fatal("failed to open document store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			zl.Error("error closing document store", zap.Error(err))
		}
	}()

	gateway, err := config.OpenStorageGateway(ctx, cfg, app, zl)
	if err != nil {
		zl.Fatal("failed to open storage gateway", zap.Error(err))
	}
	defer func() {
		if err := gateway.Close(); err != nil {
			zl.Error("error closing storage gateway", zap.Error(err))
		}
	}()

	var auth echo.MiddlewareFunc
	switch cfg.AuthMode {
	case "jwt":
		auth = middleware.JWTAuthMiddleware([]byte(cfg.JWTSecret))
	default:
		auth = middleware.FirebaseAuthMiddleware(app.AuthClient)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	config.SetupMiddleware(e, cfg, zl)
	router.SetupRoutes(e, router.Deps{
		Backends: map[string]string{"docstore": cfg.DocstoreBackend, "storage": cfg.StorageBackend, "auth": cfg.AuthMode},
		Store:    store,
		Gateway:  gateway,
		Auth:     auth,
		Logger:   zl,
		Registry: registry,
	})

	go func() {
		zl.Info("starting server", zap.String("port", cfg.Port), zap.String("docstore", cfg.DocstoreBackend), zap.String("storage", cfg.StorageBackend))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
	zl.Info("server exited")
}
