package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"shopapi/docs"
	"shopapi/internal/auth"
	"shopapi/internal/cache"
	"shopapi/internal/config"
	"shopapi/internal/db"
	"shopapi/internal/handler"
	"shopapi/internal/logging"
	"shopapi/internal/metrics"
	"shopapi/internal/model"
	"shopapi/internal/patch"
	"shopapi/internal/repository"
	"shopapi/internal/router"
	"shopapi/internal/service"
)

const shutdownTimeout = 10 * time.Second

// serveCmd starts the HTTP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return err
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		return err
	}

	// Drop tables if RESET_DB or --reset-db is set
	if resetDB || cfg.ResetDB {
		log.Warn("reset requested, dropping all tables")
		db.Reset(gormDB, log)
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		log.Warn("redis unavailable, serving without cache", "addr", cfg.RedisAddr, "error", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	productRepo, err := repository.NewCollection[model.Product](gormDB)
	if err != nil {
		return fmt.Errorf("products collection: %w", err)
	}
	todoRepo, err := repository.NewCollection[model.Todo](gormDB)
	if err != nil {
		return fmt.Errorf("todos collection: %w", err)
	}

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTTTL)
	hasher := auth.NewBcryptHasher(auth.DefaultCost)

	// Initialize services
	applier := patch.NewApplier()
	authService := service.NewAuthService(userRepo, hasher, jwtService, log)
	userService := service.NewUserService(userRepo, log)
	productService := service.NewItemService[model.Product]("product", productRepo, applier, cacheClient, cfg.CacheTTL)
	todoService := service.NewItemService[model.Todo]("todo", todoRepo, applier, cacheClient, cfg.CacheTTL)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, log, auth.Middleware(jwtService, log), router.Handlers{
		Auth:     handler.NewAuthHandler(authService, log),
		Users:    handler.NewUserHandler(userService, log),
		Products: handler.NewProductHandler(productService, log),
		Todos:    handler.NewTodoHandler(todoService, log),
		Metrics:  metrics.New(),
	})

	docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	log.Info("swagger documentation available", "url", swaggerURL(cfg))

	addr := ":" + cfg.ServerPort
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server start: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/api-docs/index.html"
}
