package main

import (
	"context"
	"ctchen222/task-manager/internal/api/controller"
	"ctchen222/task-manager/internal/api/middleware"
	"ctchen222/task-manager/internal/api/repository"
	"ctchen222/task-manager/internal/api/service"
	"ctchen222/task-manager/internal/config"
	"ctchen222/task-manager/internal/db"
	"ctchen222/task-manager/internal/hub"
	"ctchen222/task-manager/internal/logger"
	"ctchen222/task-manager/internal/server"
	"ctchen222/task-manager/internal/telemetry"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize telemetry before the logger so the otel bridge has a provider
	shutdown, err := telemetry.InitOtel(ctx, telemetry.Options{
		Endpoint:       cfg.OtelEndpoint,
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
	})
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	logger.Init(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
	slog.Info("Server exiting")
}

func run(ctx context.Context, cfg *config.Config) error {
	// Initialize the database
	DB, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer DB.Close()

	if err := db.Migrate(ctx, DB, cfg.DBDriver); err != nil {
		return err
	}

	// Redis is optional: it fans task events out across instances and backs
	// the login rate limiter.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = db.NewRedisClient(ctx, db.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
	}

	// Create repositories
	userRepo := repository.NewUserRepository(DB)
	taskRepo := repository.NewTaskRepository(DB)

	// Create hub
	h := hub.NewHub(rdb)
	go h.Run(ctx)

	// Create services
	var tokens service.TokenIssuer
	if cfg.TokensEnabled() {
		tokens = service.NewJWTIssuer(cfg.JWTSecret, cfg.TokenTTL)
	}
	authService := service.NewAuthService(userRepo, tokens)
	taskService := service.NewTaskService(taskRepo, h)

	identity := middleware.IdentityOptions{
		TrustUserHeader: cfg.TrustUserHeader,
		Users:           userRepo,
	}
	if tokens != nil {
		identity.Tokens = tokens
	}

	// Create the Gin-based server
	srv := server.NewServer(h, rdb, server.Controllers{
		Users:  controller.NewUserController(authService),
		Tasks:  controller.NewTaskController(taskService),
		Health: controller.NewHealthController(DB, rdb, cfg.ServiceVersion),
	}, server.Options{
		MaxBodyBytes:       cfg.MaxBodyBytes,
		AuthRateLimit:      cfg.AuthRateLimit,
		AuthRateWindow:     cfg.AuthRateWindow,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		WebDir:             cfg.WebDir,
		Identity:           identity,
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "http server started", "http.addr", cfg.HTTPAddr, "db.driver", cfg.DBDriver)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	return httpServer.Shutdown(shutdownCtx)
}
