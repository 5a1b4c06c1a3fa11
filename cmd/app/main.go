package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/ahnafi/gym-management-app-sub000/docs"
	"github.com/ahnafi/gym-management-app-sub000/internal/assignment"
	"github.com/ahnafi/gym-management-app-sub000/internal/checkout"
	"github.com/ahnafi/gym-management-app-sub000/internal/config"
	"github.com/ahnafi/gym-management-app-sub000/internal/db"
	"github.com/ahnafi/gym-management-app-sub000/internal/email"
	"github.com/ahnafi/gym-management-app-sub000/internal/gateway"
	"github.com/ahnafi/gym-management-app-sub000/internal/logger"
	"github.com/ahnafi/gym-management-app-sub000/internal/server"
	"github.com/ahnafi/gym-management-app-sub000/internal/storage"
	"github.com/ahnafi/gym-management-app-sub000/internal/store"
	"github.com/ahnafi/gym-management-app-sub000/internal/store/memstore"

	"github.com/redis/go-redis/v9"
)

const notificationDedupeTTL = 24 * time.Hour

// @title GymHub API
// @version 1.0
// @description Gym management API: memberships, class bookings, personal training and payments.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()
	logger.Info("Starting GymHub application")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var uow store.UnitOfWork
	switch cfg.StorageDriver {
	case config.DriverMemory:
		logger.Warn("Using in-memory storage, data is lost on restart")
		uow = memstore.New()
	default:
		logger.Info("Connecting to database...")
		database, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()
		logger.Info("Database connected")

		if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
			logger.Fatalf("Failed to run migrations: %v", err)
		}
		logger.Info("Migrations completed")
		uow = store.NewSQLStore(database)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	var dedupe checkout.Deduper = checkout.NewRedisDeduper(rdb, notificationDedupeTTL)
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unavailable, notification dedupe is process-local", "addr", cfg.RedisAddr, "error", err.Error())
		dedupe = checkout.NewMemoryDeduper(notificationDedupeTTL)
	}

	emailService := email.New(rdb, email.Config{
		From:     cfg.EmailFrom,
		FromName: cfg.EmailFromName,
		SMTPHost: cfg.SMTPHost,
		SMTPPort: cfg.SMTPPort,
		SMTPUser: cfg.SMTPUser,
		SMTPPass: cfg.SMTPPass,
	}, cfg.Location)
	defer emailService.Close()
	go emailService.Start(ctx)
	logger.Info("Email service initialized")

	var files storage.FileStorage = storage.Disabled{}
	if cfg.S3.Enabled() {
		s3Storage, err := storage.NewS3Storage(ctx, cfg.S3)
		if err != nil {
			logger.Fatalf("Failed to initialize object storage: %v", err)
		}
		files = s3Storage
	}

	engine := assignment.NewEngine(uow, cfg.RegistrationPackageCode, cfg.Location, cfg.CancellationWindow)
	engine.SetNotifier(emailService)

	payments := checkout.NewService(uow, engine, gateway.NewClient(cfg.Gateway), dedupe, cfg.Gateway.ServerKey)
	payments.SetNotifier(emailService)

	srv := server.New(cfg, server.Deps{
		Store:    uow,
		Engine:   engine,
		Checkout: payments,
		Storage:  files,
	})

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
