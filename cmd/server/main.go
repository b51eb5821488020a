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

	"github.com/anonto42/dreamscape/backend/internal/repositories"
	"github.com/anonto42/dreamscape/backend/internal/router"
	"github.com/anonto42/dreamscape/backend/pkg/config"
	"github.com/anonto42/dreamscape/backend/pkg/firebase"
	"github.com/anonto42/dreamscape/backend/pkg/gemini"
	"github.com/anonto42/dreamscape/backend/pkg/logger"
	"github.com/anonto42/dreamscape/backend/pkg/metrics"
	"github.com/anonto42/dreamscape/backend/pkg/storage"
	"github.com/anonto42/dreamscape/backend/pkg/token"
	"github.com/anonto42/dreamscape/backend/validators"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zlog, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := router.Deps{
		Tokens:     token.NewManager(cfg.JWTSecret, cfg.TokenTTL),
		BcryptCost: cfg.BcryptCost,
		Log:        zlog,
	}

	// Initialize repositories
	switch cfg.DBDriver {
	case config.DriverMemory:
		store := repositories.NewMemoryStore()
		deps.Users, deps.Posts, deps.Comments, deps.Collections = store.Users(), store.Posts(), store.Comments(), store.Collections()
		zlog.Warn("Using in-memory repositories; data is lost on restart")
	default:
		db, err := config.InitDB(cfg, zlog)
		if err != nil {
			zlog.Fatal("Failed to initialize database", zap.Error(err))
		}
		defer db.CloseDB()

		indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err = repositories.EnsureIndexes(indexCtx, db.Database)
		cancel()
		if err != nil {
			zlog.Fatal("Failed to create indexes", zap.Error(err))
		}

		deps.Users = repositories.NewMongoUserRepository(db.Database)
		deps.Posts = repositories.NewMongoPostRepository(db.Database)
		deps.Comments = repositories.NewMongoCommentRepository(db.Database)
		deps.Collections = repositories.NewMongoCollectionRepository(db.Database)
	}

	// Initialize image storage
	switch cfg.StorageDriver {
	case config.StorageFirebase:
		app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseStorageBucket)
		if err != nil {
			zlog.Fatal("Failed to initialize Firebase", zap.Error(err))
		}
		deps.Images = storage.NewImageStore(storage.NewFirebaseBackend(app.Bucket, app.BucketName))
	default:
		disk := storage.NewDiskBackend(cfg.UploadDir, cfg.PublicBaseURL)
		deps.Images = storage.NewImageStore(disk)
		deps.UploadDir = disk.Dir()
	}

	model, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiTextModel, cfg.GeminiImageModel)
	if err != nil {
		// The relay endpoints fail per request instead of blocking startup.
		zlog.Error("Failed to initialize Gemini client", zap.Error(err))
		deps.Model = unavailableModel{err: err}
	} else {
		deps.Model = model
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	config.SetupMiddleware(e, zlog)
	router.SetupRoutes(e, deps)

	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zlog.Info("Metrics server listening", zap.String("port", cfg.MetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("Metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		zlog.Info("Server listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Server shutdown failed", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Metrics server shutdown failed", zap.Error(err))
	}
}

type unavailableModel struct{ err error }

func (m unavailableModel) GenerateImage(context.Context, string) (string, error) {
	return "", m.err
}

func (m unavailableModel) Complete(context.Context, string, string) (string, error) {
	return "", m.err
}
