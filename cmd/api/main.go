package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/RachanaRJadav/arecanut-ai/internal/api"
	"github.com/RachanaRJadav/arecanut-ai/internal/cache"
	"github.com/RachanaRJadav/arecanut-ai/internal/config"
	"github.com/RachanaRJadav/arecanut-ai/internal/db"
	"github.com/RachanaRJadav/arecanut-ai/internal/grading"
	"github.com/RachanaRJadav/arecanut-ai/internal/logger"
	"github.com/RachanaRJadav/arecanut-ai/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Msg("Starting API server")

	ctx := context.Background()

	// Initialize repository. With no Mongo URI the server runs in demo
	// mode against an in-process store.
	var repo db.Repository
	if cfg.Mongo.URI != "" {
		client, err := db.NewConnection(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
		}
		defer client.Disconnect(ctx)

		database := client.Database(cfg.Mongo.Database)
		if err := db.EnsureIndexes(ctx, database); err != nil {
			log.Fatal().Err(err).Msg("Failed to create indexes")
		}

		repo = db.NewRepository(database)
	} else {
		log.Warn().Msg("No MongoDB URI configured, running in demo mode with in-memory storage")
		repo = db.NewMemoryRepository()
	}

	// Initialize analytics cache
	var analyticsCache cache.AnalyticsCache
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()

		analyticsCache = cache.NewAnalyticsCache(redisClient, cfg)
	}

	// Initialize image storage
	var imageStore storage.ImageStore
	if cfg.Storage.Enabled {
		s3Store, err := storage.NewS3Store(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 storage")
		}
		imageStore = s3Store
	}

	// Initialize grading service
	svc := grading.NewService(repo, imageStore, analyticsCache, grading.NewGrader(), cfg.Grading.DefaultHistoryLimit)

	// Initialize API handler
	handler := api.NewHandler(svc, repo, cfg)

	// Setup Gin router
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(api.CORSMiddleware())
	router.Use(api.LoggingMiddleware())
	router.Use(api.RecoveryMiddleware())

	// Setup routes
	api.SetupRoutes(router, handler)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Create context for graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Shutdown server
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
