package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/BerylCAtieno/cheatsheet-api/internal/analyzer"
	"github.com/BerylCAtieno/cheatsheet-api/internal/auth"
	"github.com/BerylCAtieno/cheatsheet-api/internal/config"
	"github.com/BerylCAtieno/cheatsheet-api/internal/db"
	"github.com/BerylCAtieno/cheatsheet-api/internal/events"
	"github.com/BerylCAtieno/cheatsheet-api/internal/repository"
	"github.com/BerylCAtieno/cheatsheet-api/internal/router"
	"github.com/BerylCAtieno/cheatsheet-api/internal/services"
	"github.com/BerylCAtieno/cheatsheet-api/internal/storage"
	"github.com/BerylCAtieno/cheatsheet-api/internal/utils"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel)

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startCancel()

	// Run migrations
	if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	// Initialize database
	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer database.Close()
	logger.Info("Database ready", "driver", db.DriverFor(cfg.DatabaseURL))

	repo := repository.NewRepository(database)

	var archive storage.Archive
	if cfg.S3Enabled() {
		archive, err = storage.NewS3Archive(startCtx, cfg)
		if err != nil {
			logger.Fatal("Failed to initialize document archive", "error", err)
		}
		logger.Info("Document archive enabled", "bucket", cfg.S3BucketName)
	}

	var broker events.Broker
	if cfg.RedisEnabled() {
		broker, err = events.NewRedisBroker(startCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisChannelPrefix, logger)
		if err != nil {
			logger.Fatal("Failed to connect to redis", "error", err)
		}
		logger.Info("Redis notifications enabled", "addr", cfg.RedisAddr)
	} else {
		broker = events.NewMemoryBroker()
	}
	defer broker.Close()

	var sessions auth.SessionProvider = auth.NoSessions{}
	if cfg.SupabaseEnabled() {
		sessions = auth.NewSupabaseSessions(cfg.SupabaseURL, cfg.SupabaseAnonKey)
		logger.Info("Supabase sessions enabled")
	}
	identities := auth.NewResolver(sessions, cfg.IsProduction(), logger)

	modelClient := analyzer.NewOpenAIClient(analyzer.ClientConfig{
		APIKey:    cfg.OpenAIAPIKey,
		BaseURL:   cfg.OpenAIBaseURL,
		Model:     cfg.OpenAIModel,
		MaxTokens: cfg.OpenAIMaxTokens,
		Timeout:   cfg.OpenAITimeout,
	}, logger)

	persister := services.NewPersister(repo, identities, archive, broker, logger)
	analysisService := services.NewAnalysisService(analyzer.NewAnalyzer(modelClient, logger), persister, cfg.MaxDocumentChars, logger)
	summaryService := services.NewSummaryService(repo, archive, broker, logger)

	// Setup HTTP router
	handler := router.NewRouter(router.Dependencies{
		Analysis:       analysisService,
		Summaries:      summaryService,
		Identities:     identities,
		MaxMemory:      cfg.MultipartMaxMemory,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         logger,
	})

	// Create HTTP server; writes must outlast one model call.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.OpenAITimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "env", cfg.AppEnv, "model", cfg.OpenAIModel)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
