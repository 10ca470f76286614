package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/akashvaddapelli/Resumeiq/internal/auth"
	"github.com/akashvaddapelli/Resumeiq/internal/config"
	"github.com/akashvaddapelli/Resumeiq/internal/feedback"
	"github.com/akashvaddapelli/Resumeiq/internal/handlers"
	"github.com/akashvaddapelli/Resumeiq/internal/jobs"
	"github.com/akashvaddapelli/Resumeiq/internal/llm"
	_ "github.com/akashvaddapelli/Resumeiq/internal/llm/gateway"
	_ "github.com/akashvaddapelli/Resumeiq/internal/llm/gemini"
	"github.com/akashvaddapelli/Resumeiq/internal/metrics"
	resumiqmw "github.com/akashvaddapelli/Resumeiq/internal/middleware"
	"github.com/akashvaddapelli/Resumeiq/internal/objectstore"
	"github.com/akashvaddapelli/Resumeiq/internal/prompts"
	"github.com/akashvaddapelli/Resumeiq/internal/repositories"
	"github.com/akashvaddapelli/Resumeiq/internal/routers"
	"github.com/akashvaddapelli/Resumeiq/internal/utils"
)

const authTimeout = 5 * time.Second

func registerRoutes(router *chi.Mux, authenticate func(http.Handler) http.Handler, api routers.APIHandlers, healthHandler *handlers.HealthHandler) {
	routers.HealthRoutes(router, healthHandler)
	routers.APIRoutes(router, authenticate, api)
}

func newRouter(cfg *config.Config) *chi.Mux {
	router := chi.NewRouter()

	// cors middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer, middleware.Timeout(cfg.RequestTimeout))
	router.Use(metrics.Middleware)
	return router
}

// newFeedbackCache uses redis when REDIS_ADDR is set and the in-memory cache
// otherwise. The pinger is nil for the in-memory cache.
func newFeedbackCache(cfg *config.Config, logger *zap.Logger) (feedback.Cache, handlers.Pinger, func()) {
	if cfg.Redis.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cache := feedback.NewRedisCache(client, cfg.Feedback.CacheTTL)
		logger.Info("Feedback contexts cached in redis", zap.String("addr", cfg.Redis.Addr))
		return cache, cache, func() { client.Close() }
	}

	cache := feedback.NewContextCache(cfg.Feedback.CacheTTL)
	logger.Info("Feedback contexts cached in memory")
	return cache, nil, cache.Close
}

// initDatabase opens and migrates the database. It returns nil when the
// driver is "none".
func initDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	if cfg.Driver == config.DriverNone {
		return nil, nil
	}
	db, err := repositories.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := repositories.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func main() {
	config.LoadEnvFile()

	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger, _ := zap.NewProduction()
		bootLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger, err := utils.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider),
		zap.String("auth_mode", cfg.Auth.Mode),
		zap.String("db_driver", cfg.Database.Driver))

	ctx := context.Background()

	// prompt manager
	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		logger.Fatal("Failed to initialize prompt manager", zap.Error(err))
	}

	// AI provider based on configuration
	aiProvider, err := llm.NewProvider(cfg.Provider)
	if err != nil {
		logger.Fatal("Failed to initialize AI provider", zap.Error(err))
	}

	verifier, err := auth.NewVerifier(cfg.Auth, authTimeout)
	if err != nil {
		logger.Fatal("Failed to initialize auth verifier", zap.Error(err))
	}

	var store *objectstore.Store
	if cfg.Storage.Enabled() {
		store, err = objectstore.New(ctx, cfg.Storage)
		if err != nil {
			logger.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		logger.Info("Object storage enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	aiHandler := handlers.NewAIHandler(aiProvider, promptManager, logger)
	healthHandler := handlers.NewHealthHandler(aiProvider, promptManager, cfg)
	api := routers.APIHandlers{AI: aiHandler}
	var uploader jobs.Uploader
	if store != nil {
		uploader = store
	}
	api.Resumes = handlers.NewResumeHandler(uploader, logger)

	db, err := initDatabase(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	var exporterJob *jobs.FeedbackExporterJob
	if db != nil {
		cache, pinger, closeCache := newFeedbackCache(cfg, logger)
		defer closeCache()

		feedbackManager := feedback.NewFeedbackManager(db, cache, logger)
		repos := repositories.NewStore(db)

		aiHandler.SetFeedbackManager(feedbackManager)
		aiHandler.SetStore(repos)

		sessionHandler := handlers.NewSessionHandler(repos, aiProvider, promptManager, logger)
		sessionHandler.SetFeedbackManager(feedbackManager)

		api.Sessions = sessionHandler
		api.Reports = handlers.NewReportHandler(repos, logger)
		api.Feedback = handlers.NewFeedbackHandler(feedbackManager, logger)

		healthHandler.SetDatabase(db)
		if pinger != nil {
			healthHandler.SetCache(pinger)
		}

		exporterJob = jobs.NewFeedbackExporterJob(feedbackManager, uploader, &jobs.ExporterConfig{
			Schedule:      cfg.Feedback.ExportSchedule,
			ExportDir:     cfg.Feedback.ExportDir,
			ExportEnabled: cfg.Feedback.ExportEnabled,
		}, logger)
		if err := exporterJob.Start(); err != nil {
			logger.Error("Failed to start feedback exporter job", zap.Error(err))
		}

		logger.Info("Persistence and feedback system initialized")
	} else {
		logger.Warn("Database disabled, session and feedback routes are not mounted")
	}

	router := newRouter(cfg)
	registerRoutes(router, resumiqmw.Auth(verifier, logger), api, healthHandler)

	serverAddr := ":" + cfg.Port

	// http server with timeouts; WriteTimeout leaves room for a full model call
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// starting server in a goroutine
	go func() {
		logger.Info("Resumiq API starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shutdown the server
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Resumiq API shutting down...")

	if exporterJob != nil {
		exporterJob.Stop()
		logger.Info("Feedback exporter job stopped")
	}

	// graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("Resumiq API exited")
}
