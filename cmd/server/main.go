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

	"github.com/anonto42/moments/backend/internal/ai"
	"github.com/anonto42/moments/backend/internal/bootstrap"
	"github.com/anonto42/moments/backend/internal/ledger"
	"github.com/anonto42/moments/backend/internal/logger"
	"github.com/anonto42/moments/backend/internal/metrics"
	"github.com/anonto42/moments/backend/internal/repositories"
	"github.com/anonto42/moments/backend/internal/router"
	"github.com/anonto42/moments/backend/pkg/config"
	"github.com/anonto42/moments/backend/validators"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mode, err := ledger.ParseMode(cfg.LedgerMode)
	if err != nil {
		logger.Log.Fatal("Invalid LEDGER_MODE", zap.Error(err))
	}

	// Initialize database connections
	pg, err := config.InitPostgres(cfg.PostgresConnStr)
	if err != nil {
		logger.Log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer config.ClosePostgres(pg)

	// Initialize Firebase
	firebaseApp, err := bootstrap.InitFirebase(ctx, cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize Firebase", zap.Error(err))
	}

	docs, err := bootstrap.OpenStore(ctx, cfg, firebaseApp)
	if err != nil {
		logger.Log.Fatal("Failed to open document store", zap.Error(err))
	}
	defer docs.Close()

	authMiddleware, verifier, err := bootstrap.Auth(cfg, firebaseApp)
	if err != nil {
		logger.Log.Fatal("Failed to configure authentication", zap.Error(err))
	}

	var generator ai.Generator
	if cfg.GeminiAPIKey != "" {
		gen, err := ai.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Log.Warn("Gemini unavailable, serving fallback suggestions", zap.Error(err))
		} else {
			generator = gen
		}
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	err = router.SetupRoutes(e, router.Deps{
		Store:        docs,
		Postgres:     pg,
		Auth:         authMiddleware,
		FirebaseAuth: verifier,
		JWTSecret:    bootstrap.SigningKey(cfg),
		LedgerMode:   mode,
		Suggester:    ai.NewSuggester(generator),
	})
	if err != nil {
		logger.Log.Fatal("Failed to set up routes", zap.Error(err))
	}

	metricsServer := &http.Server{Addr: ":" + cfg.MetricsPort, Handler: metricsMux()}
	go func() {
		logger.Log.Info("Metrics server listening", zap.String("port", cfg.MetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Metrics server failed", zap.Error(err))
		}
	}()

	if cfg.ReconcileInterval > 0 {
		reconciler := ledger.NewReconciler(docs, mode)
		go runEvery(ctx, cfg.ReconcileInterval, func(ctx context.Context) {
			if _, err := reconciler.Run(ctx); err != nil {
				logger.Log.Error("Reconciliation failed", zap.Error(err))
			}
		})
	}
	if cfg.StoryCleanupInterval > 0 {
		stories := repositories.NewStoryRepository(docs, pg)
		go runEvery(ctx, cfg.StoryCleanupInterval, func(ctx context.Context) {
			if n, err := stories.DeleteExpiredStories(ctx); err != nil {
				logger.Log.Error("Failed to delete expired stories", zap.Error(err))
			} else if n > 0 {
				logger.Log.Info("Expired stories deleted", zap.Int("count", n))
			}
		})
	}

	// Start server
	go func() {
		logger.Log.Info("Starting server", zap.String("port", cfg.Port), zap.String("env", cfg.Env), zap.String("ledger_mode", string(mode)))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server shutdown failed", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Metrics server shutdown failed", zap.Error(err))
	}
}

func metricsMux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

// runEvery calls job once per interval until ctx is cancelled.
func runEvery(ctx context.Context, every time.Duration, job func(ctx context.Context)) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job(ctx)
		}
	}
}
