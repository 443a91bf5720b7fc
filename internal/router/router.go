package router

import (
	"fmt"

	"github.com/anonto42/moments/backend/internal/ai"
	"github.com/anonto42/moments/backend/internal/handlers"
	"github.com/anonto42/moments/backend/internal/ledger"
	"github.com/anonto42/moments/backend/internal/logger"
	"github.com/anonto42/moments/backend/internal/middleware"
	"github.com/anonto42/moments/backend/internal/repositories"
	"github.com/anonto42/moments/backend/internal/store"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the connections and settings the routes are built from.
type Deps struct {
	Store    store.Store
	Postgres *gorm.DB
	// Auth protects the /api/v1 group and must store the subject under middleware.UIDKey.
	Auth         echo.MiddlewareFunc
	FirebaseAuth middleware.TokenVerifier
	JWTSecret    string
	LedgerMode   ledger.Mode
	Suggester    *ai.Suggester
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Metrics())
	e.Use(eMiddleware.CORS())
	logger.Log.Info("Global middleware configured")
}

// SetupRoutes migrates the PostgreSQL tables and wires repositories, ledgers
// and handlers onto e.
func SetupRoutes(e *echo.Echo, deps Deps) error {
	if err := repositories.Migrate(deps.Postgres); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	logger.Log.Info("PostgreSQL auto-migrations completed")

	suggester := deps.Suggester
	if suggester == nil {
		suggester = ai.NewSuggester(nil)
	}

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Repositories and ledgers ---
	userRepo := repositories.NewStoreUserRepository(deps.Store)
	postRepo := repositories.NewStorePostRepository(deps.Store)
	commentRepo := repositories.NewStoreCommentRepository(deps.Store, postRepo)
	messageRepo := repositories.NewStoreMessageRepository(deps.Store)
	storyRepo := repositories.NewStoryRepository(deps.Store, deps.Postgres)
	accountRepo := repositories.NewPostgresAccountRepository(deps.Postgres)
	savedPostRepo := repositories.NewPostgresSavedPostRepository(deps.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(deps.Postgres)

	engagement := ledger.NewEngagement(deps.Store, deps.LedgerMode)
	graph := ledger.NewGraph(deps.Store, deps.LedgerMode)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	handlers.NewAuthHandler(userRepo, accountRepo, deps.FirebaseAuth, deps.JWTSecret).RegisterAuthRoutes(authGroup)

	// --- Protected routes ---
	api := e.Group("/api/v1")
	api.Use(deps.Auth)

	handlers.NewUserHandler(userRepo, graph).RegisterProfileRoutes(api)
	handlers.NewPostHandler(postRepo).RegisterPostRoutes(api)
	handlers.NewFeedHandler(postRepo, userRepo, savedPostRepo).RegisterFeedRoutes(api)
	handlers.NewFollowHandler(graph, userRepo, notificationRepo).RegisterFollowRoutes(api)
	handlers.NewLikeHandler(engagement, postRepo, userRepo, notificationRepo).RegisterLikeRoutes(api)
	handlers.NewCommentHandler(commentRepo, postRepo, userRepo, notificationRepo).RegisterCommentRoutes(api)
	handlers.NewSavedPostHandler(savedPostRepo, postRepo).RegisterSavedPostRoutes(api)
	handlers.NewStoryHandler(storyRepo, userRepo).RegisterStoryRoutes(api)
	handlers.NewNotificationHandler(notificationRepo, userRepo).RegisterNotificationRoutes(api)
	handlers.NewMessageHandler(messageRepo, userRepo, notificationRepo).RegisterMessageRoutes(api)
	handlers.NewAIHandler(suggester).RegisterAIRoutes(api)

	logger.Log.Info("All routes configured",
		zap.String("ledger_mode", string(deps.LedgerMode)),
		zap.Int("routes", len(e.Routes())),
	)
	return nil
}
