// Package bootstrap turns a config.Config into the store, Firebase app and
// authentication middleware shared by the binaries.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/anonto42/moments/backend/internal/logger"
	"github.com/anonto42/moments/backend/internal/middleware"
	"github.com/anonto42/moments/backend/internal/store"
	"github.com/anonto42/moments/backend/internal/store/firestoredb"
	"github.com/anonto42/moments/backend/internal/store/memory"
	"github.com/anonto42/moments/backend/internal/store/mongodb"
	"github.com/anonto42/moments/backend/pkg/config"
	"github.com/anonto42/moments/backend/pkg/firebase"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// NeedsFirebase reports whether cfg uses Firebase for storage or authentication.
func NeedsFirebase(cfg *config.Config) bool {
	return cfg.StoreDriver == config.StoreFirestore || cfg.AuthMode == config.AuthFirebase
}

// InitFirebase initializes the Firebase app when cfg needs it and returns nil otherwise.
func InitFirebase(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	if !NeedsFirebase(cfg) {
		return nil, nil
	}
	return firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseProjectID)
}

// OpenStore opens the document store selected by STORE_DRIVER. fb is only
// consulted for the firestore driver.
func OpenStore(ctx context.Context, cfg *config.Config, fb *firebase.App) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreFirestore:
		if fb == nil {
			return nil, fmt.Errorf("firestore store requires a firebase app")
		}
		client, err := fb.Firestore(ctx)
		if err != nil {
			return nil, err
		}
		logger.Log.Info("Document store ready", zap.String("driver", cfg.StoreDriver))
		return firestoredb.New(client), nil
	case config.StoreMongo:
		client, err := config.InitMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		logger.Log.Info("Document store ready",
			zap.String("driver", cfg.StoreDriver),
			zap.String("database", cfg.MongoDatabase),
		)
		return mongodb.New(client.Database(cfg.MongoDatabase)), nil
	case config.StoreMemory:
		logger.Log.Warn("Using the in-memory document store, data is lost on exit")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

// Auth returns the middleware protecting the API and, in firebase mode, the
// verifier used by the login endpoint.
func Auth(cfg *config.Config, fb *firebase.App) (echo.MiddlewareFunc, middleware.TokenVerifier, error) {
	switch cfg.AuthMode {
	case config.AuthFirebase:
		if fb == nil {
			return nil, nil, fmt.Errorf("firebase auth requires a firebase app")
		}
		return middleware.FirebaseAuthMiddleware(fb.AuthClient), fb.AuthClient, nil
	case config.AuthJWT:
		if cfg.JWTSecret == "" {
			return nil, nil, fmt.Errorf("JWT_SECRET must be set when AUTH_MODE=jwt")
		}
		return middleware.JWTAuthMiddleware(cfg.JWTSecret), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown AUTH_MODE %q", cfg.AuthMode)
	}
}

// SigningKey is the secret for locally issued JWTs. It is empty unless the API
// verifies local JWTs, which disables local accounts in firebase mode.
func SigningKey(cfg *config.Config) string {
	if cfg.AuthMode != config.AuthJWT {
		return ""
	}
	return cfg.JWTSecret
}
