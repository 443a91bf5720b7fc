package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_DRIVER", "AUTH_MODE", "LEDGER_MODE", "RECONCILE_INTERVAL", "STORY_CLEANUP_INTERVAL", "MONGO_DATABASE", "ENV"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreFirestore, cfg.StoreDriver)
	assert.Equal(t, AuthFirebase, cfg.AuthMode)
	assert.Equal(t, "direct", cfg.LedgerMode)
	assert.Equal(t, "moments", cfg.MongoDatabase)
	assert.Zero(t, cfg.ReconcileInterval)
	assert.Equal(t, time.Hour, cfg.StoryCleanupInterval)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("ENV", "production")
	t.Setenv("STORE_DRIVER", "Mongo")
	t.Setenv("AUTH_MODE", "JWT")
	t.Setenv("RECONCILE_INTERVAL", "15m")
	t.Setenv("STORY_CLEANUP_INTERVAL", "0")
	t.Setenv("LEDGER_MODE", "transactional")

	cfg := Load()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, AuthJWT, cfg.AuthMode)
	assert.Equal(t, 15*time.Minute, cfg.ReconcileInterval)
	assert.Zero(t, cfg.StoryCleanupInterval)
	assert.Equal(t, "transactional", cfg.LedgerMode)
	assert.True(t, cfg.IsProduction())
}

func TestInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("RECONCILE_INTERVAL", "often")
	assert.Equal(t, time.Minute, getDuration("RECONCILE_INTERVAL", time.Minute))
}
