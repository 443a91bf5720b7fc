package bootstrap

import (
	"context"
	"testing"

	"github.com/anonto42/moments/backend/internal/store/memory"
	"github.com/anonto42/moments/backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStoreMemory(t *testing.T) {
	s, err := OpenStore(context.Background(), &config.Config{StoreDriver: config.StoreMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, s)
}

func TestOpenStoreRejectsUnknownOrIncompleteConfig(t *testing.T) {
	_, err := OpenStore(context.Background(), &config.Config{StoreDriver: "cassandra"}, nil)
	assert.ErrorContains(t, err, "unknown STORE_DRIVER")

	_, err = OpenStore(context.Background(), &config.Config{StoreDriver: config.StoreFirestore}, nil)
	assert.Error(t, err)

	_, err = OpenStore(context.Background(), &config.Config{StoreDriver: config.StoreMongo}, nil)
	assert.ErrorContains(t, err, "MONGO_URI")
}

func TestAuthSelection(t *testing.T) {
	mw, verifier, err := Auth(&config.Config{AuthMode: config.AuthJWT, JWTSecret: "s3cret"}, nil)
	require.NoError(t, err)
	assert.NotNil(t, mw)
	assert.Nil(t, verifier)

	_, _, err = Auth(&config.Config{AuthMode: config.AuthJWT}, nil)
	assert.ErrorContains(t, err, "JWT_SECRET")

	_, _, err = Auth(&config.Config{AuthMode: config.AuthFirebase}, nil)
	assert.Error(t, err)

	_, _, err = Auth(&config.Config{AuthMode: "basic"}, nil)
	assert.ErrorContains(t, err, "unknown AUTH_MODE")
}

func TestNeedsFirebase(t *testing.T) {
	assert.True(t, NeedsFirebase(&config.Config{StoreDriver: config.StoreFirestore, AuthMode: config.AuthJWT}))
	assert.True(t, NeedsFirebase(&config.Config{StoreDriver: config.StoreMemory, AuthMode: config.AuthFirebase}))
	assert.False(t, NeedsFirebase(&config.Config{StoreDriver: config.StoreMongo, AuthMode: config.AuthJWT}))
}

func TestSigningKeyOnlyInJWTMode(t *testing.T) {
	assert.Equal(t, "s3cret", SigningKey(&config.Config{AuthMode: config.AuthJWT, JWTSecret: "s3cret"}))
	assert.Empty(t, SigningKey(&config.Config{AuthMode: config.AuthFirebase, JWTSecret: "s3cret"}))
}
