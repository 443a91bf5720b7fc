package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/moments/backend/internal/models"
	"github.com/anonto42/moments/backend/internal/store/memory"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database with the application tables.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

// tickingClock returns strictly increasing timestamps so createdAt ordering is stable.
func tickingClock() func() time.Time {
	t := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newMemoryStore() *memory.Store {
	return memory.New(memory.WithClock(tickingClock()))
}

func createPost(t *testing.T, repo PostRepository, userID, typ, visibility string) *models.Post {
	t.Helper()
	p := &models.Post{UserID: userID, Type: typ, ContentURL: "https://cdn.example.com/" + userID, Visibility: visibility}
	require.NoError(t, repo.CreatePost(context.Background(), p))
	return p
}
