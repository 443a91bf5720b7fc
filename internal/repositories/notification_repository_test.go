package repositories

import (
	"testing"
	"time"

	apperrors "github.com/anonto42/moments/backend/internal/errors"
	"github.com/anonto42/moments/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationsGroupedAndUnread(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresNotificationRepository(db)
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	at := []time.Time{
		now.Add(-time.Hour),      // today
		now.Add(-20 * time.Hour), // yesterday
		now.AddDate(0, 0, -3),    // this week
		now.AddDate(0, 0, -30),   // older
	}
	for _, ts := range at {
		require.NoError(t, repo.CreateNotification(&models.Notification{
			Type:        models.NotificationLike,
			ActorID:     "bob",
			RecipientID: "alice",
			TargetID:    "p1",
			TargetType:  "post",
			CreatedAt:   ts,
		}))
	}
	require.NoError(t, repo.CreateNotification(&models.Notification{
		Type: models.NotificationFollow, ActorID: "alice", RecipientID: "bob", CreatedAt: now,
	}))

	g, err := repo.GetGrouped("alice", now)
	require.NoError(t, err)
	assert.Len(t, g.Today, 1)
	assert.Len(t, g.Yesterday, 1)
	assert.Len(t, g.ThisWeek, 1)
	assert.Len(t, g.Older, 1)

	page, total, err := repo.GetByRecipientID("alice", 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, page, 2)
	assert.True(t, page[0].CreatedAt.After(page[1].CreatedAt))

	unread, err := repo.GetUnreadCount("alice")
	require.NoError(t, err)
	assert.EqualValues(t, 4, unread)

	require.NoError(t, repo.MarkAsRead(page[0].ID, "alice"))
	unread, err = repo.GetUnreadCount("alice")
	require.NoError(t, err)
	assert.EqualValues(t, 3, unread)

	err = repo.MarkAsRead(page[1].ID, "bob")
	assert.True(t, apperrors.IsNotFound(err))

	require.NoError(t, repo.MarkAllAsRead("alice"))
	unread, err = repo.GetUnreadCount("alice")
	require.NoError(t, err)
	assert.Zero(t, unread)

	unread, err = repo.GetUnreadCount("bob")
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)
}
