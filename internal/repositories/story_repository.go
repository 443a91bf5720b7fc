package repositories

import (
	"context"
	"slices"
	"time"

	"github.com/anonto42/moments/backend/internal/models"
	"github.com/anonto42/moments/backend/internal/store"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StoryLifetime is how long a story stays visible.
const StoryLifetime = 24 * time.Hour

// StoryRepository defines the interface for story operations
type StoryRepository interface {
	CreateStory(ctx context.Context, story *models.Story) error
	GetStoryByID(ctx context.Context, id string) (*models.Story, error)
	GetStoriesByUserIDs(ctx context.Context, userIDs []string) ([]models.Story, error)
	DeleteExpiredStories(ctx context.Context) (int, error)
	MarkSeen(storySeen *models.StorySeen) error
	GetSeenStoryIDs(userID string, storyIDs []string) (map[string]bool, error)
	AddReaction(reaction *models.StoryReaction) error
}

// storyRepository keeps stories in the document store and seen/reaction rows
// in PostgreSQL.
type storyRepository struct {
	store store.Store
	pgDB  *gorm.DB
	now   func() time.Time
}

func NewStoryRepository(s store.Store, pgDB *gorm.DB) StoryRepository {
	return &storyRepository{store: s, pgDB: pgDB, now: time.Now}
}

// CreateStory stamps item ids and sets the expiry StoryLifetime from now.
func (r *storyRepository) CreateStory(ctx context.Context, story *models.Story) error {
	now := r.now().UTC()
	for i := range story.Items {
		if story.Items[i].ID == "" {
			story.Items[i].ID = uuid.NewString()
		}
		if story.Items[i].CreatedAt.IsZero() {
			story.Items[i].CreatedAt = now
		}
	}
	id, err := r.store.Create(ctx, models.CollectionStories, "", map[string]any{
		"userId":    story.UserID,
		"items":     story.Items,
		"expiresAt": now.Add(StoryLifetime),
	})
	if err != nil {
		return storeError("createStory", "story", err)
	}
	created, err := r.GetStoryByID(ctx, id)
	if err != nil {
		return err
	}
	*story = *created
	return nil
}

func (r *storyRepository) GetStoryByID(ctx context.Context, id string) (*models.Story, error) {
	story, err := store.GetAs[models.Story](ctx, r.store, models.CollectionStories, id)
	if err != nil {
		return nil, storeError("getStory", "story", err)
	}
	return story, nil
}

// GetStoriesByUserIDs returns unexpired stories of the given users, newest first.
func (r *storyRepository) GetStoriesByUserIDs(ctx context.Context, userIDs []string) ([]models.Story, error) {
	now := r.now().UTC()
	stories := []models.Story{}
	for _, ids := range chunk(userIDs, MaxInFilter) {
		q := store.NewQuery().
			Where("userId", store.OpIn, ids).
			Where("expiresAt", store.OpGreater, now)
		page, err := store.FindAs[models.Story](ctx, r.store, models.CollectionStories, q)
		if err != nil {
			return nil, storeError("getStories", "story", err)
		}
		stories = append(stories, page...)
	}
	slices.SortFunc(stories, func(a, b models.Story) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return stories, nil
}

// DeleteExpiredStories removes stories past their expiry and reports how many.
func (r *storyRepository) DeleteExpiredStories(ctx context.Context) (int, error) {
	q := store.NewQuery().Where("expiresAt", store.OpLessOrEqual, r.now().UTC())
	snaps, err := r.store.Find(ctx, models.CollectionStories, q)
	if err != nil {
		return 0, storeError("deleteExpiredStories", "story", err)
	}
	for i, snap := range snaps {
		if err := r.store.Delete(ctx, models.CollectionStories, snap.ID()); err != nil {
			return i, storeError("deleteExpiredStories", "story", err)
		}
	}
	return len(snaps), nil
}

// MarkSeen is idempotent per (story, user).
func (r *storyRepository) MarkSeen(storySeen *models.StorySeen) error {
	storySeen.SeenAt = r.now()
	err := r.pgDB.Clauses(clause.OnConflict{DoNothing: true}).Create(storySeen).Error
	return storeError("markSeen", "story", err)
}

func (r *storyRepository) GetSeenStoryIDs(userID string, storyIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(storyIDs) == 0 {
		return result, nil
	}
	var seen []models.StorySeen
	err := r.pgDB.Where("user_id = ? AND story_id IN ?", userID, storyIDs).Find(&seen).Error
	if err != nil {
		return nil, storeError("getSeenStoryIDs", "story", err)
	}
	for _, s := range seen {
		result[s.StoryID] = true
	}
	return result, nil
}

func (r *storyRepository) AddReaction(reaction *models.StoryReaction) error {
	reaction.CreatedAt = r.now()
	return storeError("addReaction", "story", r.pgDB.Create(reaction).Error)
}
