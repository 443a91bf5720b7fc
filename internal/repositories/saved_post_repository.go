package repositories

import (
	"github.com/anonto42/moments/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SavedPostRepository defines the interface for saved post operations
type SavedPostRepository interface {
	SavePost(savedPost *models.SavedPost) error
	UnsavePost(userID string, postID string) error
	IsPostSaved(userID string, postID string) (bool, error)
	GetSavedPostsByUser(userID string) ([]models.SavedPost, error)
	GetSavedPostIDs(userID string, postIDs []string) (map[string]bool, error)
}

// PostgresSavedPostRepository implements SavedPostRepository
type PostgresSavedPostRepository struct {
	db *gorm.DB
}

func NewPostgresSavedPostRepository(db *gorm.DB) *PostgresSavedPostRepository {
	return &PostgresSavedPostRepository{db: db}
}

// SavePost is a no-op when the post is already saved.
func (r *PostgresSavedPostRepository) SavePost(savedPost *models.SavedPost) error {
	err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(savedPost).Error
	return storeError("savePost", "saved post", err)
}

func (r *PostgresSavedPostRepository) UnsavePost(userID string, postID string) error {
	res := r.db.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.SavedPost{})
	if res.Error != nil {
		return storeError("unsavePost", "saved post", res.Error)
	}
	if res.RowsAffected == 0 {
		return storeError("unsavePost", "saved post", gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *PostgresSavedPostRepository) IsPostSaved(userID string, postID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.SavedPost{}).Where("user_id = ? AND post_id = ?", userID, postID).Count(&count).Error
	return count > 0, storeError("isPostSaved", "saved post", err)
}

func (r *PostgresSavedPostRepository) GetSavedPostsByUser(userID string) ([]models.SavedPost, error) {
	var saved []models.SavedPost
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&saved).Error
	return saved, storeError("getSavedPosts", "saved post", err)
}

func (r *PostgresSavedPostRepository) GetSavedPostIDs(userID string, postIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(postIDs) == 0 {
		return result, nil
	}
	var saved []models.SavedPost
	err := r.db.Where("user_id = ? AND post_id IN ?", userID, postIDs).Find(&saved).Error
	if err != nil {
		return nil, storeError("getSavedPostIDs", "saved post", err)
	}
	for _, s := range saved {
		result[s.PostID] = true
	}
	return result, nil
}
