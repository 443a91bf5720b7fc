package repositories

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/anonto42/moments/backend/internal/errors"
	"github.com/anonto42/moments/backend/internal/models"
	"github.com/anonto42/moments/backend/internal/store"
)

// UserRepository defines the interface for profile data operations.
// Membership sets and counters belong to the graph ledger and are never
// written here after creation.
type UserRepository interface {
	EnsureProfile(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, bool, error)
	GetProfile(ctx context.Context, uid string) (*models.UserProfile, error)
	GetProfiles(ctx context.Context, uids []string) (map[string]models.UserProfile, error)
	UpdateProfile(ctx context.Context, uid string, req *models.UpdateProfileRequest) (*models.UserProfile, error)
	IsUsernameTaken(ctx context.Context, username, exceptUID string) (bool, error)
}

// StoreUserRepository implements UserRepository on the users collection
type StoreUserRepository struct {
	store store.Store
}

func NewStoreUserRepository(s store.Store) *StoreUserRepository {
	return &StoreUserRepository{store: s}
}

// EnsureProfile returns the existing profile for profile.UID or creates it
// with empty membership sets. The bool reports whether it was created.
func (r *StoreUserRepository) EnsureProfile(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, bool, error) {
	existing, err := r.GetProfile(ctx, profile.UID)
	if err == nil {
		return existing, false, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, false, err
	}

	_, err = r.store.Create(ctx, models.CollectionUsers, profile.UID, map[string]any{
		"uid":             profile.UID,
		"email":           profile.Email,
		"displayName":     profile.DisplayName,
		"username":        strings.ToLower(profile.Username),
		"avatar":          profile.Avatar,
		"backgroundImage": profile.BackgroundImage,
		"bio":             profile.Bio,
		"followers":       []string{},
		"following":       []string{},
		"followersCount":  int64(0),
		"followingCount":  int64(0),
		"isVerified":      false,
	})
	if err != nil {
		return nil, false, storeError("createProfile", "user", err)
	}
	created, err := r.GetProfile(ctx, profile.UID)
	return created, err == nil, err
}

func (r *StoreUserRepository) GetProfile(ctx context.Context, uid string) (*models.UserProfile, error) {
	user, err := store.GetAs[models.UserProfile](ctx, r.store, models.CollectionUsers, uid)
	if err != nil {
		return nil, storeError("getProfile", "user", err)
	}
	return user, nil
}

// GetProfiles reads each uid with a point read. Missing profiles are left out.
func (r *StoreUserRepository) GetProfiles(ctx context.Context, uids []string) (map[string]models.UserProfile, error) {
	out := make(map[string]models.UserProfile, len(uids))
	for _, uid := range uids {
		if _, done := out[uid]; done {
			continue
		}
		user, err := store.GetAs[models.UserProfile](ctx, r.store, models.CollectionUsers, uid)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, storeError("getProfiles", "user", err)
		}
		out[uid] = *user
	}
	return out, nil
}

// UpdateProfile writes the display fields present in req.
func (r *StoreUserRepository) UpdateProfile(ctx context.Context, uid string, req *models.UpdateProfileRequest) (*models.UserProfile, error) {
	updates := []store.Update{store.ServerTimestamp("updatedAt")}
	if req.DisplayName != nil {
		updates = append(updates, store.Set("displayName", *req.DisplayName))
	}
	if req.Username != nil {
		username := strings.ToLower(*req.Username)
		taken, err := r.IsUsernameTaken(ctx, username, uid)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.Conflict("username is already taken")
		}
		updates = append(updates, store.Set("username", username))
	}
	if req.Avatar != nil {
		updates = append(updates, store.Set("avatar", *req.Avatar))
	}
	if req.BackgroundImage != nil {
		updates = append(updates, store.Set("backgroundImage", *req.BackgroundImage))
	}
	if req.Bio != nil {
		updates = append(updates, store.Set("bio", *req.Bio))
	}
	if err := r.store.Update(ctx, models.CollectionUsers, uid, updates...); err != nil {
		return nil, storeError("updateProfile", "user", err)
	}
	return r.GetProfile(ctx, uid)
}

func (r *StoreUserRepository) IsUsernameTaken(ctx context.Context, username, exceptUID string) (bool, error) {
	q := store.NewQuery().Where("username", store.OpEqual, strings.ToLower(username)).Take(2)
	snaps, err := r.store.Find(ctx, models.CollectionUsers, q)
	if err != nil {
		return false, storeError("isUsernameTaken", "user", err)
	}
	for _, snap := range snaps {
		if snap.ID() != exceptUID {
			return true, nil
		}
	}
	return false, nil
}
