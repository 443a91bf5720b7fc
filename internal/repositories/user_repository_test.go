package repositories

import (
	"context"
	"testing"

	apperrors "github.com/anonto42/moments/backend/internal/errors"
	"github.com/anonto42/moments/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureProfileCreatesOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewStoreUserRepository(newMemoryStore())

	p, created, err := repo.EnsureProfile(ctx, &models.UserProfile{UID: "u1", Username: "Sam", DisplayName: "Sam"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "sam", p.Username)
	assert.Empty(t, p.Followers)
	assert.Zero(t, p.FollowersCount)

	p, created, err = repo.EnsureProfile(ctx, &models.UserProfile{UID: "u1", Username: "other"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "sam", p.Username)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	repo := NewStoreUserRepository(newMemoryStore())
	_, _, err := repo.EnsureProfile(ctx, &models.UserProfile{UID: "u1", Username: "sam"})
	require.NoError(t, err)
	_, _, err = repo.EnsureProfile(ctx, &models.UserProfile{UID: "u2", Username: "sara"})
	require.NoError(t, err)

	bio := "hello"
	name := "Sammy"
	p, err := repo.UpdateProfile(ctx, "u1", &models.UpdateProfileRequest{Bio: &bio, DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, "hello", p.Bio)
	assert.Equal(t, "Sammy", p.DisplayName)

	taken := "SARA"
	_, err = repo.UpdateProfile(ctx, "u1", &models.UpdateProfileRequest{Username: &taken})
	code, ok := apperrors.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, code)

	same := "sam"
	_, err = repo.UpdateProfile(ctx, "u1", &models.UpdateProfileRequest{Username: &same})
	require.NoError(t, err)

	_, err = repo.UpdateProfile(ctx, "ghost", &models.UpdateProfileRequest{Bio: &bio})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGetProfilesSkipsMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewStoreUserRepository(newMemoryStore())
	_, _, err := repo.EnsureProfile(ctx, &models.UserProfile{UID: "u1", Username: "sam"})
	require.NoError(t, err)

	profiles, err := repo.GetProfiles(ctx, []string{"u1", "ghost", "u1"})
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
	assert.Equal(t, "sam", profiles["u1"].Username)
}
