package testhelpers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sipoma/internal/caching"
	"sipoma/internal/common"
	"sipoma/internal/models"
	"sipoma/internal/repositories"
)

var (
	_ repositories.UserRepository         = (*MemoryUserRepository)(nil)
	_ repositories.AuditLogsRepository    = (*MemoryAuditLogsRepository)(nil)
	_ repositories.NotificationRepository = (*MemoryNotificationRepository)(nil)
	_ caching.CacheService                = (*MemoryCache)(nil)
)

func TestMemoryUserRepository_TransitionStatusIsCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	user := &models.User{Email: "Alice@Example.com", FullName: "Alice", Status: models.UserStatusPending, Role: models.UserRoleUser}
	require.NoError(t, repo.Create(ctx, user))
	assert.Equal(t, "alice@example.com", user.Email)

	updated, err := repo.TransitionStatus(ctx, user.ID, models.UserStatusPending, models.UserStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusApproved, updated.Status)

	_, err = repo.TransitionStatus(ctx, user.ID, models.UserStatusPending, models.UserStatusRejected)
	assert.ErrorIs(t, err, common.ErrInvalidStateTransition)

	_, err = repo.TransitionStatus(ctx, uuid.New(), models.UserStatusPending, models.UserStatusApproved)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryCache_Sessions(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	session := &models.Session{ID: uuid.New(), UserID: uuid.New(), ExpiresAt: time.Now().Add(time.Hour)}

	require.NoError(t, cache.SetSession(ctx, session, time.Hour))
	got, err := cache.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, got.UserID)

	require.NoError(t, cache.DeleteSession(ctx, session.ID))
	_, err = cache.GetSession(ctx, session.ID)
	assert.ErrorIs(t, err, common.ErrSessionNotFound)
	assert.Zero(t, cache.SessionCount())
}
