package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sipoma/internal/common"
	"sipoma/internal/models"
)

func TestNotificationRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	subject := uuid.New()
	now := time.Now().UTC()
	n := &models.Notification{
		EventType: models.NotificationUserRegistered,
		SubjectID: &subject,
		Message:   "New registration: alice@example.com",
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO admin_notifications")).
		WithArgs(pgxmock.AnyArg(), "user_registered", &subject, n.Message).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

	require.NoError(t, NewNotificationRepo(mock).Create(context.Background(), n))
	assert.NotEqual(t, uuid.Nil, n.ID)
	assert.Equal(t, now, n.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepo_ListUnread(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	subject := uuid.New()
	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "event_type", "subject_id", "message", "read_at", "created_at"}).
		AddRow(id, "user_registered", &subject, "New registration", (*time.Time)(nil), now)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE read_at IS NULL")).
		WithArgs(50).
		WillReturnRows(rows)

	list, err := NewNotificationRepo(mock).ListUnread(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.Equal(t, models.NotificationUserRegistered, list[0].EventType)
	assert.Nil(t, list[0].ReadAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepo_MarkRead(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewNotificationRepo(mock)

	found, missing := uuid.New(), uuid.New()
	mock.ExpectExec(regexp.QuoteMeta("SET read_at = COALESCE(read_at, NOW())")).
		WithArgs(found).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta("SET read_at = COALESCE(read_at, NOW())")).
		WithArgs(missing).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.NoError(t, repo.MarkRead(context.Background(), found))
	assert.ErrorIs(t, repo.MarkRead(context.Background(), missing), common.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepo_DeleteReadBefore(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewNotificationRepo(mock)

	cutoff := time.Now().Add(-30 * 24 * time.Hour)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM admin_notifications")).
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM admin_notifications")).
		WithArgs(cutoff).
		WillReturnError(errors.New("canceling statement due to statement timeout"))

	deleted, err := repo.DeleteReadBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)

	_, err = repo.DeleteReadBefore(context.Background(), cutoff)
	assert.ErrorContains(t, err, "failed to delete notifications")
	assert.NoError(t, mock.ExpectationsWereMet())
}
