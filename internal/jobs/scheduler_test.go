package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sipoma/internal/logging"
	"sipoma/internal/models"
)

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) NotifyRegistration(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockNotificationService) NotifyPendingDigest(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationService) ListUnread(ctx context.Context) ([]*models.Notification, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockNotificationService) PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

var testOptions = Options{
	DigestInterval:        time.Hour,
	RetentionInterval:     time.Hour,
	NotificationRetention: 30 * 24 * time.Hour,
}

func newScheduler(t *testing.T, notifications *MockNotificationService) *JobScheduler {
	t.Helper()
	js, err := NewJobScheduler(notifications, testOptions, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = js.Stop() })
	return js
}

func TestNewJobScheduler_RegistersJobs(t *testing.T) {
	js := newScheduler(t, new(MockNotificationService))

	status := js.GetJobStatus()
	require.Len(t, status, 2)
	assert.Equal(t, NotificationRetentionJob, status[0].Name)
	assert.Equal(t, PendingDigestJob, status[1].Name)
}

func TestNewJobScheduler_RejectsBadInterval(t *testing.T) {
	_, err := NewJobScheduler(new(MockNotificationService), Options{}, logging.Discard())
	assert.Error(t, err)
}

func TestRunPendingDigest(t *testing.T) {
	notifications := new(MockNotificationService)
	notifications.On("NotifyPendingDigest", mock.Anything).Return(3, nil).Once()
	notifications.On("NotifyPendingDigest", mock.Anything).Return(0, errors.New("db down")).Once()

	js := newScheduler(t, notifications)
	assert.NoError(t, js.RunPendingDigest(context.Background()))
	assert.EqualError(t, js.RunPendingDigest(context.Background()), "db down")
	notifications.AssertExpectations(t)
}

func TestRunNotificationRetention(t *testing.T) {
	notifications := new(MockNotificationService)
	notifications.On("PurgeRead", mock.Anything, 30*24*time.Hour).Return(int64(7), nil)

	js := newScheduler(t, notifications)
	assert.NoError(t, js.RunNotificationRetention(context.Background()))
	notifications.AssertExpectations(t)
}

func TestRunNow(t *testing.T) {
	done := make(chan struct{})
	notifications := new(MockNotificationService)
	notifications.On("NotifyPendingDigest", mock.Anything).Return(0, nil).Run(func(mock.Arguments) {
		close(done)
	}).Once()

	js := newScheduler(t, notifications)
	js.Start()

	assert.ErrorIs(t, js.RunNow("no-such-job"), ErrUnknownJob)
	require.NoError(t, js.RunNow(PendingDigestJob))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("digest job did not run")
	}
}
