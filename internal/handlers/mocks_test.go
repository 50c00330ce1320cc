package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"sipoma/internal/jobs"
	"sipoma/internal/models"
	"sipoma/internal/services"
)

type MockRegistrationService struct{ mock.Mock }

func (m *MockRegistrationService) Register(ctx context.Context, req services.RegisterRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) SignIn(ctx context.Context, email, password string) (*services.SignInResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SignInResult), args.Error(1)
}

func (m *MockAuthService) GetSession(ctx context.Context, token string) (*models.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockAuthService) SignOut(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

type MockSessionResolver struct{ mock.Mock }

func (m *MockSessionResolver) Resolve(ctx context.Context, sc services.SessionContext) services.Resolution {
	return m.Called(ctx, sc).Get(0).(services.Resolution)
}

type MockApprovalService struct{ mock.Mock }

func (m *MockApprovalService) ListPending(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockApprovalService) Approve(ctx context.Context, actorID, userID uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, actorID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockApprovalService) Reject(ctx context.Context, actorID, userID uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, actorID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockUserService struct{ mock.Mock }

func (m *MockUserService) ListAll(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, actorID, id uuid.UUID, req services.UpdateProfileRequest) (*models.User, error) {
	args := m.Called(ctx, actorID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) History(ctx context.Context, id uuid.UUID) ([]*models.AuditLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

type MockExportService struct{ mock.Mock }

func (m *MockExportService) ExportUsers(ctx context.Context, format services.ExportFormat) (*services.ExportResult, error) {
	args := m.Called(ctx, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ExportResult), args.Error(1)
}

type MockNotificationService struct{ mock.Mock }

func (m *MockNotificationService) NotifyRegistration(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockNotificationService) NotifyPendingDigest(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationService) ListUnread(ctx context.Context) ([]*models.Notification, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockNotificationService) PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

type MockJobRunner struct{ mock.Mock }

func (m *MockJobRunner) RunNow(name string) error {
	return m.Called(name).Error(0)
}

func (m *MockJobRunner) GetJobStatus() []jobs.JobStatus {
	return m.Called().Get(0).([]jobs.JobStatus)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }
