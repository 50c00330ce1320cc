package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"sipoma/internal/common"
	"sipoma/internal/logging"
	"sipoma/internal/models"
)

func TestSessionResolver_Resolve(t *testing.T) {
	userID := uuid.New()
	session := &models.Session{ID: uuid.New(), UserID: userID, Role: models.UserRoleUser}

	tests := []struct {
		name  string
		token string
		setup func(auth *MockAuthService, users *MockUserRepository)
		want  Resolution
	}{
		{
			name:  "no session",
			token: "",
			setup: func(*MockAuthService, *MockUserRepository) {},
			want:  Resolution{Authenticated: false, Route: models.RouteLogin},
		},
		{
			name:  "active session for approved user",
			token: "good",
			setup: func(auth *MockAuthService, users *MockUserRepository) {
				auth.On("GetSession", mock.Anything, "good").Return(session, nil)
				users.On("GetByID", mock.Anything, userID).Return(&models.User{ID: userID, Status: models.UserStatusApproved}, nil)
			},
			want: Resolution{Authenticated: true, Route: models.RouteDashboard},
		},
		{
			name:  "session lookup fails",
			token: "broken",
			setup: func(auth *MockAuthService, users *MockUserRepository) {
				auth.On("GetSession", mock.Anything, "broken").Return(nil, errors.New("redis: i/o timeout"))
			},
			want: Resolution{Authenticated: false, Route: models.RouteLogin},
		},
		{
			name:  "session gone",
			token: "stale",
			setup: func(auth *MockAuthService, users *MockUserRepository) {
				auth.On("GetSession", mock.Anything, "stale").Return(nil, common.ErrSessionNotFound)
			},
			want: Resolution{Authenticated: false, Route: models.RouteLogin},
		},
		{
			name:  "user no longer approved",
			token: "good",
			setup: func(auth *MockAuthService, users *MockUserRepository) {
				auth.On("GetSession", mock.Anything, "good").Return(session, nil)
				users.On("GetByID", mock.Anything, userID).Return(&models.User{ID: userID, Status: models.UserStatusRejected}, nil)
			},
			want: Resolution{Authenticated: false, Route: models.RouteLogin},
		},
		{
			name:  "user lookup fails",
			token: "good",
			setup: func(auth *MockAuthService, users *MockUserRepository) {
				auth.On("GetSession", mock.Anything, "good").Return(session, nil)
				users.On("GetByID", mock.Anything, userID).Return(nil, errors.New("pool closed"))
			},
			want: Resolution{Authenticated: false, Route: models.RouteLogin},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := new(MockAuthService)
			users := new(MockUserRepository)
			tt.setup(auth, users)

			resolver := NewSessionResolver(auth, users, logging.Discard())
			got := resolver.Resolve(context.Background(), SessionContext{Token: tt.token})

			assert.Equal(t, tt.want, got)
			auth.AssertExpectations(t)
			users.AssertExpectations(t)
		})
	}
}
