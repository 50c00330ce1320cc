package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"sipoma/internal/common"
	"sipoma/internal/logging"
	"sipoma/internal/models"
	"sipoma/internal/repositories"
)

const historyLimit = 100

// UpdateProfileRequest carries the editable profile fields. Status is not
// editable here.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty"`
	Email    *string `json:"email,omitempty"`
}

type UserService interface {
	ListAll(ctx context.Context, limit, offset int) ([]*models.User, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, actorID, id uuid.UUID, req UpdateProfileRequest) (*models.User, error)
	History(ctx context.Context, id uuid.UUID) ([]*models.AuditLog, error)
}

type userService struct {
	users repositories.UserRepository
	audit AuditLogsService
	log   logging.Logger
}

func NewUserService(users repositories.UserRepository, audit AuditLogsService, log logging.Logger) UserService {
	return &userService{users: users, audit: audit, log: log.With("component", "users")}
}

// ListAll returns users of every status, oldest first.
func (s *userService) ListAll(ctx context.Context, limit, offset int) ([]*models.User, error) {
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, err
	}
	return s.users.List(ctx, limit, offset)
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *userService) UpdateProfile(ctx context.Context, actorID, id uuid.UUID, req UpdateProfileRequest) (*models.User, error) {
	if req.FullName == nil && req.Email == nil {
		return nil, common.NewValidationError("profile", "must include full_name or email")
	}

	current, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fullName, email := current.FullName, current.Email
	oldValues, newValues := models.JSONB{}, models.JSONB{}

	if req.FullName != nil {
		if err := validateFullName(*req.FullName); err != nil {
			return nil, err
		}
		fullName = strings.TrimSpace(*req.FullName)
		oldValues["full_name"], newValues["full_name"] = current.FullName, fullName
	}
	if req.Email != nil {
		if err := common.ValidateEmail(*req.Email); err != nil {
			return nil, err
		}
		email = common.NormalizeEmail(*req.Email)
		oldValues["email"], newValues["email"] = current.Email, email
	}

	updated, err := s.users.UpdateProfile(ctx, id, fullName, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, common.NewStoreError("update user", err)
	}

	actor := actorID
	if err := s.audit.LogActivity(ctx, id, models.ActionUpdateProfile, &actor, oldValues, newValues); err != nil {
		s.log.Warn(ctx, "audit write failed", "user_id", id.String(), "error", err)
	}
	return updated, nil
}

// History returns the user's audit trail, newest first.
func (s *userService) History(ctx context.Context, id uuid.UUID) ([]*models.AuditLog, error) {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.audit.History(ctx, id, historyLimit)
}
