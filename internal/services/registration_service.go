package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"

	"sipoma/internal/common"
	"sipoma/internal/logging"
	"sipoma/internal/models"
	"sipoma/internal/repositories"
	"sipoma/internal/tracing"
)

const (
	MinPasswordLength = 6
	MaxPasswordBytes  = 72 // bcrypt input limit
	MaxFullNameLength = 200
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// RegistrationService creates pending accounts.
type RegistrationService interface {
	Register(ctx context.Context, req RegisterRequest) (*models.User, error)
}

type registrationService struct {
	users    repositories.UserRepository
	audit    AuditLogsService
	notifier NotificationService
	log      logging.Logger
}

func NewRegistrationService(users repositories.UserRepository, audit AuditLogsService, notifier NotificationService, log logging.Logger) RegistrationService {
	return &registrationService{
		users:    users,
		audit:    audit,
		notifier: notifier,
		log:      log.With("component", "registration"),
	}
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return common.NewValidationError("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	if len(password) > MaxPasswordBytes {
		return common.NewValidationError("password", fmt.Sprintf("cannot exceed %d bytes", MaxPasswordBytes))
	}
	return nil
}

func validateFullName(fullName string) error {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return common.NewValidationError("full_name", "is required")
	}
	if utf8.RuneCountInString(fullName) > MaxFullNameLength {
		return common.NewValidationError("full_name", fmt.Sprintf("cannot exceed %d characters", MaxFullNameLength))
	}
	return nil
}

func (r RegisterRequest) Validate() error {
	if err := common.ValidateEmail(r.Email); err != nil {
		return err
	}
	if err := validatePassword(r.Password); err != nil {
		return err
	}
	return validateFullName(r.FullName)
}

// Register stores a new pending user. Audit and admin notification happen
// after the insert and their failures are only logged.
func (s *registrationService) Register(ctx context.Context, req RegisterRequest) (user *models.User, err error) {
	ctx, span := tracing.StartSpan(ctx, "registration.register")
	defer func() { span.End(err) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user = &models.User{
		Email:        common.NormalizeEmail(req.Email),
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		Status:       models.UserStatusPending,
		Role:         models.UserRoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, common.NewStoreError("create user", err)
	}

	span.SetAttributes(attribute.String("user.id", user.ID.String()))
	s.log.Info(ctx, "user registered", "user_id", user.ID.String())

	newValues := models.JSONB{"email": user.Email, "full_name": user.FullName, "status": string(user.Status)}
	if err := s.audit.LogActivity(ctx, user.ID, models.ActionRegister, nil, nil, newValues); err != nil {
		s.log.Warn(ctx, "audit write failed", "user_id", user.ID.String(), "error", err)
	}
	if err := s.notifier.NotifyRegistration(ctx, user); err != nil {
		s.log.Warn(ctx, "admin notification failed", "user_id", user.ID.String(), "error", err)
	}

	return user, nil
}
