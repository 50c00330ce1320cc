package services

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"sipoma/internal/common"
	"sipoma/internal/logging"
	"sipoma/internal/models"
	"sipoma/internal/repositories"
	"sipoma/internal/tracing"
)

// ApprovalService is the only writer of user status.
type ApprovalService interface {
	ListPending(ctx context.Context) ([]*models.User, error)
	Approve(ctx context.Context, actorID, userID uuid.UUID) (*models.User, error)
	Reject(ctx context.Context, actorID, userID uuid.UUID) (*models.User, error)
}

type approvalService struct {
	users repositories.UserRepository
	audit AuditLogsService
	log   logging.Logger
}

func NewApprovalService(users repositories.UserRepository, audit AuditLogsService, log logging.Logger) ApprovalService {
	return &approvalService{users: users, audit: audit, log: log.With("component", "approval")}
}

// ListPending returns pending users oldest first.
func (s *approvalService) ListPending(ctx context.Context) ([]*models.User, error) {
	return s.users.ListByStatus(ctx, models.UserStatusPending)
}

func (s *approvalService) Approve(ctx context.Context, actorID, userID uuid.UUID) (*models.User, error) {
	return s.transition(ctx, actorID, userID, models.UserStatusApproved, models.ActionApprove)
}

func (s *approvalService) Reject(ctx context.Context, actorID, userID uuid.UUID) (*models.User, error) {
	return s.transition(ctx, actorID, userID, models.UserStatusRejected, models.ActionReject)
}

func (s *approvalService) transition(ctx context.Context, actorID, userID uuid.UUID, to models.UserStatus, action string) (user *models.User, err error) {
	ctx, span := tracing.StartSpan(ctx, "approval.transition",
		attribute.String("user.id", userID.String()),
		attribute.String("status.to", string(to)),
	)
	defer func() { span.End(err) }()

	current, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(current.Status, to) {
		return nil, &common.InvalidStateTransitionError{UserID: userID, From: string(current.Status), To: string(to)}
	}

	// The store only applies the update if the status is still current.Status.
	user, err = s.users.TransitionStatus(ctx, userID, current.Status, to)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user status changed", "user_id", userID.String(), "actor_id", actorID.String(),
		"from", string(current.Status), "to", string(to))

	actor := actorID
	if err := s.audit.LogActivity(ctx, userID, action, &actor,
		models.JSONB{"status": string(current.Status)},
		models.JSONB{"status": string(to)},
	); err != nil {
		s.log.Warn(ctx, "audit write failed", "user_id", userID.String(), "error", err)
	}

	return user, nil
}
