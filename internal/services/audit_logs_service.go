package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"sipoma/internal/models"
	"sipoma/internal/repositories"
)

const usersTable = "users"

// AuditLogsService records account changes and reads them back.
type AuditLogsService interface {
	LogActivity(ctx context.Context, userID uuid.UUID, action string, changedBy *uuid.UUID, oldValues, newValues models.JSONB) error
	History(ctx context.Context, userID uuid.UUID, limit int) ([]*models.AuditLog, error)
}

type auditLogsService struct {
	repo repositories.AuditLogsRepository
}

func NewAuditLogsService(repo repositories.AuditLogsRepository) AuditLogsService {
	return &auditLogsService{repo: repo}
}

func (s *auditLogsService) LogActivity(ctx context.Context, userID uuid.UUID, action string, changedBy *uuid.UUID, oldValues, newValues models.JSONB) error {
	entry := &models.AuditLog{
		TableName: usersTable,
		RecordID:  userID.String(),
		Action:    action,
		OldValues: oldValues,
		NewValues: newValues,
		ChangedBy: changedBy,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to record %s for user %s: %w", action, userID, err)
	}
	return nil
}

func (s *auditLogsService) History(ctx context.Context, userID uuid.UUID, limit int) ([]*models.AuditLog, error) {
	return s.repo.ListByRecord(ctx, usersTable, userID.String(), limit)
}
