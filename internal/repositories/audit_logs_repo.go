package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"sipoma/internal/models"
)

type AuditLogsRepository interface {
	// Create a new audit log entry
	Create(ctx context.Context, auditLog *models.AuditLog) error

	// Get audit logs for a specific table and record, newest first
	ListByRecord(ctx context.Context, tableName, recordID string, limit int) ([]*models.AuditLog, error)
}

type auditLogsRepo struct {
	db DBTX
}

func NewAuditLogsRepo(db DBTX) AuditLogsRepository {
	return &auditLogsRepo{db: db}
}

func (r *auditLogsRepo) Create(ctx context.Context, auditLog *models.AuditLog) error {
	if auditLog.ID == uuid.Nil {
		auditLog.ID = uuid.New()
	}

	// Marshal JSONB fields
	var newValuesBytes, oldValuesBytes []byte
	var err error

	if auditLog.NewValues != nil {
		newValuesBytes, err = json.Marshal(auditLog.NewValues)
		if err != nil {
			return fmt.Errorf("failed to marshal new_values: %w", err)
		}
	}

	if auditLog.OldValues != nil {
		oldValuesBytes, err = json.Marshal(auditLog.OldValues)
		if err != nil {
			return fmt.Errorf("failed to marshal old_values: %w", err)
		}
	}

	query := `
		INSERT INTO audit_logs (id, table_name, record_id, action, new_values, old_values, changed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`
	err = r.db.QueryRow(ctx, query,
		auditLog.ID,
		auditLog.TableName,
		auditLog.RecordID,
		auditLog.Action,
		newValuesBytes,
		oldValuesBytes,
		auditLog.ChangedBy,
	).Scan(&auditLog.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

func (r *auditLogsRepo) ListByRecord(ctx context.Context, tableName, recordID string, limit int) ([]*models.AuditLog, error) {
	query := `
		SELECT id, table_name, record_id, action, new_values, old_values, changed_by, created_at
		FROM audit_logs
		WHERE table_name = $1 AND record_id = $2
		ORDER BY created_at DESC, id ASC
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, tableName, recordID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	logs := []*models.AuditLog{}
	for rows.Next() {
		auditLog := &models.AuditLog{}
		var newValuesBytes, oldValuesBytes []byte
		err := rows.Scan(
			&auditLog.ID,
			&auditLog.TableName,
			&auditLog.RecordID,
			&auditLog.Action,
			&newValuesBytes,
			&oldValuesBytes,
			&auditLog.ChangedBy,
			&auditLog.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}

		if len(newValuesBytes) > 0 {
			if err := json.Unmarshal(newValuesBytes, &auditLog.NewValues); err != nil {
				return nil, fmt.Errorf("failed to unmarshal new_values: %w", err)
			}
		}
		if len(oldValuesBytes) > 0 {
			if err := json.Unmarshal(oldValuesBytes, &auditLog.OldValues); err != nil {
				return nil, fmt.Errorf("failed to unmarshal old_values: %w", err)
			}
		}
		logs = append(logs, auditLog)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit logs: %w", err)
	}
	return logs, nil
}
