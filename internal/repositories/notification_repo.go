package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sipoma/internal/common"
	"sipoma/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListUnread(ctx context.Context, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type notificationRepo struct {
	db DBTX
}

func NewNotificationRepo(db DBTX) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}

	query := `
		INSERT INTO admin_notifications (id, event_type, subject_id, message, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at
	`
	if err := r.db.QueryRow(ctx, query, n.ID, string(n.EventType), n.SubjectID, n.Message).Scan(&n.CreatedAt); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepo) ListUnread(ctx context.Context, limit int) ([]*models.Notification, error) {
	query := `
		SELECT id, event_type, subject_id, message, read_at, created_at
		FROM admin_notifications
		WHERE read_at IS NULL
		ORDER BY created_at DESC, id ASC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*models.Notification{}
	for rows.Next() {
		n := &models.Notification{}
		var eventType string
		if err := rows.Scan(&n.ID, &eventType, &n.SubjectID, &n.Message, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.EventType = models.NotificationEvent(eventType)
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead is idempotent: an already read notification keeps its read_at.
func (r *notificationRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE admin_notifications SET read_at = COALESCE(read_at, NOW()) WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *notificationRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM admin_notifications WHERE read_at IS NOT NULL AND read_at < $1`
	tag, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}
