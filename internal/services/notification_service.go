package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"sipoma/internal/common"
	"sipoma/internal/logging"
	"sipoma/internal/models"
	"sipoma/internal/repositories"
)

const SignatureHeader = "X-Sipoma-Signature"

// NotificationService handles all notification-related operations
type NotificationService interface {
	NotifyRegistration(ctx context.Context, user *models.User) error
	NotifyPendingDigest(ctx context.Context) (int, error)
	ListUnread(ctx context.Context) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error)
}

// WebhookConfig points notifications at an optional outbound webhook.
type WebhookConfig struct {
	URL     string
	Secret  string
	Timeout time.Duration
}

type notificationService struct {
	repo       repositories.NotificationRepository
	users      repositories.UserRepository
	webhook    WebhookConfig
	httpClient *http.Client
	log        logging.Logger
	now        func() time.Time
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo repositories.NotificationRepository, users repositories.UserRepository, webhook WebhookConfig, log logging.Logger) NotificationService {
	timeout := webhook.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &notificationService{
		repo:       repo,
		users:      users,
		webhook:    webhook,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With("component", "notifications"),
		now:        time.Now,
	}
}

// NotifyRegistration puts a new registration in the admin inbox. The webhook
// is best-effort and never fails the call.
func (s *notificationService) NotifyRegistration(ctx context.Context, user *models.User) error {
	subject := user.ID
	n := &models.Notification{
		EventType: models.NotificationUserRegistered,
		SubjectID: &subject,
		Message:   fmt.Sprintf("New registration awaiting approval: %s (%s)", user.FullName, user.Email),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	s.deliver(ctx, n)
	return nil
}

// NotifyPendingDigest adds one digest notification when users are waiting
// for approval and returns how many are waiting.
func (s *notificationService) NotifyPendingDigest(ctx context.Context) (int, error) {
	count, err := s.users.CountByStatus(ctx, models.UserStatusPending)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}

	n := &models.Notification{
		EventType: models.NotificationPendingDigest,
		Message:   fmt.Sprintf("%d user(s) awaiting approval", count),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return count, err
	}
	s.deliver(ctx, n)
	return count, nil
}

func (s *notificationService) ListUnread(ctx context.Context) ([]*models.Notification, error) {
	return s.repo.ListUnread(ctx, common.MaxPageLimit)
}

func (s *notificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, id)
}

func (s *notificationService) PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.repo.DeleteReadBefore(ctx, s.now().Add(-olderThan))
}

func (s *notificationService) deliver(ctx context.Context, n *models.Notification) {
	if s.webhook.URL == "" {
		return
	}
	if err := s.sendWebhook(ctx, n); err != nil {
		s.log.Warn(ctx, "webhook delivery failed", "notification_id", n.ID.String(), "error", err)
	}
}

func (s *notificationService) sendWebhook(ctx context.Context, n *models.Notification) error {
	payload := models.WebhookPayload{
		ID:        n.ID.String(),
		Type:      n.EventType,
		Message:   n.Message,
		Timestamp: s.now().UTC(),
	}
	if n.SubjectID != nil {
		payload.SubjectID = n.SubjectID.String()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhook.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "SIPOMA-Webhook/1.0")
	if s.webhook.Secret != "" {
		req.Header.Set(SignatureHeader, "sha256="+SignPayload(s.webhook.Secret, body))
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// SignPayload returns the hex HMAC-SHA256 of body under secret.
func SignPayload(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
