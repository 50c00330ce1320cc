// Package testhelpers provides in-memory stand-ins for the stores so that
// service and handler tests run without PostgreSQL or Redis.
package testhelpers

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sipoma/internal/common"
	"sipoma/internal/models"
)

// clock hands out strictly increasing timestamps so creation order is stable.
type clock struct {
	mu   sync.Mutex
	base time.Time
	tick int
}

func (c *clock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tick++
	return c.base.Add(time.Duration(c.tick) * time.Millisecond)
}

// MemoryUserRepository implements repositories.UserRepository.
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
	clock clock

	// CreateErr, when set, is returned by Create without storing anything.
	CreateErr error
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[uuid.UUID]*models.User),
		clock: clock{base: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	if r.CreateErr != nil {
		return r.CreateErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(user.Email)
	for _, existing := range r.users {
		if existing.Email == email {
			return common.ErrEmailTaken
		}
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := r.clock.next()
	user.Email = email
	user.Version = 1
	user.CreatedAt, user.UpdatedAt = now, now
	r.users[user.ID] = copyUser(user)
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return copyUser(u), nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email = strings.ToLower(email)
	for _, u := range r.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *MemoryUserRepository) sorted(keep func(*models.User) bool) []*models.User {
	out := []*models.User{}
	for _, u := range r.users {
		if keep(u) {
			out = append(out, copyUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *MemoryUserRepository) ListByStatus(_ context.Context, status models.UserStatus) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(u *models.User) bool { return u.Status == status }), nil
}

func (r *MemoryUserRepository) List(_ context.Context, limit, offset int) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := r.sorted(func(*models.User) bool { return true })
	if offset >= len(all) {
		return []*models.User{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *MemoryUserRepository) CountByStatus(_ context.Context, status models.UserStatus) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sorted(func(u *models.User) bool { return u.Status == status })), nil
}

func (r *MemoryUserRepository) UpdateProfile(_ context.Context, id uuid.UUID, fullName, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	email = strings.ToLower(email)
	for otherID, other := range r.users {
		if otherID != id && other.Email == email {
			return nil, common.ErrEmailTaken
		}
	}
	u.FullName, u.Email = fullName, email
	u.Version++
	u.UpdatedAt = r.clock.next()
	return copyUser(u), nil
}

func (r *MemoryUserRepository) TransitionStatus(_ context.Context, id uuid.UUID, from, to models.UserStatus) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	if u.Status != from {
		return nil, &common.InvalidStateTransitionError{UserID: id, From: string(u.Status), To: string(to)}
	}
	u.Status = to
	u.Version++
	u.UpdatedAt = r.clock.next()
	return copyUser(u), nil
}

// Count returns the number of stored users.
func (r *MemoryUserRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// MemoryAuditLogsRepository implements repositories.AuditLogsRepository.
type MemoryAuditLogsRepository struct {
	mu      sync.Mutex
	entries []*models.AuditLog
	clock   clock
}

func NewMemoryAuditLogsRepository() *MemoryAuditLogsRepository {
	return &MemoryAuditLogsRepository{clock: clock{base: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}}
}

func (r *MemoryAuditLogsRepository) Create(_ context.Context, entry *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = r.clock.next()
	c := *entry
	r.entries = append(r.entries, &c)
	return nil
}

func (r *MemoryAuditLogsRepository) ListByRecord(_ context.Context, tableName, recordID string, limit int) ([]*models.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []*models.AuditLog{}
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := r.entries[i]
		if e.TableName == tableName && e.RecordID == recordID {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

// Actions returns the recorded actions in insertion order.
func (r *MemoryAuditLogsRepository) Actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	actions := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		actions = append(actions, e.Action)
	}
	return actions
}

// MemoryNotificationRepository implements repositories.NotificationRepository.
type MemoryNotificationRepository struct {
	mu            sync.Mutex
	notifications []*models.Notification
	clock         clock
}

func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{clock: clock{base: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}}
}

func (r *MemoryNotificationRepository) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = r.clock.next()
	c := *n
	r.notifications = append(r.notifications, &c)
	return nil
}

func (r *MemoryNotificationRepository) ListUnread(_ context.Context, limit int) ([]*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []*models.Notification{}
	for i := len(r.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		if n := r.notifications[i]; n.ReadAt == nil {
			c := *n
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *MemoryNotificationRepository) MarkRead(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id {
			if n.ReadAt == nil {
				now := r.clock.next()
				n.ReadAt = &now
			}
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *MemoryNotificationRepository) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.notifications[:0]
	var deleted int64
	for _, n := range r.notifications {
		if n.ReadAt != nil && n.ReadAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	r.notifications = kept
	return deleted, nil
}

// MemoryCache implements caching.CacheService.
type MemoryCache struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*models.Session
	counters map[string]int

	// GetErr and DeleteErr simulate an unreachable cache.
	GetErr    error
	DeleteErr error
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		sessions: make(map[uuid.UUID]*models.Session),
		counters: make(map[string]int),
	}
}

func (c *MemoryCache) SetSession(_ context.Context, session *models.Session, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := *session
	c.sessions[session.ID] = &s
	return nil
}

func (c *MemoryCache) GetSession(_ context.Context, sessionID uuid.UUID) (*models.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.GetErr != nil {
		return nil, c.GetErr
	}
	s, ok := c.sessions[sessionID]
	if !ok {
		return nil, common.ErrSessionNotFound
	}
	out := *s
	return &out, nil
}

func (c *MemoryCache) DeleteSession(_ context.Context, sessionID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.DeleteErr != nil {
		return c.DeleteErr
	}
	delete(c.sessions, sessionID)
	return nil
}

func (c *MemoryCache) IsRateLimited(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[key]++
	return c.counters[key] > limit, nil
}

func (c *MemoryCache) Ping(context.Context) error { return nil }

func (c *MemoryCache) Close() error { return nil }

// SessionCount returns the number of live sessions.
func (c *MemoryCache) SessionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}
