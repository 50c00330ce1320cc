package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"sipoma/internal/common"
	"sipoma/internal/models"
)

const keyPrefix = "sipoma:"

type CacheService interface {
	// Session management
	SetSession(ctx context.Context, session *models.Session, ttl time.Duration) error
	GetSession(ctx context.Context, sessionID uuid.UUID) (*models.Session, error)
	DeleteSession(ctx context.Context, sessionID uuid.UUID) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	Ping(ctx context.Context) error
	Close() error
}

// redisClient is the subset of *redis.Client the cache needs.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

type redisCacheService struct {
	client redisClient
}

// NewRedisClient builds a client, accepting either host:port or a
// redis:// / rediss:// URL. Credentials and DB in the URL win over the
// separate arguments.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	if !strings.Contains(addr, "://") {
		return redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}), nil
	}

	opts, err := redis.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if opts.Password == "" {
		opts.Password = password
	}
	if opts.DB == 0 {
		opts.DB = db
	}
	return redis.NewClient(opts), nil
}

func NewRedisCacheService(client redisClient) CacheService {
	return &redisCacheService{client: client}
}

func sessionKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("%ssession:%s", keyPrefix, sessionID.String())
}

func (r *redisCacheService) SetSession(ctx context.Context, session *models.Session, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return r.client.Set(ctx, sessionKey(session.ID), data, ttl).Err()
}

// GetSession returns common.ErrSessionNotFound when the key is absent or expired.
func (r *redisCacheService) GetSession(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

func (r *redisCacheService) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	return r.client.Del(ctx, sessionKey(sessionID)).Err()
}

// IsRateLimited counts a hit against key and reports whether it is over limit
// within the current fixed window.
func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := fmt.Sprintf("%sratelimit:%s", keyPrefix, key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, err
	}

	// Set expiry on first request
	if count == 1 {
		if err := r.client.Expire(ctx, cacheKey, window).Err(); err != nil {
			return true, err
		}
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisCacheService) Close() error {
	return r.client.Close()
}
