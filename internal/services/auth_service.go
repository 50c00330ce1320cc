package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"sipoma/internal/caching"
	"sipoma/internal/common"
	"sipoma/internal/logging"
	"sipoma/internal/models"
	"sipoma/internal/repositories"
)

const tokenIssuer = "sipoma-auth"

// AuthService signs users in and manages their sessions.
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*SignInResult, error)
	GetSession(ctx context.Context, token string) (*models.Session, error)
	SignOut(ctx context.Context, token string) error
}

// SignInResult is the outcome of a successful sign-in.
type SignInResult struct {
	Token   models.TokenResponse
	User    *models.User
	Session *models.Session
}

// SessionClaims are the JWT claims of a session token. ID is the session ID
// and Subject the user ID.
type SessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	users      repositories.UserRepository
	cache      caching.CacheService
	jwtSecret  []byte
	sessionTTL time.Duration
	log        logging.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(users repositories.UserRepository, cache caching.CacheService, jwtSecret string, sessionTTL time.Duration, log logging.Logger) AuthService {
	return &authService{
		users:      users,
		cache:      cache,
		jwtSecret:  []byte(jwtSecret),
		sessionTTL: sessionTTL,
		log:        log.With("component", "auth"),
		now:        time.Now,
	}
}

// HashPassword hashes a password with bcrypt's default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// dummyHash keeps sign-in timing similar for unknown emails.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("sipoma-dummy-password"), bcrypt.MinCost)

func (s *authService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	user, err := s.users.GetByEmail(ctx, common.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}

	switch user.Status {
	case models.UserStatusPending:
		return nil, common.ErrAccountPending
	case models.UserStatusRejected:
		return nil, common.ErrAccountRejected
	}

	now := s.now().UTC()
	session := &models.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.cache.SetSession(ctx, session, s.sessionTTL); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	claims := SessionClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        session.ID.String(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %w", err)
	}

	s.log.Info(ctx, "user signed in", "user_id", user.ID.String(), "session_id", session.ID.String())

	return &SignInResult{
		Token: models.TokenResponse{
			AccessToken: signed,
			TokenType:   "Bearer",
			ExpiresIn:   int(s.sessionTTL.Seconds()),
			SessionID:   session.ID.String(),
			IssuedAt:    now,
		},
		User:    user,
		Session: session,
	}, nil
}

func (s *authService) parseToken(token string, opts ...jwt.ParserOption) (*SessionClaims, uuid.UUID, error) {
	opts = append(opts,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, uuid.Nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	sessionID, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%w: bad session id", common.ErrInvalidToken)
	}
	return claims, sessionID, nil
}

// GetSession returns the live session behind token.
func (s *authService) GetSession(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, common.ErrSessionNotFound
	}

	claims, sessionID, err := s.parseToken(token)
	if err != nil {
		return nil, err
	}

	session, err := s.cache.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID.String() != claims.Subject {
		return nil, fmt.Errorf("%w: subject mismatch", common.ErrInvalidToken)
	}
	if session.Expired(s.now()) {
		return nil, common.ErrSessionNotFound
	}
	return session, nil
}

// SignOut deletes the session behind token. Expired tokens are accepted so
// that a stale cookie can still be cleared.
func (s *authService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return common.ErrSessionNotFound
	}

	_, sessionID, err := s.parseToken(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return err
	}

	if err := s.cache.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
