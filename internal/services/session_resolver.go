package services

import (
	"context"

	"sipoma/internal/common"
	"sipoma/internal/logging"
	"sipoma/internal/models"
	"sipoma/internal/repositories"
)

// SessionContext carries the caller's credentials into the resolver. The
// handler extracts Token from the Authorization header or session cookie.
type SessionContext struct {
	Token string
}

// Resolution tells the front end where to go next.
type Resolution struct {
	Authenticated bool   `json:"authenticated"`
	Route         string `json:"redirect"`
}

// SessionResolver decides the initial view from the current session. It is
// advisory: protected endpoints authorize every request on their own.
type SessionResolver interface {
	Resolve(ctx context.Context, sc SessionContext) Resolution
}

type sessionResolver struct {
	auth  AuthService
	users repositories.UserRepository
	log   logging.Logger
}

func NewSessionResolver(auth AuthService, users repositories.UserRepository, log logging.Logger) SessionResolver {
	return &sessionResolver{auth: auth, users: users, log: log.With("component", "session_resolver")}
}

var loginResolution = Resolution{Authenticated: false, Route: models.RouteLogin}

// Resolve fails closed: any error routes to login.
func (r *sessionResolver) Resolve(ctx context.Context, sc SessionContext) Resolution {
	if sc.Token == "" {
		return loginResolution
	}

	session, err := r.auth.GetSession(ctx, sc.Token)
	if err != nil {
		resErr := &common.SessionResolutionError{Err: err}
		r.log.Warn(ctx, "session check failed", "error", resErr)
		return loginResolution
	}

	user, err := r.users.GetByID(ctx, session.UserID)
	if err != nil {
		r.log.Warn(ctx, "session user lookup failed", "user_id", session.UserID.String(), "error", &common.SessionResolutionError{Err: err})
		return loginResolution
	}
	if user.Status != models.UserStatusApproved {
		r.log.Info(ctx, "session user not approved", "user_id", user.ID.String(), "status", string(user.Status))
		return loginResolution
	}

	return Resolution{Authenticated: true, Route: models.RouteDashboard}
}
