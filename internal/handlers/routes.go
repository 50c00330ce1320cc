package handlers

import (
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"sipoma/internal/middleware"
	"sipoma/internal/models"
)

// Router groups the handlers and the middleware that guards them.
type Router struct {
	Auth          *AuthHandlers
	Approvals     *ApprovalHandlers
	Users         *UserHandlers
	Notifications *NotificationHandlers
	Health        *HealthHandlers
	// Jobs is nil when background jobs are disabled.
	Jobs *JobHandlers

	SessionAuth   echo.MiddlewareFunc
	RegisterLimit echo.MiddlewareFunc
	LoginLimit    echo.MiddlewareFunc
}

// Register mounts every route on e.
func (r *Router) Register(e *echo.Echo) {
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	e.GET("/health", r.Health.LivenessCheck)
	e.GET("/health/ready", r.Health.ReadinessCheck)

	api := e.Group("/api", middleware.VersionHeader(middleware.APIVersion))
	api.POST("/register", r.Auth.Register, optional(r.RegisterLimit)...)
	api.POST("/login", r.Auth.Login, optional(r.LoginLimit)...)
	api.POST("/logout", r.Auth.Logout)
	api.GET("/session", r.Auth.Session)

	api.GET("/me", r.Auth.Me, r.SessionAuth)

	admin := api.Group("/admin", r.SessionAuth, middleware.RequireRole(models.UserRoleAdmin))
	admin.GET("/approvals", r.Approvals.ListPending)
	admin.POST("/approvals/:id/approve", r.Approvals.Approve)
	admin.POST("/approvals/:id/reject", r.Approvals.Reject)

	admin.GET("/users", r.Users.ListUsers)
	admin.POST("/users/export", r.Users.ExportUsers)
	admin.GET("/users/:id", r.Users.GetUser)
	admin.PUT("/users/:id", r.Users.UpdateUser)
	admin.GET("/users/:id/history", r.Users.GetUserHistory)

	admin.GET("/notifications", r.Notifications.ListUnread)
	admin.POST("/notifications/:id/read", r.Notifications.MarkRead)

	if r.Jobs != nil {
		admin.GET("/jobs", r.Jobs.ListJobs)
		admin.POST("/jobs/:name/run", r.Jobs.RunJob)
	}
}

func optional(m echo.MiddlewareFunc) []echo.MiddlewareFunc {
	if m == nil {
		return nil
	}
	return []echo.MiddlewareFunc{m}
}
