package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"sipoma/internal/caching"
	"sipoma/internal/logging"
)

// RateLimit caps requests per client IP within a fixed window. If the cache
// is unreachable the request is let through.
func RateLimit(cache caching.CacheService, scope string, limit int, window time.Duration, log logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if limit <= 0 {
				return next(c)
			}

			ctx := c.Request().Context()
			limited, err := cache.IsRateLimited(ctx, scope+":"+c.RealIP(), limit, window)
			if err != nil {
				log.Warn(ctx, "rate limit check failed", "scope", scope, "error", err)
				return next(c)
			}
			if limited {
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, try again later")
			}
			return next(c)
		}
	}
}
