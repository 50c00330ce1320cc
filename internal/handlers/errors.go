package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"sipoma/internal/common"
	"sipoma/internal/logging"
)

const internalErrorMessage = "internal server error"

// httpError maps a service error onto an HTTP error. rejectedStatus is the
// status used when the store refused the write for a known reason, which
// differs between registration (400) and profile edits (409).
func httpError(err error, rejectedStatus int) *echo.HTTPError {
	var (
		httpErr       *echo.HTTPError
		validationErr *common.ValidationError
		storeErr      *common.StoreError
	)

	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.As(err, &validationErr):
		return echo.NewHTTPError(http.StatusBadRequest, validationErr.Error()).SetInternal(err)
	case errors.Is(err, common.ErrInvalidStateTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error()).SetInternal(err)
	case errors.Is(err, common.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found").SetInternal(err)
	case errors.Is(err, common.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error()).SetInternal(err)
	case errors.Is(err, common.ErrAccountPending), errors.Is(err, common.ErrAccountRejected):
		return echo.NewHTTPError(http.StatusForbidden, err.Error()).SetInternal(err)
	case errors.As(err, &storeErr) && storeErr.Rejected():
		return echo.NewHTTPError(rejectedStatus, storeErr.Error()).SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, internalErrorMessage).SetInternal(err)
	}
}

// bindError is returned when the request body cannot be decoded.
func bindError(err error) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
}

// ErrorHandler renders every failed request as {"error": "<message>"}.
func ErrorHandler(log logging.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		he := httpError(err, http.StatusBadRequest)
		msg := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && m != "" {
			msg = m
		}

		ctx := c.Request().Context()
		if he.Code >= http.StatusInternalServerError {
			log.Error(ctx, "request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", he.Code,
				"error", err,
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(he.Code)
		} else {
			err = c.JSON(he.Code, common.ErrorResponse{Error: msg})
		}
		if err != nil {
			log.Warn(ctx, "failed to write error response", "error", err)
		}
	}
}
