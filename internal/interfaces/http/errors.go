package http

import (
	"errors"
	"fmt"
	stdhttp "net/http"

	"github.com/labstack/echo/v4"

	"account-service/internal/adapters/http/middleware"
	"account-service/internal/domain"
	"account-service/internal/ports"
)

var errInvalidPayload = fmt.Errorf("%w: invalid payload", domain.ErrInvalidInput)

type errorBody struct {
	Error string `json:"error"`
}

// handleError writes the response for err. Credential failures always get
// the same message whatever the underlying reason.
func handleError(c echo.Context, logger ports.Logger, err error) error {
	status := statusOf(err)
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg = fmt.Sprint(he.Message)
	}
	switch status {
	case stdhttp.StatusUnauthorized:
		msg = middleware.MsgUnauthenticated
	case stdhttp.StatusForbidden:
		msg = middleware.MsgForbidden
	case stdhttp.StatusInternalServerError:
		logger.Error(c.Request().Context(), "request failed", "path", c.Path(), "error", err)
		msg = "internal error"
	}
	return c.JSON(status, errorBody{Error: msg})
}

// ErrorHandler is installed as the echo HTTPErrorHandler so errors returned
// by middleware and handlers share one mapping.
func ErrorHandler(logger ports.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if werr := handleError(c, logger, err); werr != nil {
			logger.Error(c.Request().Context(), "failed to write error response", "error", werr)
		}
	}
}

func statusOf(err error) int {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case errors.Is(err, domain.ErrUnauthenticated):
		return stdhttp.StatusUnauthorized
	case errors.Is(err, domain.ErrPermissionDeny):
		return stdhttp.StatusForbidden
	case errors.Is(err, domain.ErrInvalidInput):
		return stdhttp.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return stdhttp.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return stdhttp.StatusConflict
	default:
		return stdhttp.StatusInternalServerError
	}
}
