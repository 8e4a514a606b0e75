package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/nhle/too-doo/internal/auth"
	"github.com/nhle/too-doo/internal/notes"
	"github.com/nhle/too-doo/internal/store"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error    string   `json:"error"`
	Snapshot []string `json:"snapshot,omitempty"`
}

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	var reorderErr *notes.ReorderError
	switch {
	case errors.As(err, &reorderErr):
		return http.StatusInternalServerError
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict), errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, store.ErrInvalid),
		errors.Is(err, notes.ErrInvalidItem),
		errors.Is(err, notes.ErrNotList),
		errors.Is(err, notes.ErrInvalidMove):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrOAuthDisabled):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// handleError writes errors returned by handlers and middleware as JSON.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		_ = c.JSON(he.Code, ErrorResponse{Error: msg})
		return
	}

	status := statusFor(err)
	resp := ErrorResponse{Error: err.Error()}
	var reorderErr *notes.ReorderError
	if errors.As(err, &reorderErr) {
		resp.Snapshot = reorderErr.Snapshot
	}

	ctx := c.Request().Context()
	if status >= http.StatusInternalServerError {
		s.logger.Error(ctx, "request failed", zap.String("path", c.Path()), zap.Error(err))
		if reorderErr == nil {
			resp.Error = http.StatusText(status)
		}
	}
	_ = c.JSON(status, resp)
}
