package web

// errors.go turns errors into JSON responses.
//
// The technical error is logged with the request ID; the client gets the
// mapped user message from core.MapError and a status code chosen by statusFor.

import (
	"context"
	"errors"
	"net/http"

	"github.com/JonMunkholm/sheetmerge/internal/core"
	"github.com/JonMunkholm/sheetmerge/internal/logging"
	"github.com/JonMunkholm/sheetmerge/internal/merge"
	"github.com/JonMunkholm/sheetmerge/internal/source"
)

// errNoFile is returned when a multipart request has no "file" part.
var errNoFile = errors.New("no file provided")

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes the mapped user message with status.
// A status of 0 means statusFor(err).
func respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	if status == 0 {
		status = statusFor(err)
	}
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	writeJSON(w, status, ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// statusFor maps known errors to HTTP status codes.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, source.ErrSourceNotFound), errors.Is(err, core.ErrImportNotFound):
		return http.StatusNotFound
	case errors.Is(err, source.ErrUnsupportedFormat),
		errors.Is(err, source.ErrFileTooLarge),
		errors.Is(err, source.ErrNoSheet),
		errors.Is(err, errNoFile),
		errors.As(err, &maxBytes):
		return http.StatusBadRequest
	case errors.Is(err, merge.ErrUnresolvableKey):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
