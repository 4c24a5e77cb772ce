// Package httputil holds the JSON error envelope and query helpers shared by the gin handlers.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/teamvault/internal/errors"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// errorMapping ties an error kind to its status and code. An empty message echoes err.Error().
type errorMapping struct {
	kind    error
	status  int
	code    string
	message string
}

// Checked in order; the first kind found in the chain wins.
var errorMappings = []errorMapping{
	{apperrors.ErrForbidden, http.StatusForbidden, "forbidden", "access to this resource is denied"},
	{apperrors.ErrNotFound, http.StatusNotFound, "not_found", "resource not found"},
	{apperrors.ErrConflict, http.StatusConflict, "conflict", ""},
	{apperrors.ErrInvalidInput, http.StatusUnprocessableEntity, "invalid_input", ""},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "a valid bearer token is required"},
}

var internalError = errorMapping{
	status:  http.StatusInternalServerError,
	code:    "internal_error",
	message: "internal server error",
}

func mappingFor(err error) errorMapping {
	for _, m := range errorMappings {
		if apperrors.Is(err, m.kind) {
			return m
		}
	}
	return internalError
}

// HandleErrorGin writes the error envelope for err and logs it. Vault items that are missing
// and items the caller may not see both reach here as ErrForbidden, so the response is the same.
// Errors of no known kind become a 500 without detail.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	m := mappingFor(err)
	message := m.message
	if message == "" {
		message = err.Error()
	}

	if logger != nil {
		level := slog.LevelWarn
		if m.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request failed",
			slog.Int("status_code", m.status),
			slog.String("error_code", m.code),
			slog.Any("error", err),
		)
	}

	c.JSON(m.status, ErrorResponse{Error: m.code, Message: message})
}

// HandleBadRequestGin answers 400 for bodies or parameters that could not be parsed.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: err.Error()})
}

// HandleValidationErrorGin answers 422 for request DTOs that failed validation.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.Any("error", err))
	}
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation_error", Message: err.Error()})
}
