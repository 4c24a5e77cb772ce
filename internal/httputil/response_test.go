package httputil

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/teamvault/internal/errors"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestHandleErrorGin(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedError  string
	}{
		{"not found", apperrors.Wrap(apperrors.ErrNotFound, "group not found"), http.StatusNotFound, "not_found"},
		{"conflict", apperrors.Wrap(apperrors.ErrConflict, "duplicate member"), http.StatusConflict, "conflict"},
		{"invalid input", apperrors.ErrInvalidInput, http.StatusUnprocessableEntity, "invalid_input"},
		{"unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"forbidden", apperrors.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"internal", assert.AnError, http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext()
			var logs bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&logs, nil))

			HandleErrorGin(c, tt.err, logger)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.expectedError, response.Error)
			assert.Contains(t, logs.String(), "request failed")
		})
	}
}

func TestHandleErrorGin_InternalDetailsHidden(t *testing.T) {
	c, w := newTestContext()

	HandleErrorGin(c, apperrors.New("pq: connection refused to 10.0.0.5"), nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}

func TestHandleErrorGin_NilError(t *testing.T) {
	c, w := newTestContext()
	HandleErrorGin(c, nil, nil)
	assert.Equal(t, 0, w.Body.Len())
}

func TestHandleBadRequestGin(t *testing.T) {
	c, w := newTestContext()
	HandleBadRequestGin(c, apperrors.New("invalid json"), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"bad_request","message":"invalid json"}`, w.Body.String())
}

func TestHandleValidationErrorGin(t *testing.T) {
	c, w := newTestContext()
	HandleValidationErrorGin(c, apperrors.New("username: cannot be blank"), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"error":"validation_error","message":"username: cannot be blank"}`, w.Body.String())
}

func TestHandleErrorGin_Messages(t *testing.T) {
	t.Run("conflict echoes the error", func(t *testing.T) {
		c, w := newTestContext()
		HandleErrorGin(c, apperrors.Wrap(apperrors.ErrConflict, "member already exists"), nil)
		assert.JSONEq(t, `{"error":"conflict","message":"member already exists: conflict"}`, w.Body.String())
	})

	t.Run("forbidden hides the cause", func(t *testing.T) {
		c, w := newTestContext()
		HandleErrorGin(c, apperrors.Wrap(apperrors.ErrForbidden, "vault item not found"), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.NotContains(t, w.Body.String(), "not found")
	})
}
