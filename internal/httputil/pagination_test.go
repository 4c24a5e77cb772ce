package httputil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/allisson/teamvault/internal/httputil"
)

func queryContext(url string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, url, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	const (
		badOffset = "invalid offset parameter: must be a non-negative integer"
		badLimit  = "invalid limit parameter: must be between 1 and 100"
	)

	tests := []struct {
		url    string
		offset int
		limit  int
		err    string
	}{
		{"/items", 0, 50, ""},
		{"/items?offset=10&limit=20", 10, 20, ""},
		{"/items?limit=100", 0, 100, ""},
		{"/items?offset=250", 250, 50, ""},
		{"/items?offset=-1", 0, 0, badOffset},
		{"/items?offset=abc", 0, 0, badOffset},
		{"/items?limit=0", 0, 0, badLimit},
		{"/items?limit=101", 0, 0, badLimit},
		{"/items?offset=5&limit=xyz", 0, 0, badLimit},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			offset, limit, err := httputil.ParsePagination(queryContext(tt.url))
			if tt.err != "" {
				assert.EqualError(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.offset, offset)
			assert.Equal(t, tt.limit, limit)
		})
	}
}

func TestParseBoolQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		url         string
		expected    bool
		expectError bool
	}{
		{"/", false, false},
		{"/?reveal=", false, false},
		{"/?reveal=true", true, false},
		{"/?reveal=1", true, false},
		{"/?reveal=false", false, false},
		{"/?reveal=maybe", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			value, err := httputil.ParseBoolQuery(queryContext(tt.url), "reveal")
			if tt.expectError {
				assert.EqualError(t, err, "invalid reveal parameter: must be a boolean")
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, value)
		})
	}
}
