package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantTag  string
	}{
		{"validation", NewValidationError("title", "제목을 입력해주세요"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"wrapped validation", fmt.Errorf("submit: %w", NewValidationError("tobe", "x")), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"no exportable data", &NoExportableDataError{ExcludedCount: 2}, http.StatusUnprocessableEntity, "NO_EXPORTABLE_DATA"},
		{"bare no exportable", ErrNoExportableData, http.StatusUnprocessableEntity, "NO_EXPORTABLE_DATA"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"opinion not found", ErrOpinionNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"user exists", ErrUserAlreadyExists, http.StatusConflict, "CONFLICT"},
		{"inactive", ErrInactiveUser, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"query", NewQueryError("opinion list", errors.New("db down")), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			HandleServiceError(c, tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			var resp APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantTag, resp.Error.Code)
		})
	}
}

func TestHandleServiceError_Details(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	HandleServiceError(c, &NoExportableDataError{ExcludedCount: 3})

	var resp struct {
		Error struct {
			Details map[string]int `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Error.Details["excluded_count"])

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	HandleServiceError(c, NewValidationError("year", "연도는 YYYY 형식이어야 합니다"))

	var vresp struct {
		Error struct {
			Message string            `json:"message"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &vresp))
	assert.Equal(t, "year", vresp.Error.Details["field"])
	assert.Equal(t, "연도는 YYYY 형식이어야 합니다", vresp.Error.Message)
}

func TestQueryError_Unwrap(t *testing.T) {
	base := errors.New("connection refused")
	err := fmt.Errorf("stats: %w", NewQueryError("count", base))

	assert.True(t, IsQuery(err))
	assert.ErrorIs(t, err, base)
	assert.False(t, IsQuery(base))
	assert.ErrorIs(t, &NoExportableDataError{}, ErrNoExportableData)
}
