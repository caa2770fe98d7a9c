package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotemint/backend/internal/interfaces/http/dto"
)

func callSystemHandler(t *testing.T, path string, fn gin.HandlerFunc) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, path, nil)

	fn(c)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	return w, data
}

func TestNewSystemHandler(t *testing.T) {
	h := NewSystemHandler()
	require.NotNil(t, h)
	assert.False(t, h.startTime.IsZero())
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler()

	w, data := callSystemHandler(t, "/system/info", h.GetSystemInfo)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "QuoteMint Backend API", data["name"])
	assert.Equal(t, "1.0.0", data["version"])
	assert.NotEmpty(t, data["go_version"])
	assert.NotEmpty(t, data["uptime"])
}

func TestSystemHandler_Ping(t *testing.T) {
	h := NewSystemHandler()

	w, data := callSystemHandler(t, "/system/ping", h.Ping)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", data["message"])

	timestamp, ok := data["timestamp"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, timestamp)
	assert.NoError(t, err)
}
