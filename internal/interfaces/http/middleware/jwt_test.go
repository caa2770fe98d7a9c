package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotemint/backend/internal/infrastructure/auth"
	"github.com/quotemint/backend/internal/infrastructure/config"
)

func newJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars!!",
		AccessTokenExpiration: time.Hour,
		Issuer:                "quotemint-test",
	})
}

func setupJWTRouter(service *auth.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(JWTAuthMiddleware(service))
	router.GET("/api/v1/documents", func(c *gin.Context) {
		c.String(http.StatusOK, GetJWTOwnerID(c))
	})
	router.GET("/api/v1/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/api/v1/shared/:token/pdf", func(c *gin.Context) {
		c.String(http.StatusOK, "shared")
	})
	return router
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	service := newJWTService()
	router := setupJWTRouter(service)

	ownerID := uuid.New()
	token, _, err := service.GenerateToken(ownerID, "owner@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/v1/documents", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ownerID.String(), w.Body.String())
}

func TestJWTAuthMiddleware_MissingHeader(t *testing.T) {
	router := setupJWTRouter(newJWTService())

	req := httptest.NewRequest("GET", "/api/v1/documents", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestJWTAuthMiddleware_MalformedHeader(t *testing.T) {
	router := setupJWTRouter(newJWTService())

	req := httptest.NewRequest("GET", "/api/v1/documents", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_ExpiredToken(t *testing.T) {
	expired := auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars!!",
		AccessTokenExpiration: -time.Minute,
		Issuer:                "quotemint-test",
	})
	router := setupJWTRouter(newJWTService())

	token, _, err := expired.GenerateToken(uuid.New(), "")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/v1/documents", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
}

func TestJWTAuthMiddleware_SkipsHealth(t *testing.T) {
	router := setupJWTRouter(newJWTService())

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthMiddleware_SkipsSharedLinks(t *testing.T) {
	router := setupJWTRouter(newJWTService())

	req := httptest.NewRequest("GET", "/api/v1/shared/abc123/pdf", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "shared", w.Body.String())
}

func TestGetJWTClaims_NotSet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, GetJWTClaims(c))
	assert.Empty(t, GetJWTOwnerID(c))
}
