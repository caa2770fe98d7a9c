package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func findHTTPLog(t *testing.T, recorded *observer.ObservedLogs) *observer.LoggedEntry {
	t.Helper()
	logs := recorded.All()
	for i := range logs {
		if logs[i].Message == "HTTP Request" {
			return &logs[i]
		}
	}
	require.FailNow(t, "HTTP Request log should exist")
	return nil
}

func serve(router *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/documents", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := serve(router, http.MethodGet, "/documents")

	assert.Equal(t, http.StatusOK, w.Code)
	httpLog := findHTTPLog(t, recorded)
	assert.Equal(t, zapcore.InfoLevel, httpLog.Level)
}

func TestGinMiddleware_WithRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.InfoLevel)

	router := gin.New()
	// request_id is normally set by the RequestID middleware upstream
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "test-req-123")
		c.Next()
	})
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/documents", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	serve(router, http.MethodGet, "/documents")

	httpLog := findHTTPLog(t, recorded)
	hasRequestID := false
	for _, field := range httpLog.Context {
		if field.Key == "request_id" {
			hasRequestID = true
			assert.Equal(t, "test-req-123", field.String)
		}
	}
	assert.True(t, hasRequestID, "request_id should be in log fields")
}

func TestGinMiddleware_StatusLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("4xx logs as warning", func(t *testing.T) {
		core, recorded := observer.New(zapcore.WarnLevel)
		router := gin.New()
		router.Use(GinMiddleware(zap.New(core)))
		router.GET("/bad", func(c *gin.Context) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		})

		serve(router, http.MethodGet, "/bad")
		assert.Equal(t, zapcore.WarnLevel, findHTTPLog(t, recorded).Level)
	})

	t.Run("5xx logs as error", func(t *testing.T) {
		core, recorded := observer.New(zapcore.ErrorLevel)
		router := gin.New()
		router.Use(GinMiddleware(zap.New(core)))
		router.GET("/broken", func(c *gin.Context) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		})

		serve(router, http.MethodGet, "/broken")
		assert.Equal(t, zapcore.ErrorLevel, findHTTPLog(t, recorded).Level)
	})
}

func TestGinMiddleware_WithQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/documents", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	serve(router, http.MethodGet, "/documents?search=INV&page=1")

	httpLog := findHTTPLog(t, recorded)
	hasQuery := false
	for _, field := range httpLog.Context {
		if field.Key == "query" {
			hasQuery = true
			assert.Contains(t, field.String, "search=INV")
		}
	}
	assert.True(t, hasQuery, "query should be in log fields")
}

func TestGinMiddleware_LogsCorrectFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(GinMiddleware(zap.New(core)))
	router.POST("/documents", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"id": 1})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/documents", nil)
	req.Header.Set("User-Agent", "Test-Agent/1.0")
	router.ServeHTTP(w, req)

	httpLog := findHTTPLog(t, recorded)
	fieldMap := make(map[string]any)
	for _, field := range httpLog.Context {
		fieldMap[field.Key] = field
	}

	for _, key := range []string{"status", "latency", "client_ip", "user_agent", "method", "path"} {
		assert.Contains(t, fieldMap, key)
	}
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	var w *httptest.ResponseRecorder
	assert.NotPanics(t, func() {
		w = serve(router, http.MethodGet, "/panic")
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	logs := recorded.All()
	require.NotEmpty(t, logs)
	assert.Contains(t, logs[0].Message, "Panic recovered")
}

func TestGetGinLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, _ := observer.New(zapcore.InfoLevel)

	var retrievedLogger *zap.Logger
	router := gin.New()
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/documents", func(c *gin.Context) {
		retrievedLogger = GetGinLogger(c)
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	serve(router, http.MethodGet, "/documents")
	assert.NotNil(t, retrievedLogger)
}

func TestGetGinLogger_NotSet(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var retrievedLogger *zap.Logger
	router := gin.New()
	router.GET("/documents", func(c *gin.Context) {
		retrievedLogger = GetGinLogger(c)
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	serve(router, http.MethodGet, "/documents")

	// falls back to a no-op logger, never nil
	require.NotNil(t, retrievedLogger)
	assert.NotPanics(t, func() {
		retrievedLogger.Info("test")
	})
}
