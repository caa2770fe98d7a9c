// Package integration wires the full HTTP stack against an in-memory
// SQLite database: real router, middleware, JWT auth, application
// services, and GORM repository. Only the PDF converter is stubbed.
package integration

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	billingapp "github.com/quotemint/backend/internal/application/billing"
	"github.com/quotemint/backend/internal/infrastructure/auth"
	"github.com/quotemint/backend/internal/infrastructure/config"
	"github.com/quotemint/backend/internal/infrastructure/persistence"
	"github.com/quotemint/backend/internal/infrastructure/persistence/models"
	"github.com/quotemint/backend/internal/infrastructure/render"
	"github.com/quotemint/backend/internal/interfaces/http/handler"
	"github.com/quotemint/backend/internal/interfaces/http/middleware"
	"github.com/quotemint/backend/internal/interfaces/http/router"
)

const testJWTSecret = "integration-test-secret-0123456789abcdef"

// stubConverter returns a fixed byte stream instead of driving a browser.
type stubConverter struct{}

func (stubConverter) Convert(_ context.Context, req *render.ConvertRequest) (*render.ConvertResult, error) {
	return &render.ConvertResult{
		PDFData:   []byte("%PDF-1.4 integration stub"),
		PageCount: 1,
		Duration:  time.Millisecond,
	}, nil
}

func (stubConverter) Close() error { return nil }

// testServer holds the assembled stack for one test.
type testServer struct {
	Engine *gin.Engine
	DB     *gorm.DB
	JWT    *auth.JWTService
}

// newTestServer builds the engine the same way cmd/server does, minus
// the pieces that need external processes.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.BillingRecordModel{}))

	log := zap.NewNop()

	pipeline, err := render.NewPipeline(render.Config{AssetDir: t.TempDir()}, stubConverter{}, log)
	require.NoError(t, err)

	recordRepo := persistence.NewGormBillingRecordRepository(db)
	documentService := billingapp.NewDocumentService(recordRepo, log)
	renderService := billingapp.NewRenderService(recordRepo, pipeline, 2, log)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                testJWTSecret,
		AccessTokenExpiration: time.Hour,
		Issuer:                "quotemint-test",
	})

	engine := gin.New()
	engine.Use(middleware.RequestID())

	authMiddleware := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		Logger:     log,
	})

	documentHandler := handler.NewDocumentHandler(documentService, renderService)
	sharedHandler := handler.NewSharedHandler(renderService)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.DocumentRoutes(documentHandler, authMiddleware)).
		Register(handler.SharedRoutes(sharedHandler))
	r.Setup()

	return &testServer{Engine: engine, DB: db, JWT: jwtService}
}
