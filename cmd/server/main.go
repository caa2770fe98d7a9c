package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	billingapp "github.com/quotemint/backend/internal/application/billing"
	"github.com/quotemint/backend/internal/infrastructure/auth"
	"github.com/quotemint/backend/internal/infrastructure/config"
	"github.com/quotemint/backend/internal/infrastructure/logger"
	"github.com/quotemint/backend/internal/infrastructure/persistence"
	"github.com/quotemint/backend/internal/infrastructure/render"
	"github.com/quotemint/backend/internal/interfaces/http/handler"
	"github.com/quotemint/backend/internal/interfaces/http/middleware"
	"github.com/quotemint/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Connect to database
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogLevel)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database migration completed")

	// PDF converter
	converter, err := newConverter(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize PDF converter", zap.Error(err))
	}
	defer func() {
		if err := converter.Close(); err != nil {
			log.Error("Failed to close PDF converter", zap.Error(err))
		}
	}()
	log.Info("PDF converter ready", zap.String("backend", cfg.Render.Converter))

	// Rendering pipeline
	pipeline, err := render.NewPipeline(render.Config{
		PageCapacity:   cfg.Render.PageCapacity,
		AssetDir:       cfg.Render.AssetDir,
		ConvertTimeout: cfg.Render.ConvertTimeout,
	}, converter, log)
	if err != nil {
		log.Fatal("Failed to initialize rendering pipeline", zap.Error(err))
	}

	// Repositories and application services
	recordRepo := persistence.NewGormBillingRecordRepository(db.DB)
	documentService := billingapp.NewDocumentService(recordRepo, log)
	renderService := billingapp.NewRenderService(recordRepo, pipeline, cfg.Render.BatchWorkers, log)

	// JWT service
	jwtService := auth.NewJWTService(cfg.JWT)

	// Gin engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware chain (order matters):
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// JWT authentication for the document API. Shared links stay public;
	// the share token is the credential.
	authMiddleware := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		Logger:     log,
	})

	// Handlers and routes
	documentHandler := handler.NewDocumentHandler(documentService, renderService)
	sharedHandler := handler.NewSharedHandler(renderService)
	systemHandler := handler.NewSystemHandler()

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.DocumentRoutes(documentHandler, authMiddleware)).
		Register(handler.SharedRoutes(sharedHandler)).
		Register(systemRoutes)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newConverter builds the PDF converter selected by render.converter.
func newConverter(cfg *config.Config, log *zap.Logger) (render.PDFConverter, error) {
	switch cfg.Render.Converter {
	case "wkhtmltopdf":
		return render.NewWkhtmltopdfConverter(&render.WkhtmltopdfConfig{
			BinaryPath:     cfg.Render.WkhtmltopdfPath,
			DefaultTimeout: cfg.Render.ConvertTimeout,
			Logger:         log,
		})
	default:
		return render.NewChromedpConverter(&render.ChromedpConfig{
			RemoteURL:      cfg.Render.ChromeRemoteURL,
			NoSandbox:      cfg.Render.ChromeNoSandbox,
			DefaultTimeout: cfg.Render.ConvertTimeout,
			Logger:         log,
		})
	}
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
