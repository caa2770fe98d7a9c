package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/quotemint/backend/internal/infrastructure/config"
	"github.com/quotemint/backend/internal/infrastructure/logger"
	"github.com/quotemint/backend/internal/infrastructure/persistence"
)

// migrate applies the schema to the configured database and exits.
// The server runs the same migration on startup; this tool exists for
// deploy pipelines that migrate before rolling out new instances.
func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	gormLogLevel := logger.MapGormLogLevel(logLevel)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogLevel)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	log.Info("Running migration",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
	)
	if err := db.Migrate(); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}
	log.Info("Migration completed")
}
