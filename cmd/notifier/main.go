package main

import (
	"context"
	"database/sql"
	"os"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/matheuszbb/emprestimos/internal/config"
	"github.com/matheuszbb/emprestimos/internal/notifier"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	// Wait for the API to answer health checks before touching storage.
	if err := notifier.WaitHealthy(ctx, logger, cfg.SiteURL); err != nil {
		logger.Fatalf("Health gate failed: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	n := notifier.New(notifier.NewDB(db), logger, cfg.SiteURL)
	logger.Infof("Starting notification dispatcher against %s", cfg.SiteURL)
	err = n.Run(ctx)
	n.Wait()
	if err != nil {
		logger.Fatalf("Dispatcher stopped: %v", err)
	}
}
