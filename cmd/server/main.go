package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coursedeck/syllabus-extractor/internal/analyzer"
	"github.com/coursedeck/syllabus-extractor/internal/config"
	"github.com/coursedeck/syllabus-extractor/internal/db"
	"github.com/coursedeck/syllabus-extractor/internal/repository"
	"github.com/coursedeck/syllabus-extractor/internal/router"
	"github.com/coursedeck/syllabus-extractor/internal/services"
	"github.com/coursedeck/syllabus-extractor/internal/storage"
	"github.com/coursedeck/syllabus-extractor/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := utils.NewLogger(cfg.LogLevel)

	database, err := db.NewSQLiteDB(cfg.DatabaseFile)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer database.Close()

	if err := db.RunMigrations(cfg.DatabaseFile); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	s3Storage, err := storage.NewS3Storage(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize S3 storage", "error", err)
	}

	extractor := analyzer.NewOpenRouterExtractor(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, logger)

	repo := repository.NewAssignmentRepository(database)
	service := services.NewService(repo, s3Storage, extractor, cfg, logger)

	handler := router.NewRouter(service, cfg.MaxFileSize, logger)

	// No WriteTimeout: the extraction endpoint holds its response open while
	// the pipeline streams, bounded instead by EXTRACT_TIMEOUT per attempt.
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
