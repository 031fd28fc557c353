package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/facelens-app/facelens/internal/api"
	"github.com/facelens-app/facelens/internal/clustering"
	"github.com/facelens-app/facelens/internal/config"
	"github.com/facelens-app/facelens/internal/database"
	"github.com/facelens-app/facelens/internal/oracle"
	"github.com/facelens-app/facelens/internal/oracle/pgvec"
	"github.com/facelens-app/facelens/internal/oracle/rekognition"
	"github.com/facelens-app/facelens/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Facelens API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("oracle", cfg.OracleType),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	// Face oracle
	faceOracle, err := newOracle(ctx, cfg, pool)
	if err != nil {
		return fmt.Errorf("failed to create face oracle: %w", err)
	}

	// Clustering engine
	engine := clustering.NewEngine(faceOracle, clustering.Config{
		MaxCandidates:    clustering.DefaultConfig().MaxCandidates,
		BatchSize:        cfg.SearchBatchSize,
		BatchCooldown:    cfg.BatchCooldown,
		ProbeDelay:       cfg.ProbeDelay,
		ProbesPerCluster: cfg.ProbesPerCluster,
		MergePasses:      cfg.MergePasses,
		MergePassDrop:    cfg.MergePassDrop,
	}, logger)

	// Setup router
	deps := &api.Dependencies{
		FaceRepo:    repository.NewFaceRepository(pool),
		ClusterRepo: repository.NewClusterRepository(pool),
		GroupRepo:   repository.NewGroupRepository(pool),
		FaceOracle:  faceOracle,
		Engine:      engine,
		Config:      cfg,
		DB:          pool,
	}
	router := api.NewRouter(logger, deps)
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutting down server...")
	if err := router.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}
	logger.Info("server stopped")

	return nil
}

func newOracle(ctx context.Context, cfg *config.Config, pool pgvec.DB) (oracle.FaceOracle, error) {
	switch cfg.OracleType {
	case "pgvector":
		return pgvec.New(pool), nil
	case "rekognition":
		return rekognition.New(ctx, rekognition.Config{
			Region:           cfg.AWSRegion,
			CollectionPrefix: cfg.CollectionPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown oracle type: %s", cfg.OracleType)
	}
}
