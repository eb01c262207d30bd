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
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/haekalr/kasbon/internal/config"
	"github.com/haekalr/kasbon/internal/debt"
	"github.com/haekalr/kasbon/internal/export"
	"github.com/haekalr/kasbon/internal/infrastructure/persistence/repository"
	httpserver "github.com/haekalr/kasbon/internal/interfaces/http"
	"github.com/haekalr/kasbon/internal/stream"
	"github.com/haekalr/kasbon/pkg/database"
	"github.com/haekalr/kasbon/pkg/utils"
)

func main() {
	// .env overrides for local runs; missing file is fine
	_ = gotenv.Load()

	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting kasbon ledger",
		zap.Int("port", cfg.Server.Port),
		zap.String("database", cfg.Database.Path))

	if cfg.UsingDefaultSecret() {
		logger.Warn("Gate is using the built-in default action password; set KASBON_GATE_SECRET")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	debtRepo := repository.NewDebtRepository(db, logger)
	hub := stream.NewHub(logger)
	validator := debt.NewValidator(cfg.Upload.MaxPhotoBytes)
	service := debt.NewService(debtRepo, validator, hub, logger)
	excel := export.NewExcelWriter(logger)

	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := httpserver.NewServer(
		httpserver.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		service,
		hub,
		excel,
		cfg.Gate.Secret,
		cfg.Upload.MaxPhotoBytes,
		logger,
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func configPath() string {
	if path := os.Getenv("KASBON_CONFIG"); path != "" {
		return path
	}
	return "configs/config.yaml"
}
