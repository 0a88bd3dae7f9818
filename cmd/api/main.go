package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/mealmate/backend/config"
	"github.com/pageza/mealmate/backend/internal/database"
	"github.com/pageza/mealmate/backend/internal/logging"
	"github.com/pageza/mealmate/backend/internal/server"
	"github.com/pageza/mealmate/backend/migrations"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	env := config.GetEnvironment()
	gin.SetMode(env.GinMode())

	logger, err := logging.New(cfg.LogLevel, env == config.Production)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	db, err := database.Open(cfg, logger)
	if err != nil {
		return err
	}
	if err := database.RunMigrations(ctx, db, migrations.Files, logger.Named("migrate")); err != nil {
		return err
	}

	opts := server.Options{
		Config: cfg,
		DB:     db,
		Logger: logger,
	}

	if database.RedisConfigured(cfg) {
		redisClient, err := database.NewRedisClient(cfg, logger)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		opts.Redis = redisClient
	} else {
		logger.Warn("no Redis configured, quota state and live updates stay in this process")
	}

	if cfg.S3BucketName != "" {
		s3Cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return err
		}
		opts.Objects = s3Cfg
	} else {
		logger.Info("no S3 bucket configured, shared plans are returned as text only")
	}

	app := server.NewApp(opts)
	defer app.Close()
	srv := server.New(cfg, app.Router, logger)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		logger.Info("received signal", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
