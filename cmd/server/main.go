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
	"github.com/jvanrooyen/cultivation-tasks/internal/config"
	"github.com/jvanrooyen/cultivation-tasks/internal/generator"
	"github.com/jvanrooyen/cultivation-tasks/internal/httpapi"
	"github.com/jvanrooyen/cultivation-tasks/internal/repository"
	"github.com/jvanrooyen/cultivation-tasks/internal/worker"
	"github.com/jvanrooyen/cultivation-tasks/internal/workflow"
	"github.com/jvanrooyen/cultivation-tasks/pkg/database"
	"github.com/jvanrooyen/cultivation-tasks/pkg/utils"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
)

func main() {
	// Local overrides for development; missing .env is fine
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
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

	logger.Info("Starting cultivation task workflow service",
		zap.Int("port", cfg.Server.Port))

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
	if err := migrator.Run(); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories
	taskRepo := repository.NewTaskRepository(db, logger)
	historyRepo := repository.NewHistoryRepository(db, logger)
	batchRepo := repository.NewBatchRepository(db, logger)
	userRepo := repository.NewUserRepository(db, logger)
	seqRepo := repository.NewSequenceRepository(db, logger)

	// Approval engine and generators
	engine := workflow.NewEngine(db, taskRepo, historyRepo, userRepo, seqRepo, logger)
	runner := generator.NewRunner(engine, batchRepo, taskRepo, logger)

	// Scheduler workers
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manager := worker.NewManager(logger)
	if cfg.Jobs.Enabled {
		manager.Register(worker.NewJobRunner(runner, generator.DailyMortalityJob(), cfg.Jobs.DailyInterval, cfg.Jobs.RunOnStart, logger))
		manager.Register(worker.NewJobRunner(runner, generator.DailyCloningJob(), cfg.Jobs.DailyInterval, cfg.Jobs.RunOnStart, logger))
		manager.Register(worker.NewJobRunner(runner, generator.WeeklyBatchJob(), cfg.Jobs.WeeklyInterval, cfg.Jobs.RunOnStart, logger))
	}
	if err := manager.StartAll(ctx); err != nil {
		logger.Fatal("Failed to start workers", zap.Error(err))
	}

	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))
	router.Use(corsMiddleware())

	handler := httpapi.NewHandler(engine, runner, logger)
	handler.Register(router)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	manager.StopAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}
