package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmspages/internal/config"
	"github.com/cmspages/internal/db"
	"github.com/cmspages/internal/handler"
	"github.com/cmspages/internal/router"
	"github.com/cmspages/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLogger, _ := zap.NewProduction()
		bootLogger.Fatal("failed to load config", zap.Error(err))
	}

	logger := newLogger(cfg)
	defer logger.Sync()

	gin.SetMode(cfg.GinMode)

	logger.Info("connecting to database",
		zap.String("driver", cfg.Database.Driver),
		zap.String("dsn", cfg.Database.MaskedDSN()),
	)
	if cfg.UsesDefaultToken() {
		logger.Warn("API_BEARER_TOKEN is not set, using the default development token")
	}

	// 初始化数据库
	logLevel := gormlogger.Warn
	if cfg.IsDebug() {
		logLevel = gormlogger.Info
	}
	gdb, err := db.Open(cfg.Database, logLevel)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	var opts []service.PageServiceOption
	if cfg.SanitizeContent {
		opts = append(opts, service.WithContentPolicy(bluemonday.UGCPolicy()))
	}
	api := handler.NewAPI(gdb, logger, opts...)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.SetupRouter(api, cfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	if err := db.Close(gdb); err != nil {
		logger.Warn("failed to close database", zap.Error(err))
	}
	logger.Info("server exited")
}

func newLogger(cfg config.AppConfig) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsDebug() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
