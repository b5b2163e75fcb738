package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go-gin-resource-api/internal/app"
	"go-gin-resource-api/internal/core/config"
	"go-gin-resource-api/internal/core/logger"
	"go-gin-resource-api/internal/core/server"
	mdw "go-gin-resource-api/internal/transport/http/middleware"
	"go-gin-resource-api/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := newLogger(cfg)
	defer cleanup()
	undo := logger.RedirectStdLog(log, zapcore.InfoLevel)
	defer undo()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer func() {
		if err := env.Close(); err != nil {
			log.Warn("close resources", zap.Error(err))
		}
	}()

	mods, err := env.Modules()
	if err != nil {
		log.Fatal("build modules", zap.Error(err))
	}
	if err := env.SeedAdmin(ctx, mods); err != nil {
		log.Error("seed admin", zap.Error(err))
	}

	metrics, _, err := mdw.NewMetrics("api")
	if err != nil {
		log.Fatal("metrics", zap.Error(err))
	}

	// 路由（用户端）
	r := router.NewAPIEngine(router.Deps{
		Log:     log,
		Limits:  cfg.Limits,
		Metrics: metrics,
		Mode:    ginMode(cfg.App.Env),
		Health:  func(c *gin.Context) error { return env.Health(c) },
	}, router.NewRegistry(mods.All()...))

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("user api starting",
		zap.String("addr", addr),
		zap.String("store", cfg.Store.Driver),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1"),
	)

	if err := server.Run(ctx, srv, log, 10*time.Second); err != nil {
		log.Error("user api stopped with error", zap.Error(err))
		return
	}
	log.Info("user api stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, func()) {
	return logger.Build(logger.Options{
		Level:      cfg.Log.Level,
		JSON:       cfg.Log.JSON,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
}

func ginMode(env string) string {
	if env == "prod" || env == "production" {
		return gin.ReleaseMode
	}
	return gin.DebugMode
}
