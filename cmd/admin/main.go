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
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()
	undo := logger.RedirectStdLog(log, zapcore.InfoLevel)
	defer undo()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer func() { _ = env.Close() }()

	mods, err := env.Modules()
	if err != nil {
		log.Fatal("build modules", zap.Error(err))
	}
	if cfg.Store.Driver == "memory" {
		log.Warn("admin api on memory store: data is not shared with the user api")
	}
	if err := env.SeedAdmin(ctx, mods); err != nil {
		log.Error("seed admin", zap.Error(err))
	}

	metrics, _, err := mdw.NewMetrics("admin")
	if err != nil {
		log.Fatal("metrics", zap.Error(err))
	}

	// 路由（后台端）
	r := router.NewAdminEngine(router.Deps{
		Log:     log,
		Limits:  cfg.Limits,
		Metrics: metrics,
		Mode:    gin.ReleaseMode,
		Health:  func(c *gin.Context) error { return env.Health(c) },
	}, router.NewRegistry(mods.All()...), env.JWT)

	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	srv := server.BuildServer(addr, r, 5*time.Second, 10*time.Second, 60*time.Second)

	host4human := cfg.App.Admin.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.Admin.Port)
	log.Info("admin api starting",
		zap.String("addr", addr),
		zap.String("health", baseURL+"/health"),
		zap.String("admin_v1", baseURL+"/admin/v1"),
	)

	if err := server.Run(ctx, srv, log, 10*time.Second); err != nil {
		log.Error("admin api stopped with error", zap.Error(err))
		return
	}
	log.Info("admin api stopped gracefully")
}
