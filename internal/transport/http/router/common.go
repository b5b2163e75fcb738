package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"go-gin-resource-api/internal/core/config"
	"go-gin-resource-api/internal/core/errs"
	"go-gin-resource-api/internal/core/server"
	mdw "go-gin-resource-api/internal/transport/http/middleware"
	"go-gin-resource-api/internal/transport/http/response"
)

// Deps 两个 engine 共用的依赖
type Deps struct {
	Log     *zap.Logger
	Limits  config.Limits
	Metrics *mdw.Metrics
	Mode    string
	// Health 返回 nil 表示依赖正常
	Health func(*gin.Context) error
}

// newEngine 统一的中间件链；Timeout 在最外层给 ctx 设截止时间
func newEngine(d Deps, name string) *gin.Engine {
	r := server.NewRouter(d.Log, server.Options{Name: name, Mode: d.Mode})
	r.Use(
		mdw.RequestID(),
		mdw.Timeout(d.Limits.Timeout()),
		mdw.RateLimit(rate.Limit(d.Limits.RPS), d.Limits.Burst),
		mdw.RateLimitPerIP(rate.Limit(d.Limits.PerIPRPS), d.Limits.PerIPBurst, 10*time.Minute),
		mdw.ConcurrencyLimit(d.Limits.MaxConcurrent),
		mdw.MaxBodyBytes(d.Limits.MaxBodyBytes),
		mdw.SimpleRecovery(d.Log),
	)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}
	r.Use(mdw.AccessLog(d.Log))

	r.GET("/health", func(c *gin.Context) {
		if d.Health != nil {
			if err := d.Health(c); err != nil {
				d.Log.Warn("health check failed", zap.Error(err))
				env := response.Fail(errs.KindInternalServerError, "unhealthy")
				c.JSON(env.Code, env)
				return
			}
		}
		c.JSON(http.StatusOK, response.Success(http.StatusOK, "", gin.H{"ok": 1}))
	})
	r.NoRoute(func(c *gin.Context) {
		env := response.Fail(errs.KindNotFound, "route not found")
		c.JSON(env.Code, env)
	})
	return r
}
