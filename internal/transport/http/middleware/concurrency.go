package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	"go-gin-resource-api/internal/core/errs"
)

// ConcurrencyLimit 限制同时在处理的请求数（保护存储下游）
// 排队等待直到拿到名额或请求被取消
func ConcurrencyLimit(n int64) gin.HandlerFunc {
	if n <= 0 {
		return passThrough
	}
	sem := semaphore.NewWeighted(n)
	return func(c *gin.Context) {
		if err := sem.Acquire(c.Request.Context(), 1); err != nil {
			abort(c, errs.KindTooManyRequests, "server busy")
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}
