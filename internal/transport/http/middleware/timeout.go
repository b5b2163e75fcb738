package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"go-gin-resource-api/internal/core/errs"
)

// Timeout 给请求 ctx 加截止时间；handler 仍在同一 goroutine 执行
// 超时且未写响应时返回 500 envelope
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			abort(c, errs.KindInternalServerError, "request timeout")
		}
	}
}
