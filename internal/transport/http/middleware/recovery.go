package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-resource-api/internal/core/errs"
)

// SimpleRecovery 兜底：panic 发生在 ez.Wrap 之外（如其他中间件）时返回 500 envelope
func SimpleRecovery(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				l.Error("panic recovered",
					zap.String("rid", c.GetString(KeyRequestID)),
					zap.String("path", c.Request.URL.Path),
					zap.Any("panic", rec),
					zap.Stack("stack"),
				)
				if !c.Writer.Written() {
					abort(c, errs.KindInternalServerError, "")
				}
			}
		}()
		c.Next()
	}
}
