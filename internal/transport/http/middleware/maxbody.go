package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-resource-api/internal/core/errs"
)

// MaxBodyBytes 限制请求体大小；超限时 handler 读 body 失败
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > n {
			abort(c, errs.KindBadRequest, "request body too large")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
		if c.Writer.Written() {
			return
		}
		var mbe *http.MaxBytesError
		for _, e := range c.Errors {
			if errors.As(e.Err, &mbe) {
				abort(c, errs.KindBadRequest, "request body too large")
				return
			}
		}
	}
}
