package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"go-gin-resource-api/internal/core/auth"
	"go-gin-resource-api/internal/core/errs"
	"go-gin-resource-api/internal/transport/http/response"
)

// gin 上下文里的身份 key
const (
	KeyClaims = "claims"
	KeyUserID = "userId"
	KeyRole   = "role"
)

// AuthJWT verifies the bearer token and, when requireRole is set, the role.
// The principal is stored both on the gin context and in the request context.
func AuthJWT(j *auth.JWTer, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			abort(c, errs.KindUnauthorized, "missing token")
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			abort(c, errs.KindUnauthorized, "invalid token")
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			abort(c, errs.KindForbidden, "forbidden")
			return
		}
		c.Set(KeyClaims, claims)
		c.Set(KeyUserID, claims.UID)
		c.Set(KeyRole, claims.Role)
		c.Request = c.Request.WithContext(auth.WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

// abort 中间件统一的拒绝出口：HTTP 状态码与 envelope code 一致
func abort(c *gin.Context, k errs.Kind, msg string) {
	env := response.Fail(k, msg)
	c.AbortWithStatusJSON(env.Code, env)
}
