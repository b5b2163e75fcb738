package router

import (
	"github.com/gin-gonic/gin"

	"go-gin-resource-api/internal/core/auth"
	"go-gin-resource-api/internal/domain"
	mdw "go-gin-resource-api/internal/transport/http/middleware"
)

// NewAdminEngine 管理端 v1（统一要求 admin 角色）
func NewAdminEngine(d Deps, reg *Registry, jwter *auth.JWTer) *gin.Engine {
	r := newEngine(d, "admin")
	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(jwter, domain.RoleAdmin))
	reg.MountAdmin(admin)
	return r
}
