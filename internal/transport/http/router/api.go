package router

import "github.com/gin-gonic/gin"

// NewAPIEngine 用户端：/api/v1
func NewAPIEngine(d Deps, reg *Registry) *gin.Engine {
	r := newEngine(d, "api")
	api := r.Group("/api/v1")
	reg.MountAPI(api)
	return r
}
