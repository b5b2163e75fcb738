package ez

import (
	"github.com/gin-gonic/gin"

	"go-gin-resource-api/internal/domain"
)

// CrudConfig 描述一个资源的路由挂载
type CrudConfig[T domain.Entity] struct {
	Group      *gin.RouterGroup
	Path       string // 例如 "/contacts"
	Lifecycle  *Lifecycle
	Controller *Controller[T]
	Middleware []gin.HandlerFunc // 仅作用于该资源（如鉴权）

	ReadOnly bool // 只挂载 GET
}

// Crud registers:
//
//	POST   /path        create
//	GET    /path        paginate
//	GET    /path/all    getAll
//	GET    /path/:id    getById
//	PUT    /path/:id    update (PATCH is an alias)
//	DELETE /path/:id    delete
func Crud[T domain.Entity](cfg CrudConfig[T]) {
	g := cfg.Group.Group(cfg.Path, cfg.Middleware...)
	lc, ctl := cfg.Lifecycle, cfg.Controller

	g.GET("", lc.Wrap(ctl.Paginate))
	g.GET("/all", lc.Wrap(ctl.GetAll))
	g.GET("/:id", lc.Wrap(ctl.GetByID))
	if cfg.ReadOnly {
		return
	}
	g.POST("", lc.Wrap(ctl.Create))
	g.PUT("/:id", lc.Wrap(ctl.Update))
	g.PATCH("/:id", lc.Wrap(ctl.Update))
	g.DELETE("/:id", lc.Wrap(ctl.Delete))
}
