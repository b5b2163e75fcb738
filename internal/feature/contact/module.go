package contact

import (
	"github.com/gin-gonic/gin"

	"go-gin-resource-api/internal/domain"
	"go-gin-resource-api/internal/transport/http/ez"
)

// Module 公开的联系表单：创建无需登录，读写管理走 admin 端
type Module struct {
	Controller *ez.Controller[*domain.Contact]
	Lifecycle  *ez.Lifecycle
}

func NewModule(svc *Service, lc *ez.Lifecycle, maxLimit int) *Module {
	ctl := ez.NewController[*domain.Contact](svc, func() *domain.Contact { return &domain.Contact{} })
	ctl.MaxLimit = maxLimit
	return &Module{Controller: ctl, Lifecycle: lc}
}

func (m *Module) Priority() int { return 20 }

func (m *Module) MountAPI(api *gin.RouterGroup) {
	api.POST("/contacts", m.Lifecycle.Wrap(m.Controller.Create))
}

func (m *Module) MountAdmin(admin *gin.RouterGroup) {
	ez.Crud(ez.CrudConfig[*domain.Contact]{
		Group:      admin,
		Path:       "/contacts",
		Lifecycle:  m.Lifecycle,
		Controller: m.Controller,
	})
}
