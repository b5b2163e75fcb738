package news

import (
	"github.com/gin-gonic/gin"

	"go-gin-resource-api/internal/domain"
	"go-gin-resource-api/internal/transport/http/ez"
)

// Module: API 端只读，admin 端完整 CRUD
type Module struct {
	Controller *ez.Controller[*domain.NewsItem]
	Public     *ez.Controller[*domain.NewsItem]
	Lifecycle  *ez.Lifecycle
}

func NewModule(svc *Service, lc *ez.Lifecycle, maxLimit int) *Module {
	newFn := func() *domain.NewsItem { return &domain.NewsItem{} }
	ctl := ez.NewController[*domain.NewsItem](svc, newFn)
	ctl.MaxLimit = maxLimit
	pub := ez.NewController[*domain.NewsItem](PublicService{svc}, newFn)
	pub.MaxLimit = maxLimit
	return &Module{Controller: ctl, Public: pub, Lifecycle: lc}
}

func (m *Module) Priority() int { return 30 }

func (m *Module) MountAPI(api *gin.RouterGroup) {
	ez.Crud(ez.CrudConfig[*domain.NewsItem]{
		Group:      api,
		Path:       "/news",
		Lifecycle:  m.Lifecycle,
		Controller: m.Public,
		ReadOnly:   true,
	})
}

func (m *Module) MountAdmin(admin *gin.RouterGroup) {
	ez.Crud(ez.CrudConfig[*domain.NewsItem]{
		Group:      admin,
		Path:       "/news",
		Lifecycle:  m.Lifecycle,
		Controller: m.Controller,
	})
}
