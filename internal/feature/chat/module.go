package chat

import (
	"github.com/gin-gonic/gin"

	"go-gin-resource-api/internal/domain"
	"go-gin-resource-api/internal/transport/http/ez"
)

// Module 全部路由需要登录
type Module struct {
	Controller *ez.Controller[*domain.ChatRequest]
	Lifecycle  *ez.Lifecycle
	Auth       gin.HandlerFunc
}

func NewModule(svc *Service, lc *ez.Lifecycle, authn gin.HandlerFunc, maxLimit int) *Module {
	ctl := ez.NewController[*domain.ChatRequest](svc, func() *domain.ChatRequest { return &domain.ChatRequest{} })
	ctl.MaxLimit = maxLimit
	return &Module{Controller: ctl, Lifecycle: lc, Auth: authn}
}

func (m *Module) Priority() int { return 40 }

func (m *Module) MountAPI(api *gin.RouterGroup) {
	cfg := ez.CrudConfig[*domain.ChatRequest]{
		Group:      api,
		Path:       "/chat-requests",
		Lifecycle:  m.Lifecycle,
		Controller: m.Controller,
	}
	if m.Auth != nil {
		cfg.Middleware = []gin.HandlerFunc{m.Auth}
	}
	ez.Crud(cfg)
}
