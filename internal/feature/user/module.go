package user

import (
	"github.com/gin-gonic/gin"

	"go-gin-resource-api/internal/core/auth"
	"go-gin-resource-api/internal/domain"
	"go-gin-resource-api/internal/transport/http/ez"
)

type Module struct {
	Controller *ez.Controller[*domain.User]
	Handler    *Handler
	Lifecycle  *ez.Lifecycle
	Auth       gin.HandlerFunc // /me 使用
}

func NewModule(svc *Service, jwter *auth.JWTer, lc *ez.Lifecycle, authn gin.HandlerFunc, maxLimit int) *Module {
	ctl := ez.NewController[*domain.User](svc, func() *domain.User { return &domain.User{} })
	ctl.MaxLimit = maxLimit
	return &Module{
		Controller: ctl,
		Handler:    &Handler{Service: svc, JWT: jwter},
		Lifecycle:  lc,
		Auth:       authn,
	}
}

// Priority 认证路由最先挂载
func (m *Module) Priority() int { return 10 }

func (m *Module) MountAPI(api *gin.RouterGroup) {
	api.POST("/auth/login", m.Lifecycle.Wrap(m.Handler.Login))
	api.POST("/auth/register", m.Lifecycle.Wrap(m.Handler.Register))
	me := api.Group("")
	if m.Auth != nil {
		me.Use(m.Auth)
	}
	me.GET("/me", m.Lifecycle.Wrap(m.Handler.Me))
}

func (m *Module) MountAdmin(admin *gin.RouterGroup) {
	ez.Crud(ez.CrudConfig[*domain.User]{
		Group:      admin,
		Path:       "/users",
		Lifecycle:  m.Lifecycle,
		Controller: m.Controller,
	})
}
