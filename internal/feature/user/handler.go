package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-resource-api/internal/core/auth"
	"go-gin-resource-api/internal/core/errs"
	"go-gin-resource-api/internal/domain"
	"go-gin-resource-api/internal/transport/http/ez"
)

type loginIn struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginOut struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type registerIn struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"     binding:"omitempty,max=64"`
}

// Handler 登录 / 注册 / 当前用户
type Handler struct {
	Service *Service
	JWT     *auth.JWTer
}

func (h *Handler) Login(c *gin.Context) (any, error) {
	var in loginIn
	if err := c.ShouldBindJSON(&in); err != nil {
		return nil, errs.BadRequest("Invalid credentials payload", errs.FieldError{Field: "body", Code: "invalid", Message: err.Error()})
	}
	u, err := h.Service.Authenticate(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	return h.issue(u)
}

// Register creates a plain user and logs it in.
func (h *Handler) Register(c *gin.Context) (any, error) {
	var in registerIn
	if err := c.ShouldBindJSON(&in); err != nil {
		return nil, errs.BadRequest("Invalid registration payload", errs.FieldError{Field: "body", Code: "invalid", Message: err.Error()})
	}
	u, err := h.Service.Create(c.Request.Context(), &domain.User{
		Email:    in.Email,
		Name:     in.Name,
		Password: in.Password,
		Role:     domain.RoleUser,
	})
	if err != nil {
		return nil, err
	}
	out, err := h.issue(u)
	if err != nil {
		return nil, err
	}
	return ez.Reply{Status: http.StatusCreated, Data: out}, nil
}

func (h *Handler) Me(c *gin.Context) (any, error) {
	claims, ok := auth.ClaimsFrom(c.Request.Context())
	if !ok {
		return nil, errs.Unauthorized("")
	}
	return h.Service.GetByID(c.Request.Context(), claims.UID)
}

func (h *Handler) issue(u *domain.User) (loginOut, error) {
	tok, err := h.JWT.Issue(u.ID, u.Role)
	if err != nil {
		return loginOut{}, errs.Wrap(errs.KindInternalServerError, err, "")
	}
	return loginOut{Token: tok, User: u}, nil
}
