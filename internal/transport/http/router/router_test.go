package router

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"go-gin-resource-api/internal/core/auth"
	"go-gin-resource-api/internal/domain"
)

type fakeModule struct {
	name     string
	priority int
	trace    *[]string
}

func (m fakeModule) MountAPI(g *gin.RouterGroup) {
	*m.trace = append(*m.trace, "api:"+m.name)
	g.GET("/"+m.name, func(c *gin.Context) { c.String(http.StatusOK, m.name) })
}

func (m fakeModule) MountAdmin(g *gin.RouterGroup) {
	*m.trace = append(*m.trace, "admin:"+m.name)
	g.GET("/"+m.name, func(c *gin.Context) { c.String(http.StatusOK, "admin "+m.name) })
}

func (m fakeModule) Priority() int { return m.priority }

type apiOnly struct{ trace *[]string }

func (m apiOnly) MountAPI(*gin.RouterGroup) { *m.trace = append(*m.trace, "api:plain") }

func deps() Deps { return Deps{Log: zap.NewNop(), Mode: gin.TestMode} }

func TestRegistryMountsByPriority(t *testing.T) {
	var trace []string
	reg := NewRegistry(
		fakeModule{name: "news", priority: 30, trace: &trace},
		apiOnly{trace: &trace},
		fakeModule{name: "users", priority: 10, trace: &trace},
		struct{}{},
	)

	r := gin.New()
	reg.MountAPI(r.Group("/api"))
	reg.MountAdmin(r.Group("/admin"))

	assert.Equal(t, []string{"api:users", "api:news", "api:plain", "admin:users", "admin:news"}, trace)
}

func TestAPIEngine(t *testing.T) {
	var trace []string
	r := NewAPIEngine(deps(), NewRegistry(fakeModule{name: "news", trace: &trace}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/news", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "news", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nothing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "route not found", gjson.Get(w.Body.String(), "message").String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gjson.Get(w.Body.String(), "success").Bool())
}

func TestHealthReportsFailure(t *testing.T) {
	d := deps()
	d.Health = func(*gin.Context) error { return errors.New("redis down") }
	r := NewAPIEngine(d, NewRegistry())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "redis down")
}

func TestAdminEngineRequiresAdminRole(t *testing.T) {
	j := &auth.JWTer{Secret: []byte("k"), Issuer: "test", TTL: time.Minute}
	var trace []string
	r := NewAdminEngine(deps(), NewRegistry(fakeModule{name: "users", trace: &trace}), j)

	call := func(role string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/admin/v1/users", nil)
		if role != "" {
			tok, err := j.Issue("u1", role)
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer "+tok)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, call("").Code)
	assert.Equal(t, http.StatusForbidden, call(domain.RoleUser).Code)
	w := call(domain.RoleAdmin)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "admin "))
}
