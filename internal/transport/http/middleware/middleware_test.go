package middleware

import (
	"context"
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
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"go-gin-resource-api/internal/core/auth"
)

func init() { gin.SetMode(gin.TestMode) }

func ok(c *gin.Context) { c.String(http.StatusOK, "ok") }

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func get(target string) *http.Request { return httptest.NewRequest(http.MethodGet, target, nil) }

func TestAuthJWT(t *testing.T) {
	j := &auth.JWTer{Secret: []byte("k"), Issuer: "test", TTL: time.Minute}
	other := &auth.JWTer{Secret: []byte("other"), Issuer: "test", TTL: time.Minute}

	r := gin.New()
	r.GET("/me", AuthJWT(j, ""), func(c *gin.Context) {
		cl, found := auth.ClaimsFrom(c.Request.Context())
		require.True(t, found)
		c.String(http.StatusOK, cl.UID+"/"+c.GetString(KeyRole))
	})
	r.GET("/admin", AuthJWT(j, "admin"), ok)

	bearer := func(target string, jw *auth.JWTer, role string) *http.Request {
		tok, err := jw.Issue("u1", role)
		require.NoError(t, err)
		req := get(target)
		req.Header.Set("Authorization", "Bearer "+tok)
		return req
	}

	w := serve(r, get("/me"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := gjson.Parse(w.Body.String())
	assert.EqualValues(t, 401, body.Get("code").Int())
	assert.Equal(t, "missing token", body.Get("message").String())

	w = serve(r, bearer("/me", other, "user"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid token", gjson.Get(w.Body.String(), "message").String())

	w = serve(r, bearer("/me", j, "user"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1/user", w.Body.String())

	w = serve(r, bearer("/admin", j, "user"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(r, bearer("/admin", j, "admin"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimit(0.001, 1), ok)

	assert.Equal(t, http.StatusOK, serve(r, get("/")).Code)
	w := serve(r, get("/"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "TOO_MANY_REQUESTS", gjson.Get(w.Body.String(), "metadata.statusText").String())

	open := gin.New()
	open.GET("/", RateLimit(0, 0), ok)
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(open, get("/")).Code)
	}
}

func TestRateLimitPerIP(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimitPerIP(0.001, 1, time.Minute), ok)

	from := func(ip string) *http.Request {
		req := get("/")
		req.RemoteAddr = ip + ":1234"
		return req
	}
	assert.Equal(t, http.StatusOK, serve(r, from("10.0.0.1")).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, from("10.0.0.1")).Code)
	assert.Equal(t, http.StatusOK, serve(r, from("10.0.0.2")).Code)
}

func TestConcurrencyLimit(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	r := gin.New()
	r.GET("/", ConcurrencyLimit(1), func(c *gin.Context) {
		if c.Query("hold") != "" {
			close(entered)
			<-release
		}
		ok(c)
	})

	done := make(chan int)
	go func() { done <- serve(r, get("/?hold=1")).Code }()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	w := serve(r, get("/").WithContext(ctx))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "server busy", gjson.Get(w.Body.String(), "message").String())

	close(release)
	assert.Equal(t, http.StatusOK, <-done)
	assert.Equal(t, http.StatusOK, serve(r, get("/")).Code)
}

func TestMaxBodyBytes(t *testing.T) {
	r := gin.New()
	r.POST("/", MaxBodyBytes(8), func(c *gin.Context) {
		var in map[string]any
		if err := c.ShouldBindJSON(&in); err != nil {
			_ = c.Error(err)
			return
		}
		ok(c)
	})

	w := serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":"0123456789"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "request body too large", gjson.Get(w.Body.String(), "message").String())

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":"0123456789"}`))
	req.ContentLength = -1
	w = serve(r, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))).Code)
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.GET("/slow", Timeout(10*time.Millisecond), func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	r.GET("/fast", Timeout(time.Second), ok)

	w := serve(r, get("/slow"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "request timeout", gjson.Get(w.Body.String(), "message").String())
	assert.Equal(t, http.StatusOK, serve(r, get("/fast")).Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.GET("/", RequestID(), func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyRequestID)) })

	req := get("/")
	req.Header.Set(KeyRequestID, "abc")
	w := serve(r, req)
	assert.Equal(t, "abc", w.Body.String())
	assert.Equal(t, "abc", w.Header().Get(KeyRequestID))

	req = get("/")
	req.Header.Set(KeyRequestID, strings.Repeat("x", maxRequestIDLen+1))
	w = serve(r, req)
	assert.Len(t, w.Body.String(), 36)

	w = serve(r, get("/"))
	assert.Len(t, w.Header().Get(KeyRequestID), 36)
}

func TestSimpleRecovery(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := gin.New()
	r.Use(SimpleRecovery(zap.New(core)))
	r.GET("/", func(*gin.Context) { panic("kaboom") })

	w := serve(r, get("/"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, gjson.Get(w.Body.String(), "success").Bool())
	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(AccessLog(zap.New(core)))
	r.GET("/items/:id", ok)

	serve(r, get("/items/7?password=hunter2&q=x"))
	serve(r, get("/nowhere"))

	all := logs.All()
	require.Len(t, all, 2)
	assert.Equal(t, zapcore.InfoLevel, all[0].Level)
	fields := all[0].ContextMap()
	assert.Equal(t, "/items/:id", fields["path"])
	q := fields["query"].(map[string][]string)
	assert.Equal(t, []string{"****"}, q["password"])
	assert.Equal(t, []string{"x"}, q["q"])

	assert.Equal(t, zapcore.WarnLevel, all[1].Level)
	assert.Equal(t, "/nowhere", all[1].ContextMap()["path"])
}

func TestMetrics(t *testing.T) {
	m, _, err := NewMetrics("test")
	require.NoError(t, err)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/items/:id", ok)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	serve(r, get("/items/1"))
	serve(r, get("/items/2"))
	serve(r, get("/missing"))

	text := serve(r, get("/metrics")).Body.String()
	assert.Contains(t, text, `test_http_requests_total{method="GET",path="/items/:id",status="200"} 2`)
	assert.Contains(t, text, `test_http_requests_total{method="GET",path="unmatched",status="404"} 1`)
	assert.Contains(t, text, "test_http_request_duration_seconds_bucket")
}

func TestMaskBody(t *testing.T) {
	assert.Equal(t, `{"user":"a","Password": "****","n":1}`, MaskBody([]byte(`{"user":"a","Password": "p\"w","n":1}`)))
	assert.Equal(t, `{"token":"****"`, MaskBody([]byte(`{"token":"abc`)))
	assert.Equal(t, "q=1&secret=****&x=2", MaskBody([]byte("q=1&secret=zz&x=2")))
	assert.Equal(t, `{"name":"tokens"}`, MaskBody([]byte(`{"name":"tokens"}`)))
}
