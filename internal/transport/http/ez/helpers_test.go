package ez

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"go-gin-resource-api/internal/docstore"
	"go-gin-resource-api/internal/domain"
	"go-gin-resource-api/internal/resource"
)

func init() { gin.SetMode(gin.TestMode) }

type note struct {
	domain.Base
	Title string `json:"title" binding:"required"`
	Rank  int    `json:"rank"`
}

func newNote() *note { return &note{} }

type memSink struct {
	mu     sync.Mutex
	blocks []string
}

func (s *memSink) Append(_ context.Context, block string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks = append(s.blocks, block)
	return nil
}

func (s *memSink) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.blocks) == 0 {
		return ""
	}
	return s.blocks[len(s.blocks)-1]
}

type fixture struct {
	engine *gin.Engine
	repo   *resource.Repository[*note]
	sink   *memSink
	lc     *Lifecycle
}

func newFixture(t *testing.T, readOnly bool) *fixture {
	t.Helper()
	repo := resource.NewRepository[*note](docstore.NewMemory(newNote))
	sink := &memSink{}
	lc := NewLifecycle(zap.NewNop(), sink)

	r := gin.New()
	Crud(CrudConfig[*note]{
		Group:      &r.RouterGroup,
		Path:       "/notes",
		Lifecycle:  lc,
		Controller: NewController[*note](resource.NewService[*note](repo), newNote),
		ReadOnly:   readOnly,
	})
	return &fixture{engine: r, repo: repo, sink: sink, lc: lc}
}

func (f *fixture) seed(t *testing.T, titles ...string) []string {
	t.Helper()
	ids := make([]string, 0, len(titles))
	for i, title := range titles {
		n, err := f.repo.Create(context.Background(), &note{Title: title, Rank: i})
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}
	return ids
}

func do(h http.Handler, method, target, body string) (int, gjson.Result) {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Code, gjson.ParseBytes(w.Body.Bytes())
}
