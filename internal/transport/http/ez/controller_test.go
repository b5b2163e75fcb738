package ez

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	f := newFixture(t, false)

	code, body := do(f.engine, http.MethodPost, "/notes", `{"title":"first","rank":3}`)
	require.Equal(t, http.StatusCreated, code)
	assert.True(t, body.Get("success").Bool())
	assert.EqualValues(t, 201, body.Get("code").Int())
	assert.Equal(t, "CREATED", body.Get("metadata.statusText").String())
	assert.Equal(t, "Created", body.Get("message").String())
	assert.NotEmpty(t, body.Get("data.id").String())
	assert.Equal(t, "first", body.Get("data.title").String())
	assert.NotEmpty(t, body.Get("data.createdAt").String())
}

func TestCreateRejectsInvalidBody(t *testing.T) {
	f := newFixture(t, false)

	for name, in := range map[string]string{
		"missing required": `{"rank":1}`,
		"wrong type":       `{"title":"x","rank":"high"}`,
		"not json":         `title=x`,
	} {
		t.Run(name, func(t *testing.T) {
			code, body := do(f.engine, http.MethodPost, "/notes", in)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.False(t, body.Get("success").Bool())
			assert.Equal(t, "body", body.Get("errors.0.field").String())
		})
	}
}

func TestGetAll(t *testing.T) {
	f := newFixture(t, false)

	code, body := do(f.engine, http.MethodGet, "/notes/all", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "No resources found", body.Get("message").String())

	f.seed(t, "a", "b")
	code, body = do(f.engine, http.MethodGet, "/notes/all", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body.Get("data").Array(), 2)
	assert.False(t, body.Get("metadata.pagination").Exists())
}

func TestGetByID(t *testing.T) {
	f := newFixture(t, false)
	ids := f.seed(t, "a")

	code, body := do(f.engine, http.MethodGet, "/notes/"+ids[0], "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, ids[0], body.Get("data.id").String())

	code, body = do(f.engine, http.MethodGet, "/notes/nope", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Resource not found", body.Get("message").String())
}

func TestUpdate(t *testing.T) {
	f := newFixture(t, false)
	ids := f.seed(t, "a")
	target := "/notes/" + ids[0]

	code, body := do(f.engine, http.MethodPut, target, `{"title":"renamed","id":"hijack"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "renamed", body.Get("data.title").String())
	assert.Equal(t, ids[0], body.Get("data.id").String())

	code, body = do(f.engine, http.MethodPatch, target, `{"rank":7}`)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 7, body.Get("data.rank").Int())
	assert.Equal(t, "renamed", body.Get("data.title").String())

	code, body = do(f.engine, http.MethodPut, target, `[1,2]`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Request body must be a JSON object", body.Get("message").String())

	code, _ = do(f.engine, http.MethodPut, target, `{"rank":"x"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(f.engine, http.MethodPut, "/notes/nope", `{"rank":1}`)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestUpdateAppliesBindingRulesToPresentFields(t *testing.T) {
	f := newFixture(t, false)
	ids := f.seed(t, "a")
	target := "/notes/" + ids[0]

	code, body := do(f.engine, http.MethodPatch, target, `{"title":"","rank":3}`)
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "title", body.Get("errors.0.field").String())
	assert.Contains(t, body.Get("errors.0.message").String(), "required")

	got, err := f.repo.FindByID(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, "a", got.Title)
	assert.Equal(t, 0, got.Rank)

	// 未出现的字段不校验
	code, _ = do(f.engine, http.MethodPatch, target, `{"rank":3}`)
	assert.Equal(t, http.StatusOK, code)
}

func TestDeleteTwice(t *testing.T) {
	f := newFixture(t, false)
	ids := f.seed(t, "a")

	code, body := do(f.engine, http.MethodDelete, "/notes/"+ids[0], "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Deleted", body.Get("message").String())

	code, _ = do(f.engine, http.MethodDelete, "/notes/"+ids[0], "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPaginate(t *testing.T) {
	f := newFixture(t, false)
	f.seed(t, "a", "b", "c")

	code, body := do(f.engine, http.MethodGet, "/notes?limit=2", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body.Get("data.data").Array(), 2)

	p := body.Get("metadata.pagination")
	assert.EqualValues(t, 1, p.Get("page").Int())
	assert.EqualValues(t, 2, p.Get("limit").Int())
	assert.EqualValues(t, 3, p.Get("totalItems").Int())
	assert.EqualValues(t, 2, p.Get("totalPages").Int())
	assert.True(t, p.Get("hasNext").Bool())
	assert.False(t, p.Get("hasPrev").Bool())

	links := body.Get("metadata.links")
	assert.Equal(t, "http://example.com/notes?limit=2", links.Get("self").String())
	assert.Equal(t, "http://example.com/notes?limit=2&page=2", links.Get("next").String())
	assert.False(t, links.Get("prev").Exists())

	code, body = do(f.engine, http.MethodGet, "/notes?limit=2&page=2&orderBy=rank&order=desc", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "a", body.Get("data.data.0.title").String())
	assert.Contains(t, body.Get("metadata.links.prev").String(), "page=1")
}

func TestPaginateEmptyIsOK(t *testing.T) {
	f := newFixture(t, false)

	code, body := do(f.engine, http.MethodGet, "/notes", "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, body.Get("data.data").IsArray())
	assert.Empty(t, body.Get("data.data").Array())
	assert.EqualValues(t, 0, body.Get("metadata.pagination.totalPages").Int())
}

func TestPaginateFilters(t *testing.T) {
	f := newFixture(t, false)
	f.seed(t, "alpha", "beta", "gamma")

	code, body := do(f.engine, http.MethodGet, "/notes?filter=rank:gte:1&filter=title:like:%25a", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 2, body.Get("metadata.pagination.totalItems").Int())
}

func TestReadOnlyCrud(t *testing.T) {
	f := newFixture(t, true)
	code, _ := do(f.engine, http.MethodPost, "/notes", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = do(f.engine, http.MethodGet, "/notes", "")
	assert.Equal(t, http.StatusOK, code)
}
