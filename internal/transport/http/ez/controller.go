package ez

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"go-gin-resource-api/internal/core/errs"
	"go-gin-resource-api/internal/domain"
	"go-gin-resource-api/internal/resource"
)

// Controller maps the six resource operations onto HTTP. It only parses input
// and shapes output; every rule lives in the Service.
type Controller[T domain.Entity] struct {
	Service  resource.Service[T]
	New      func() T
	MaxLimit int // 0 表示 DefaultMaxLimit
}

func NewController[T domain.Entity](svc resource.Service[T], newFn func() T) *Controller[T] {
	return &Controller[T]{Service: svc, New: newFn, MaxLimit: DefaultMaxLimit}
}

func (ctl *Controller[T]) Create(c *gin.Context) (any, error) {
	in := ctl.New()
	if err := c.ShouldBindJSON(in); err != nil {
		return nil, errs.BadRequest("Invalid request body", bodyError(err))
	}
	out, err := ctl.Service.Create(c.Request.Context(), in)
	if err != nil {
		return nil, err
	}
	if isNil(out) {
		return nil, errs.BadRequest("Creation failed")
	}
	return Reply{Status: http.StatusCreated, Data: out}, nil
}

// GetAll 返回全部记录；集合为空视为 404
func (ctl *Controller[T]) GetAll(c *gin.Context) (any, error) {
	list, err := ctl.Service.GetAll(c.Request.Context())
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, errs.NotFound("No resources found")
	}
	return list, nil
}

func (ctl *Controller[T]) GetByID(c *gin.Context) (any, error) {
	out, err := ctl.Service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		return nil, err
	}
	if isNil(out) {
		return nil, errs.NotFound("Resource not found")
	}
	return out, nil
}

// Update accepts a partial JSON object keyed by the resource's JSON field
// names. The body must also decode into the resource type.
func (ctl *Controller[T]) Update(c *gin.Context) (any, error) {
	raw, err := c.GetRawData()
	if err != nil {
		return nil, errs.BadRequest("Invalid request body", bodyError(err))
	}
	var patch map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&patch); err != nil || patch == nil {
		return nil, errs.BadRequest("Request body must be a JSON object")
	}
	in := ctl.New()
	if err := json.Unmarshal(raw, in); err != nil {
		return nil, errs.BadRequest("Invalid request body", bodyError(err))
	}
	if err := validatePatch(in, patch); err != nil {
		return nil, err
	}
	out, err := ctl.Service.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ctl *Controller[T]) Delete(c *gin.Context) (any, error) {
	ok, err := ctl.Service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.NotFound("Resource not found")
	}
	return Reply{Status: http.StatusOK, Message: "Deleted"}, nil
}

// Paginate always answers 200, an empty window included.
func (ctl *Controller[T]) Paginate(c *gin.Context) (any, error) {
	opts, err := ParsePagination(c, ctl.MaxLimit)
	if err != nil {
		return nil, err
	}
	res, err := ctl.Service.Paginate(c.Request.Context(), opts)
	if err != nil {
		return nil, err
	}
	res = resource.NormalizeResult(res)
	return Reply{Status: http.StatusOK, Data: res, Pagination: res.Meta}, nil
}

// validatePatch applies the binding rules of the fields present in patch only;
// absent fields keep their stored values and are not checked.
func validatePatch(in any, patch map[string]any) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok || v == nil {
		return nil
	}
	names := patchFields(reflect.TypeOf(in), patch)
	if len(names) == 0 {
		return nil
	}
	err := v.StructPartial(in, keys(names)...)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return errs.BadRequest("Invalid request body", bodyError(err))
	}
	out := make([]errs.FieldError, 0, len(ves))
	for _, fe := range ves {
		field := names[fe.StructField()]
		if field == "" {
			field = fe.Field()
		}
		out = append(out, errs.FieldError{Field: field, Code: "invalid", Message: field + " failed on the '" + fe.Tag() + "' rule"})
	}
	return errs.BadRequest("Invalid request body", out...)
}

// patchFields maps the Go names of top-level fields present in patch to their JSON names.
func patchFields(t reflect.Type, patch map[string]any) map[string]string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	out := map[string]string{}
	if t.Kind() != reflect.Struct {
		return out
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous || !f.IsExported() {
			continue
		}
		name := strings.Split(f.Tag.Get("json"), ",")[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		if _, ok := patch[name]; ok {
			out[f.Name] = name
		}
	}
	return out
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func bodyError(err error) errs.FieldError {
	return errs.FieldError{Field: "body", Code: "invalid", Message: err.Error()}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
