package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/tidwall/gjson"

	"go-gin-resource-api/internal/domain"
	"go-gin-resource-api/pkg/utils"
)

// Memory is an in-process document store. Documents are kept as raw JSON so
// filters and ordering address the same field names clients see on the wire.
type Memory[T domain.Entity] struct {
	mu    sync.RWMutex
	newFn func() T
	idGen func() string
	docs  map[string][]byte
	order []string // 插入顺序，无排序字段时作为默认顺序

	readOnly bool
}

type MemoryOption func(*memoryOpts)

type memoryOpts struct {
	idGen    func() string
	readOnly bool
}

// WithIDGenerator overrides the id source used by Create.
func WithIDGenerator(fn func() string) MemoryOption {
	return func(o *memoryOpts) { o.idGen = fn }
}

// ReadOnly makes every write fail with ErrPermissionDenied.
func ReadOnly() MemoryOption {
	return func(o *memoryOpts) { o.readOnly = true }
}

func NewMemory[T domain.Entity](newFn func() T, opts ...MemoryOption) *Memory[T] {
	o := memoryOpts{idGen: utils.NewID}
	for _, opt := range opts {
		opt(&o)
	}
	return &Memory[T]{
		newFn:    newFn,
		idGen:    o.idGen,
		docs:     make(map[string][]byte),
		readOnly: o.readOnly,
	}
}

func (m *Memory[T]) Create(ctx context.Context, data T) (T, error) {
	return m.put(ctx, m.idGen(), data)
}

func (m *Memory[T]) CreateWithID(ctx context.Context, id string, data T) (T, error) {
	return m.put(ctx, id, data)
}

func (m *Memory[T]) put(ctx context.Context, id string, data T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if m.readOnly {
		return zero, ErrPermissionDenied
	}
	data.SetID(id)
	b, err := json.Marshal(data)
	if err != nil {
		return zero, fmt.Errorf("encode document: %w", err)
	}

	m.mu.Lock()
	if _, ok := m.docs[id]; !ok {
		m.order = append(m.order, id)
	}
	m.docs[id] = b
	m.mu.Unlock()

	return m.decode(b)
}

func (m *Memory[T]) FindByID(ctx context.Context, id string) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	m.mu.RLock()
	b, ok := m.docs[id]
	m.mu.RUnlock()
	if !ok {
		return zero, ErrNotFound
	}
	return m.decode(b)
}

func (m *Memory[T]) FindAll(ctx context.Context) ([]T, error) {
	return m.Query(ctx, Query{})
}

func (m *Memory[T]) Update(ctx context.Context, id string, patch map[string]any) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if m.readOnly {
		return zero, ErrPermissionDenied
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.docs[id]
	if !ok {
		return zero, ErrNotFound
	}
	doc := map[string]any{}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return zero, fmt.Errorf("decode document %s: %w", id, err)
	}
	for k, v := range patch {
		doc[k] = v
	}
	doc[domain.FieldID] = id

	merged, err := json.Marshal(doc)
	if err != nil {
		return zero, fmt.Errorf("encode document %s: %w", id, err)
	}
	out, err := m.decode(merged)
	if err != nil {
		return zero, err
	}
	// 回写经过类型校验后的规范化文档
	canonical, err := json.Marshal(out)
	if err != nil {
		return zero, fmt.Errorf("encode document %s: %w", id, err)
	}
	m.docs[id] = canonical
	return out, nil
}

func (m *Memory[T]) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if m.readOnly {
		return false, ErrPermissionDenied
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return false, nil
	}
	delete(m.docs, id)
	if i := slices.Index(m.order, id); i >= 0 {
		m.order = slices.Delete(m.order, i, i+1)
	}
	return true, nil
}

type memDoc struct {
	id  string
	raw []byte
}

func (m *Memory[T]) Query(ctx context.Context, q Query) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docs := m.matching(q.Filters)

	if q.OrderBy != nil && q.OrderBy.Field != "" {
		desc := q.OrderBy.Direction == Desc
		slices.SortStableFunc(docs, func(a, b memDoc) int {
			c := compareResults(gjson.GetBytes(a.raw, q.OrderBy.Field), gjson.GetBytes(b.raw, q.OrderBy.Field))
			if desc {
				return -c
			}
			return c
		})
	}

	switch {
	case q.Cursor != "":
		i := slices.IndexFunc(docs, func(d memDoc) bool { return d.id == q.Cursor })
		if i < 0 {
			return nil, fmt.Errorf("cursor %s: %w", q.Cursor, ErrNotFound)
		}
		docs = docs[i+1:]
	case q.Offset > 0:
		if q.Offset >= len(docs) {
			docs = nil
		} else {
			docs = docs[q.Offset:]
		}
	}
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}

	out := make([]T, 0, len(docs))
	for _, d := range docs {
		v, err := m.decode(d.raw)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (m *Memory[T]) Count(ctx context.Context, filters []Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return int64(len(m.matching(filters))), nil
}

// matching snapshots the documents that satisfy every filter, in insertion order.
func (m *Memory[T]) matching(filters []Filter) []memDoc {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]memDoc, 0, len(m.order))
	for _, id := range m.order {
		raw := m.docs[id]
		if matchAll(raw, filters) {
			out = append(out, memDoc{id: id, raw: raw})
		}
	}
	return out
}

func (m *Memory[T]) decode(b []byte) (T, error) {
	v := m.newFn()
	if err := json.Unmarshal(b, v); err != nil {
		var zero T
		return zero, fmt.Errorf("decode document: %w", err)
	}
	return v, nil
}
