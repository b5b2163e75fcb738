// Package resource holds the generic CRUD and pagination pipeline shared by
// every resource: Repository over a docstore.Store, and the Service layer
// where resource-specific rules are added.
package resource

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"go-gin-resource-api/internal/core/errs"
	"go-gin-resource-api/internal/docstore"
	"go-gin-resource-api/internal/domain"
)

// Repository implements CRUD and pagination for one resource type on top of
// an injected store. It owns the createdAt/updatedAt stamping contract.
type Repository[T domain.Entity] struct {
	store docstore.Store[T]
	now   func() time.Time
}

type RepositoryOption[T domain.Entity] func(*Repository[T])

// WithClock replaces time.Now for timestamp stamping.
func WithClock[T domain.Entity](now func() time.Time) RepositoryOption[T] {
	return func(r *Repository[T]) { r.now = now }
}

func NewRepository[T domain.Entity](store docstore.Store[T], opts ...RepositoryOption[T]) *Repository[T] {
	r := &Repository[T]{store: store, now: time.Now}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Repository[T]) stamp() time.Time { return r.now().UTC() }

func (r *Repository[T]) Create(ctx context.Context, data T) (T, error) {
	t := r.stamp()
	data.SetCreatedAt(t)
	data.SetUpdatedAt(t)
	out, err := r.store.Create(ctx, data)
	if err != nil {
		return out, mapStoreErr("create", err)
	}
	return out, nil
}

// CreateWithID stores data under the caller-supplied id.
func (r *Repository[T]) CreateWithID(ctx context.Context, id string, data T) (T, error) {
	t := r.stamp()
	data.SetCreatedAt(t)
	data.SetUpdatedAt(t)
	out, err := r.store.CreateWithID(ctx, id, data)
	if err != nil {
		return out, mapStoreErr("create with id", err)
	}
	return out, nil
}

func (r *Repository[T]) FindAll(ctx context.Context) ([]T, error) {
	out, err := r.store.FindAll(ctx)
	if err != nil {
		return nil, mapStoreErr("find all", err)
	}
	return out, nil
}

func (r *Repository[T]) FindByID(ctx context.Context, id string) (T, error) {
	out, err := r.store.FindByID(ctx, id)
	if err != nil {
		return out, mapStoreErr("find by id", err)
	}
	return out, nil
}

// Update applies patch to an existing record. id and createdAt in the patch
// are ignored; updatedAt is always refreshed.
func (r *Repository[T]) Update(ctx context.Context, id string, patch map[string]any) (T, error) {
	if _, err := r.FindByID(ctx, id); err != nil {
		var zero T
		return zero, err
	}
	p := maps.Clone(patch)
	if p == nil {
		p = map[string]any{}
	}
	delete(p, domain.FieldID)
	delete(p, domain.FieldCreatedAt)
	p[domain.FieldUpdatedAt] = r.stamp()

	out, err := r.store.Update(ctx, id, p)
	if err != nil {
		return out, mapStoreErr("update", err)
	}
	return out, nil
}

func (r *Repository[T]) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := r.FindByID(ctx, id); err != nil {
		return false, err
	}
	ok, err := r.store.Delete(ctx, id)
	if err != nil {
		return false, mapStoreErr("delete", err)
	}
	if !ok {
		// 校验与删除之间被并发删除
		return false, errs.NotFound("")
	}
	return true, nil
}

// Paginate reads one window and, in a separate round trip, the total count of
// the same filter set. The two reads are not isolated from concurrent writes.
func (r *Repository[T]) Paginate(ctx context.Context, opts PaginationOptions) (*PaginationResult[T], error) {
	opts = opts.withDefaults()

	q := docstore.Query{Filters: opts.Filters, OrderBy: opts.OrderBy}
	if !opts.All {
		q.Cursor = opts.Cursor
		if q.Cursor == "" {
			off, ok := opts.offset()
			if !ok {
				return nil, errs.BadRequest("Invalid query parameters",
					errs.FieldError{Field: "page", Code: "invalid", Message: "page is out of range"})
			}
			q.Offset = off
		}
		q.Limit = opts.Limit
	}

	data, err := r.store.Query(ctx, q)
	if err != nil {
		return nil, mapStoreErr("paginate", err)
	}
	total, err := r.store.Count(ctx, opts.Filters)
	if err != nil {
		return nil, mapStoreErr("count", err)
	}
	if data == nil {
		data = []T{}
	}

	var meta Meta
	if opts.All {
		meta = NewMeta(1, max(int(total), 1), total)
	} else {
		meta = NewMeta(opts.Page, opts.Limit, total)
		if meta.HasNext && len(data) == opts.Limit {
			meta.NextCursor = data[len(data)-1].GetID()
		}
	}
	return &PaginationResult[T]{Data: data, Meta: &meta}, nil
}

// mapStoreErr applies the uniform store error policy. The original error is
// kept as the cause for the failure log and never reaches the client message.
func mapStoreErr(op string, err error) error {
	if _, ok := errs.As(err); ok {
		return err
	}
	cause := fmt.Errorf("%s: %w", op, err)
	switch {
	case errors.Is(err, docstore.ErrPermissionDenied):
		return errs.Wrap(errs.KindForbidden, cause, "")
	case errors.Is(err, docstore.ErrNotFound):
		return errs.Wrap(errs.KindNotFound, cause, "Resource not found")
	case errors.Is(err, docstore.ErrInvalidQuery):
		return errs.Wrap(errs.KindBadRequest, cause, "Invalid field or operator")
	}
	return errs.Wrap(errs.KindInternalServerError, cause, "")
}
