package resource

import (
	"context"

	"go-gin-resource-api/internal/domain"
)

// Repo is what a Service needs from the persistence layer.
type Repo[T domain.Entity] interface {
	Create(ctx context.Context, data T) (T, error)
	CreateWithID(ctx context.Context, id string, data T) (T, error)
	FindAll(ctx context.Context) ([]T, error)
	FindByID(ctx context.Context, id string) (T, error)
	Update(ctx context.Context, id string, patch map[string]any) (T, error)
	Delete(ctx context.Context, id string) (bool, error)
	Paginate(ctx context.Context, opts PaginationOptions) (*PaginationResult[T], error)
}

// Service is consumed by the HTTP controller. Resource packages embed
// *BaseService and override methods to add business rules.
type Service[T domain.Entity] interface {
	Create(ctx context.Context, data T) (T, error)
	CreateWithID(ctx context.Context, id string, data T) (T, error)
	GetAll(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id string) (T, error)
	Update(ctx context.Context, id string, patch map[string]any) (T, error)
	Delete(ctx context.Context, id string) (bool, error)
	Paginate(ctx context.Context, opts PaginationOptions) (*PaginationResult[T], error)
}

// BaseService delegates every call to the repository.
type BaseService[T domain.Entity] struct {
	Repo Repo[T]
}

func NewService[T domain.Entity](repo Repo[T]) *BaseService[T] {
	return &BaseService[T]{Repo: repo}
}

func (s *BaseService[T]) Create(ctx context.Context, data T) (T, error) {
	return s.Repo.Create(ctx, data)
}

func (s *BaseService[T]) CreateWithID(ctx context.Context, id string, data T) (T, error) {
	return s.Repo.CreateWithID(ctx, id, data)
}

func (s *BaseService[T]) GetAll(ctx context.Context) ([]T, error) {
	return s.Repo.FindAll(ctx)
}

func (s *BaseService[T]) GetByID(ctx context.Context, id string) (T, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *BaseService[T]) Update(ctx context.Context, id string, patch map[string]any) (T, error) {
	return s.Repo.Update(ctx, id, patch)
}

func (s *BaseService[T]) Delete(ctx context.Context, id string) (bool, error) {
	return s.Repo.Delete(ctx, id)
}

// Paginate never hands a nil result or nil fields to the caller.
func (s *BaseService[T]) Paginate(ctx context.Context, opts PaginationOptions) (*PaginationResult[T], error) {
	res, err := s.Repo.Paginate(ctx, opts)
	if err != nil {
		return nil, err
	}
	return NormalizeResult(res), nil
}

// NormalizeResult fills a nil or partial result with the empty-page defaults.
func NormalizeResult[T any](res *PaginationResult[T]) *PaginationResult[T] {
	if res == nil {
		res = &PaginationResult[T]{}
	}
	if res.Data == nil {
		res.Data = []T{}
	}
	if res.Meta == nil {
		res.Meta = &Meta{Page: DefaultPage, Limit: DefaultLimit}
	}
	if res.Meta.Page < 1 {
		res.Meta.Page = DefaultPage
	}
	if res.Meta.Limit < 1 {
		res.Meta.Limit = DefaultLimit
	}
	if res.Meta.TotalItems < 0 {
		res.Meta.TotalItems = 0
	}
	if res.Meta.TotalPages < 0 {
		res.Meta.TotalPages = 0
	}
	return res
}
