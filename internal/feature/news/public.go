package news

import (
	"context"

	"go-gin-resource-api/internal/core/errs"
	"go-gin-resource-api/internal/docstore"
	"go-gin-resource-api/internal/domain"
	"go-gin-resource-api/internal/resource"
)

// PublicService exposes published items only.
type PublicService struct {
	*Service
}

func (s PublicService) GetAll(ctx context.Context) ([]*domain.NewsItem, error) {
	res, err := s.Paginate(ctx, resource.PaginationOptions{All: true})
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (s PublicService) GetByID(ctx context.Context, id string) (*domain.NewsItem, error) {
	n, err := s.Service.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !n.Published {
		return nil, errs.NotFound("Resource not found")
	}
	return n, nil
}

func (s PublicService) Paginate(ctx context.Context, opts resource.PaginationOptions) (*resource.PaginationResult[*domain.NewsItem], error) {
	// 已发布条件放最前，调用方的过滤条件依次追加
	opts.Filters = append([]docstore.Filter{{Key: fieldPublished, Op: docstore.OpEq, Value: true}}, opts.Filters...)
	return s.Service.Paginate(ctx, opts)
}
