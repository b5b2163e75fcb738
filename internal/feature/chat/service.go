// Package chat stores AI-chat requests per user.
package chat

import (
	"context"

	"go-gin-resource-api/internal/core/auth"
	"go-gin-resource-api/internal/core/errs"
	"go-gin-resource-api/internal/docstore"
	"go-gin-resource-api/internal/domain"
	"go-gin-resource-api/internal/resource"
)

const fieldOwnerID = "ownerId"

var validStatus = map[string]bool{
	domain.ChatStatusPending:   true,
	domain.ChatStatusCompleted: true,
	domain.ChatStatusFailed:    true,
}

// Service scopes every operation to the caller: the owner comes from the
// principal in ctx, and only admins see other users' requests.
type Service struct {
	*resource.BaseService[*domain.ChatRequest]
}

func NewService(repo resource.Repo[*domain.ChatRequest]) *Service {
	return &Service{BaseService: resource.NewService(repo)}
}

func principal(ctx context.Context) (*auth.Claims, error) {
	c, ok := auth.ClaimsFrom(ctx)
	if !ok || c.UID == "" {
		return nil, errs.Unauthorized("")
	}
	return c, nil
}

func (s *Service) Create(ctx context.Context, r *domain.ChatRequest) (*domain.ChatRequest, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if err := prepare(r, p); err != nil {
		return nil, err
	}
	return s.BaseService.Create(ctx, r)
}

func (s *Service) CreateWithID(ctx context.Context, id string, r *domain.ChatRequest) (*domain.ChatRequest, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if err := prepare(r, p); err != nil {
		return nil, err
	}
	return s.BaseService.CreateWithID(ctx, id, r)
}

func prepare(r *domain.ChatRequest, p *auth.Claims) error {
	r.OwnerID = p.UID
	if r.Status == "" {
		r.Status = domain.ChatStatusPending
	}
	if !validStatus[r.Status] {
		return errs.UnprocessableEntity("Invalid chat request", statusError(r.Status))
	}
	return nil
}

func (s *Service) GetAll(ctx context.Context) ([]*domain.ChatRequest, error) {
	res, err := s.Paginate(ctx, resource.PaginationOptions{All: true})
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.ChatRequest, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	r, err := s.BaseService.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// 他人的记录按不存在处理
	if p.Role != domain.RoleAdmin && r.OwnerID != p.UID {
		return nil, errs.NotFound("Resource not found")
	}
	return r, nil
}

func (s *Service) Update(ctx context.Context, id string, patch map[string]any) (*domain.ChatRequest, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	delete(patch, fieldOwnerID)
	if v, ok := patch["status"]; ok {
		st, _ := v.(string)
		if !validStatus[st] {
			return nil, errs.UnprocessableEntity("Invalid chat request", statusError(st))
		}
	}
	return s.BaseService.Update(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return false, err
	}
	return s.BaseService.Delete(ctx, id)
}

func (s *Service) Paginate(ctx context.Context, opts resource.PaginationOptions) (*resource.PaginationResult[*domain.ChatRequest], error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if p.Role != domain.RoleAdmin {
		opts.Filters = append([]docstore.Filter{{Key: fieldOwnerID, Op: docstore.OpEq, Value: p.UID}}, opts.Filters...)
	}
	return s.BaseService.Paginate(ctx, opts)
}

func statusError(st string) errs.FieldError {
	return errs.FieldError{Field: "status", Code: "invalid", Message: "unknown status " + st}
}
