// Package contact is the contact-form resource: messages left by visitors.
package contact

import (
	"context"
	"strings"

	"go-gin-resource-api/internal/core/errs"
	"go-gin-resource-api/internal/domain"
	"go-gin-resource-api/internal/resource"
)

const fieldEmail = "email"

// Service 在通用 CRUD 之上加：邮箱规范化 + 唯一
type Service struct {
	*resource.BaseService[*domain.Contact]
}

func NewService(repo resource.Repo[*domain.Contact]) *Service {
	return &Service{BaseService: resource.NewService(repo)}
}

func (s *Service) Create(ctx context.Context, c *domain.Contact) (*domain.Contact, error) {
	if err := s.prepare(ctx, c, ""); err != nil {
		return nil, err
	}
	return s.BaseService.Create(ctx, c)
}

func (s *Service) CreateWithID(ctx context.Context, id string, c *domain.Contact) (*domain.Contact, error) {
	if err := s.prepare(ctx, c, id); err != nil {
		return nil, err
	}
	return s.BaseService.CreateWithID(ctx, id, c)
}

func (s *Service) Update(ctx context.Context, id string, patch map[string]any) (*domain.Contact, error) {
	if v, ok := patch[fieldEmail]; ok {
		email, _ := v.(string)
		email = normalizeEmail(email)
		if email == "" {
			return nil, errs.BadRequest("Invalid contact", errs.FieldError{Field: fieldEmail, Code: "required", Message: "email is required"})
		}
		if err := s.ensureUnique(ctx, email, id); err != nil {
			return nil, err
		}
		patch[fieldEmail] = email
	}
	return s.BaseService.Update(ctx, id, patch)
}

func (s *Service) prepare(ctx context.Context, c *domain.Contact, selfID string) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = normalizeEmail(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Subject = strings.TrimSpace(c.Subject)
	if c.Email == "" {
		return errs.BadRequest("Invalid contact", errs.FieldError{Field: fieldEmail, Code: "required", Message: "email is required"})
	}
	return s.ensureUnique(ctx, c.Email, selfID)
}

func (s *Service) ensureUnique(ctx context.Context, email, selfID string) error {
	taken, err := resource.Taken(ctx, s.Repo, fieldEmail, email, selfID)
	if err != nil {
		return err
	}
	if taken {
		return errs.Conflict("Contact already exists", errs.FieldError{Field: fieldEmail, Code: "duplicate", Message: "email is already registered"})
	}
	return nil
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
