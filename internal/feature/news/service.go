// Package news is the published news feed.
package news

import (
	"context"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"go-gin-resource-api/internal/core/errs"
	"go-gin-resource-api/internal/domain"
	"go-gin-resource-api/internal/resource"
)

const (
	fieldSlug        = "slug"
	fieldPublished   = "published"
	fieldPublishedAt = "publishedAt"
)

type Service struct {
	*resource.BaseService[*domain.NewsItem]
	now func() time.Time
}

func NewService(repo resource.Repo[*domain.NewsItem]) *Service {
	return &Service{BaseService: resource.NewService(repo), now: time.Now}
}

// Create derives the slug from the title when none is given. Slugs are unique.
func (s *Service) Create(ctx context.Context, n *domain.NewsItem) (*domain.NewsItem, error) {
	if err := s.prepare(ctx, n, ""); err != nil {
		return nil, err
	}
	return s.BaseService.Create(ctx, n)
}

func (s *Service) CreateWithID(ctx context.Context, id string, n *domain.NewsItem) (*domain.NewsItem, error) {
	if err := s.prepare(ctx, n, id); err != nil {
		return nil, err
	}
	return s.BaseService.CreateWithID(ctx, id, n)
}

// Update keeps the slug stable on title changes; publishing stamps publishedAt once.
func (s *Service) Update(ctx context.Context, id string, patch map[string]any) (*domain.NewsItem, error) {
	if v, ok := patch[fieldSlug]; ok {
		raw, _ := v.(string)
		sl := Slugify(raw)
		if sl == "" {
			return nil, errs.BadRequest("Invalid news item", errs.FieldError{Field: fieldSlug, Code: "invalid", Message: "slug must contain letters or digits"})
		}
		if err := s.ensureUnique(ctx, sl, id); err != nil {
			return nil, err
		}
		patch[fieldSlug] = sl
	}
	if pub, ok := patch[fieldPublished].(bool); ok && pub {
		if _, set := patch[fieldPublishedAt]; !set {
			cur, err := s.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if cur.PublishedAt == nil {
				patch[fieldPublishedAt] = s.now().UTC()
			}
		}
	}
	return s.BaseService.Update(ctx, id, patch)
}

func (s *Service) prepare(ctx context.Context, n *domain.NewsItem, selfID string) error {
	n.Title = strings.TrimSpace(n.Title)
	if n.Slug == "" {
		n.Slug = n.Title
	}
	n.Slug = Slugify(n.Slug)
	if n.Slug == "" {
		return errs.BadRequest("Invalid news item", errs.FieldError{Field: fieldSlug, Code: "invalid", Message: "slug must contain letters or digits"})
	}
	if n.Published && n.PublishedAt == nil {
		t := s.now().UTC()
		n.PublishedAt = &t
	}
	return s.ensureUnique(ctx, n.Slug, selfID)
}

func (s *Service) ensureUnique(ctx context.Context, sl, selfID string) error {
	taken, err := resource.Taken(ctx, s.Repo, fieldSlug, sl, selfID)
	if err != nil {
		return err
	}
	if taken {
		return errs.Conflict("Slug already in use", errs.FieldError{Field: fieldSlug, Code: "duplicate", Message: "slug " + sl + " is taken"})
	}
	return nil
}

// Slugify transliterates s to ASCII and joins its words with '-'.
func Slugify(s string) string {
	return slug.Make(s)
}
