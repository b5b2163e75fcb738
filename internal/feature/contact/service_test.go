package contact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-gin-resource-api/internal/core/errs"
	"go-gin-resource-api/internal/docstore"
	"go-gin-resource-api/internal/domain"
	"go-gin-resource-api/internal/resource"
)

func newTestService() *Service {
	store := docstore.NewMemory(func() *domain.Contact { return &domain.Contact{} })
	return NewService(resource.NewRepository[*domain.Contact](store))
}

func TestCreateNormalizesEmail(t *testing.T) {
	s := newTestService()
	c, err := s.Create(context.Background(), &domain.Contact{Name: "  Ann ", Email: " Ann@Example.COM "})
	require.NoError(t, err)
	assert.Equal(t, "Ann", c.Name)
	assert.Equal(t, "ann@example.com", c.Email)
	assert.NotEmpty(t, c.ID)
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	_, err := s.Create(ctx, &domain.Contact{Name: "a", Email: "a@example.com"})
	require.NoError(t, err)

	_, err = s.Create(ctx, &domain.Contact{Name: "b", Email: "A@example.com"})
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindConflict))
	e, _ := errs.As(err)
	require.Len(t, e.Errors, 1)
	assert.Equal(t, "duplicate", e.Errors[0].Code)

	_, err = s.Create(ctx, &domain.Contact{Name: "c", Email: "  "})
	assert.True(t, errs.IsKind(err, errs.KindBadRequest))
}

func TestUpdateEmail(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	a, err := s.Create(ctx, &domain.Contact{Name: "a", Email: "a@example.com"})
	require.NoError(t, err)
	_, err = s.Create(ctx, &domain.Contact{Name: "b", Email: "b@example.com"})
	require.NoError(t, err)

	// 改成自己的邮箱不算冲突
	got, err := s.Update(ctx, a.ID, map[string]any{"email": "A@EXAMPLE.com", "subject": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email)
	assert.Equal(t, "hi", got.Subject)

	_, err = s.Update(ctx, a.ID, map[string]any{"email": "b@example.com"})
	assert.True(t, errs.IsKind(err, errs.KindConflict))
}
