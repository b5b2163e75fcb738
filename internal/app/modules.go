package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"go-gin-resource-api/internal/core/errs"
	"go-gin-resource-api/internal/docstore"
	"go-gin-resource-api/internal/domain"
	"go-gin-resource-api/internal/feature/chat"
	"go-gin-resource-api/internal/feature/contact"
	"go-gin-resource-api/internal/feature/news"
	"go-gin-resource-api/internal/feature/user"
	"go-gin-resource-api/internal/resource"
	"go-gin-resource-api/internal/transport/http/ez"
	mdw "go-gin-resource-api/internal/transport/http/middleware"
)

// NewStore picks the store for one collection from the store config.
func NewStore[T domain.Entity](e *Env, collection string, newFn func() T) (docstore.Store[T], error) {
	if e.DB == nil {
		return docstore.NewMemory(newFn), nil
	}
	g, err := docstore.NewGorm(e.DB, newFn)
	if err != nil {
		return nil, fmt.Errorf("%s store: %w", collection, err)
	}
	if e.Cache != nil {
		return docstore.NewCached[T](g, e.Cache, collection, e.Cfg.Store.CacheTTL(), e.Log), nil
	}
	return g, nil
}

func newRepo[T domain.Entity](e *Env, collection string, newFn func() T) (*resource.Repository[T], error) {
	st, err := NewStore(e, collection, newFn)
	if err != nil {
		return nil, err
	}
	return resource.NewRepository(st), nil
}

// Modules is the explicit module list handed to the router registry.
type Modules struct {
	Users    *user.Module
	Contacts *contact.Module
	News     *news.Module
	Chat     *chat.Module
}

func (m *Modules) All() []any { return []any{m.Users, m.Contacts, m.News, m.Chat} }

func (e *Env) Modules() (*Modules, error) {
	users, err := newRepo(e, "users", func() *domain.User { return &domain.User{} })
	if err != nil {
		return nil, err
	}
	contacts, err := newRepo(e, "contacts", func() *domain.Contact { return &domain.Contact{} })
	if err != nil {
		return nil, err
	}
	items, err := newRepo(e, "news", func() *domain.NewsItem { return &domain.NewsItem{} })
	if err != nil {
		return nil, err
	}
	chats, err := newRepo(e, "chat_requests", func() *domain.ChatRequest { return &domain.ChatRequest{} })
	if err != nil {
		return nil, err
	}

	lc := ez.NewLifecycle(e.Log.Named("http"), e.Sink)
	authn := mdw.AuthJWT(e.JWT, "")
	limit := e.Cfg.Limits.MaxPageLimit

	return &Modules{
		Users:    user.NewModule(user.NewService(users), e.JWT, lc, authn, limit),
		Contacts: contact.NewModule(contact.NewService(contacts), lc, limit),
		News:     news.NewModule(news.NewService(items), lc, limit),
		Chat:     chat.NewModule(chat.NewService(chats), lc, authn, limit),
	}, nil
}

// SeedAdmin makes sure the configured admin account exists.
func (e *Env) SeedAdmin(ctx context.Context, m *Modules) error {
	email, pw := e.Cfg.Seed.AdminEmail, e.Cfg.Seed.AdminPassword
	if email == "" {
		return nil
	}
	svc := m.Users.Handler.Service
	if _, err := svc.Authenticate(ctx, email, pw); err == nil {
		return nil
	}
	_, err := svc.Create(ctx, &domain.User{Email: email, Password: pw, Role: domain.RoleAdmin, Name: "admin"})
	if errs.IsKind(err, errs.KindConflict) {
		// 账号已存在但密码被改过
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	e.Log.Info("admin account seeded", zap.String("email", email))
	return nil
}
