// Package user manages accounts: the admin CRUD surface plus login and /me.
package user

import (
	"context"
	"strings"

	"go-gin-resource-api/internal/core/errs"
	"go-gin-resource-api/internal/domain"
	"go-gin-resource-api/internal/resource"
	"go-gin-resource-api/pkg/utils"
)

const (
	fieldEmail        = "email"
	fieldPassword     = "password"
	fieldPasswordHash = "passwordHash"
	fieldRole         = "role"

	minPasswordLen = 8
)

// Service hashes passwords on the way in and strips credentials on the way out.
type Service struct {
	*resource.BaseService[*domain.User]
}

func NewService(repo resource.Repo[*domain.User]) *Service {
	return &Service{BaseService: resource.NewService(repo)}
}

func (s *Service) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	if err := s.prepare(ctx, u, ""); err != nil {
		return nil, err
	}
	out, err := s.BaseService.Create(ctx, u)
	return out.Public(), err
}

func (s *Service) CreateWithID(ctx context.Context, id string, u *domain.User) (*domain.User, error) {
	if err := s.prepare(ctx, u, id); err != nil {
		return nil, err
	}
	out, err := s.BaseService.CreateWithID(ctx, id, u)
	return out.Public(), err
}

func (s *Service) GetAll(ctx context.Context) ([]*domain.User, error) {
	list, err := s.BaseService.GetAll(ctx)
	for _, u := range list {
		u.Public()
	}
	return list, err
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.BaseService.GetByID(ctx, id)
	return u.Public(), err
}

// Update 允许改密码（明文 password 字段），直接写 passwordHash 会被忽略
func (s *Service) Update(ctx context.Context, id string, patch map[string]any) (*domain.User, error) {
	delete(patch, fieldPasswordHash)
	if v, ok := patch[fieldPassword]; ok {
		pw, _ := v.(string)
		hash, err := hashPassword(pw)
		if err != nil {
			return nil, err
		}
		delete(patch, fieldPassword)
		patch[fieldPasswordHash] = hash
	}
	if v, ok := patch[fieldEmail]; ok {
		email, _ := v.(string)
		email = normalizeEmail(email)
		if err := s.ensureUnique(ctx, email, id); err != nil {
			return nil, err
		}
		patch[fieldEmail] = email
	}
	if v, ok := patch[fieldRole]; ok {
		role, _ := v.(string)
		if err := checkRole(role); err != nil {
			return nil, err
		}
	}
	u, err := s.BaseService.Update(ctx, id, patch)
	return u.Public(), err
}

func (s *Service) Paginate(ctx context.Context, opts resource.PaginationOptions) (*resource.PaginationResult[*domain.User], error) {
	res, err := s.BaseService.Paginate(ctx, opts)
	if err != nil {
		return nil, err
	}
	for _, u := range res.Data {
		u.Public()
	}
	return res, nil
}

// Authenticate checks credentials. Unknown email and wrong password give the
// same Unauthorized error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, ok, err := resource.FindOne(ctx, s.Repo, fieldEmail, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if !ok || !utils.CheckPassword(password, u.PasswordHash) {
		return nil, errs.Unauthorized("invalid credentials")
	}
	return u.Public(), nil
}

func (s *Service) prepare(ctx context.Context, u *domain.User, selfID string) error {
	u.Email = normalizeEmail(u.Email)
	u.Name = strings.TrimSpace(u.Name)
	if u.Name == "" {
		if at := strings.IndexByte(u.Email, '@'); at > 0 {
			u.Name = u.Email[:at]
		}
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	if err := checkRole(u.Role); err != nil {
		return err
	}
	hash, err := hashPassword(u.Password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.Password = ""
	return s.ensureUnique(ctx, u.Email, selfID)
}

func (s *Service) ensureUnique(ctx context.Context, email, selfID string) error {
	if email == "" {
		return errs.BadRequest("Invalid user", errs.FieldError{Field: fieldEmail, Code: "required", Message: "email is required"})
	}
	taken, err := resource.Taken(ctx, s.Repo, fieldEmail, email, selfID)
	if err != nil {
		return err
	}
	if taken {
		return errs.Conflict("User already exists", errs.FieldError{Field: fieldEmail, Code: "duplicate", Message: "email is already registered"})
	}
	return nil
}

func hashPassword(pw string) (string, error) {
	if len(pw) < minPasswordLen {
		return "", errs.UnprocessableEntity("Invalid user", errs.FieldError{Field: fieldPassword, Code: "too_short", Message: "password must be at least 8 characters"})
	}
	hash, err := utils.HashPassword(pw)
	if err != nil {
		return "", errs.Wrap(errs.KindInternalServerError, err, "")
	}
	return hash, nil
}

func checkRole(role string) error {
	switch role {
	case domain.RoleUser, domain.RoleAdmin:
		return nil
	}
	return errs.UnprocessableEntity("Invalid user", errs.FieldError{Field: fieldRole, Code: "invalid", Message: "role must be user or admin"})
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
