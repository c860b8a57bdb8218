package memrepo

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
)

var (
	_ repository.UserRepository          = (*UserRepo)(nil)
	_ repository.PasswordResetRepository = (*ResetRepo)(nil)
	_ repository.RoleRepository          = (*RoleRepo)(nil)
	_ repository.PermissionRepository    = (*PermissionRepo)(nil)
)

type UserRepo struct{ s *Store }

func (r *UserRepo) withRole(u entity.User) *entity.User {
	if role, ok := r.s.roles[u.RoleID]; ok {
		u.RoleName = role.Name
	}
	return &u
}

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return err
	}
	for _, other := range r.s.users {
		if strings.EqualFold(other.Email, u.Email) ||
			(other.DocumentType == u.DocumentType && other.DocumentNumber == u.DocumentNumber) {
			return domain.ErrDuplicate
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return r.withRole(u), nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return r.withRole(u), nil
		}
	}
	return nil, nil
}

func (r *UserRepo) GetByDocument(_ context.Context, docType, docNumber string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.DocumentType == docType && u.DocumentNumber == docNumber {
			return r.withRole(u), nil
		}
	}
	return nil, nil
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) List(_ context.Context, limit, offset int) ([]*entity.User, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, r.withRole(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return page(out, limit, offset), len(out), nil
}

func (r *UserRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return deleteOrNotFound(r.s.users, id)
}

type ResetRepo struct{ s *Store }

func (r *ResetRepo) Create(_ context.Context, p *entity.PasswordReset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.resets[p.ID] = *p
	return nil
}

func (r *ResetRepo) GetByTokenHash(_ context.Context, hash string) (*entity.PasswordReset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.resets {
		if p.TokenHash == hash {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *ResetRepo) Claim(_ context.Context, hash string, now time.Time) (*entity.PasswordReset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, p := range r.s.resets {
		if p.TokenHash != hash {
			continue
		}
		if !p.Usable(now) {
			return nil, domain.ErrInvalidToken
		}
		used := now
		p.UsedAt = &used
		r.s.resets[id] = p
		cp := p
		return &cp, nil
	}
	return nil, domain.ErrInvalidToken
}

// All devuelve todas las solicitudes de recuperación (inspección en tests).
func (r *ResetRepo) All() []entity.PasswordReset {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entity.PasswordReset, 0, len(r.s.resets))
	for _, p := range r.s.resets {
		out = append(out, p)
	}
	return out
}

type RoleRepo struct{ s *Store }

func (r *RoleRepo) Create(_ context.Context, role *entity.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.roles {
		if strings.EqualFold(other.Name, role.Name) {
			return domain.ErrDuplicate
		}
	}
	r.s.roles[role.ID] = *role
	return nil
}

func (r *RoleRepo) GetByID(_ context.Context, id string) (*entity.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	role, ok := r.s.roles[id]
	if !ok {
		return nil, nil
	}
	return &role, nil
}

func (r *RoleRepo) GetByName(_ context.Context, name string) (*entity.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, role := range r.s.roles {
		if strings.EqualFold(role.Name, name) {
			cp := role
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *RoleRepo) List(_ context.Context) ([]*entity.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Role, 0, len(r.s.roles))
	for _, role := range r.s.roles {
		cp := role
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *RoleRepo) Update(_ context.Context, role *entity.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.roles[role.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.roles[role.ID] = *role
	return nil
}

func (r *RoleRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.RoleID == id {
			return domain.ErrConflict
		}
	}
	delete(r.s.rolePerms, id)
	return deleteOrNotFound(r.s.roles, id)
}

func (r *RoleRepo) SetPermissions(_ context.Context, roleID string, ids []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.roles[roleID]; !ok {
		return domain.ErrNotFound
	}
	for _, id := range ids {
		if _, ok := r.s.perms[id]; !ok {
			return domain.ErrConflict
		}
	}
	r.s.rolePerms[roleID] = append([]string(nil), ids...)
	return nil
}

func (r *RoleRepo) ListPermissions(_ context.Context, roleID string) ([]*entity.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Permission{}
	for _, id := range r.s.rolePerms[roleID] {
		if p, ok := r.s.perms[id]; ok {
			cp := p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type PermissionRepo struct{ s *Store }

func (r *PermissionRepo) Create(_ context.Context, p *entity.Permission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.perms {
		if other.Resource == p.Resource && other.Action == p.Action {
			return domain.ErrDuplicate
		}
	}
	r.s.perms[p.ID] = *p
	return nil
}

func (r *PermissionRepo) GetByID(_ context.Context, id string) (*entity.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.perms[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *PermissionRepo) GetByResourceAction(_ context.Context, resource, action string) (*entity.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.perms {
		if p.Resource == resource && p.Action == action {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *PermissionRepo) List(_ context.Context) ([]*entity.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Permission, 0, len(r.s.perms))
	for _, p := range r.s.perms {
		cp := p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out, nil
}

func (r *PermissionRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for roleID, ids := range r.s.rolePerms {
		kept := ids[:0:0]
		for _, pid := range ids {
			if pid != id {
				kept = append(kept, pid)
			}
		}
		r.s.rolePerms[roleID] = kept
	}
	return deleteOrNotFound(r.s.perms, id)
}
