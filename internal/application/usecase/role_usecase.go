package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/domain/permission"
	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
)

// RoleUseCase administración de roles, permisos y asignaciones.
type RoleUseCase struct {
	roleRepo repository.RoleRepository
	permRepo repository.PermissionRepository
	authz    *AuthorizationService
}

// NewRoleUseCase construye el caso de uso.
func NewRoleUseCase(roleRepo repository.RoleRepository, permRepo repository.PermissionRepository, authz *AuthorizationService) *RoleUseCase {
	return &RoleUseCase{roleRepo: roleRepo, permRepo: permRepo, authz: authz}
}

// Create crea un rol.
func (uc *RoleUseCase) Create(ctx context.Context, in dto.RoleRequest) (*dto.RoleResponse, error) {
	name := strings.TrimSpace(in.Name)
	existing, err := uc.roleRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: rol %q", domain.ErrDuplicate, name)
	}
	now := time.Now()
	role := &entity.Role{ID: uuid.New().String(), Name: name, Description: in.Description, CreatedAt: now, UpdatedAt: now}
	if err := uc.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}
	return toRoleResponse(role, nil), nil
}

// GetByID rol con sus permisos asignados.
func (uc *RoleUseCase) GetByID(ctx context.Context, id string) (*dto.RoleResponse, error) {
	role, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	perms, err := uc.roleRepo.ListPermissions(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRoleResponse(role, perms), nil
}

// List todos los roles.
func (uc *RoleUseCase) List(ctx context.Context) ([]dto.RoleResponse, error) {
	roles, err := uc.roleRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, *toRoleResponse(r, nil))
	}
	return out, nil
}

// Update renombra o describe un rol. El rol administrador no se renombra.
func (uc *RoleUseCase) Update(ctx context.Context, id string, in dto.RoleRequest) (*dto.RoleResponse, error) {
	role, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if permission.IsAdminRole(role.Name) && !permission.IsAdminRole(name) {
		return nil, fmt.Errorf("%w: el rol administrador no se puede renombrar", domain.ErrConflict)
	}
	if !strings.EqualFold(name, role.Name) {
		other, err := uc.roleRepo.GetByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, fmt.Errorf("%w: rol %q", domain.ErrDuplicate, name)
		}
	}
	role.Name = name
	role.Description = in.Description
	role.UpdatedAt = time.Now()
	if err := uc.roleRepo.Update(ctx, role); err != nil {
		return nil, err
	}
	uc.authz.Invalidate(ctx, id)
	return toRoleResponse(role, nil), nil
}

// Delete elimina un rol sin usuarios asignados. El rol administrador no se elimina.
func (uc *RoleUseCase) Delete(ctx context.Context, id string) error {
	role, err := uc.get(ctx, id)
	if err != nil {
		return err
	}
	if permission.IsAdminRole(role.Name) {
		return fmt.Errorf("%w: el rol administrador no se puede eliminar", domain.ErrConflict)
	}
	if err := uc.roleRepo.Delete(ctx, id); err != nil {
		return err
	}
	uc.authz.Invalidate(ctx, id)
	return nil
}

// SetPermissions reemplaza el conjunto de permisos del rol e invalida su cache.
func (uc *RoleUseCase) SetPermissions(ctx context.Context, id string, in dto.SetRolePermissionsRequest) (*dto.RoleResponse, error) {
	if _, err := uc.get(ctx, id); err != nil {
		return nil, err
	}
	unique := make([]string, 0, len(in.PermissionIDs))
	seen := make(map[string]bool, len(in.PermissionIDs))
	for _, pid := range in.PermissionIDs {
		if seen[pid] {
			continue
		}
		seen[pid] = true
		p, err := uc.permRepo.GetByID(ctx, pid)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("%w: permiso %s no existe", domain.ErrInvalidInput, pid)
		}
		unique = append(unique, pid)
	}
	if err := uc.roleRepo.SetPermissions(ctx, id, unique); err != nil {
		return nil, err
	}
	uc.authz.Invalidate(ctx, id)
	return uc.GetByID(ctx, id)
}

// CreatePermission registra un permiso con recurso y acción normalizados.
func (uc *RoleUseCase) CreatePermission(ctx context.Context, in dto.CreatePermissionRequest) (*dto.PermissionResponse, error) {
	resource := permission.Normalize(in.Resource)
	action := permission.CanonicalAction(in.Action)
	if resource == "" || action == "" {
		return nil, fmt.Errorf("%w: recurso y acción obligatorios", domain.ErrInvalidInput)
	}
	existing, err := uc.permRepo.GetByResourceAction(ctx, resource, action)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: permiso %s", domain.ErrDuplicate, permission.Key(resource, action))
	}
	p := &entity.Permission{
		ID:          uuid.New().String(),
		Resource:    resource,
		Action:      action,
		Description: in.Description,
		CreatedAt:   time.Now(),
	}
	if err := uc.permRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	out := toPermissionResponse(p)
	return &out, nil
}

// ListPermissions catálogo completo.
func (uc *RoleUseCase) ListPermissions(ctx context.Context) ([]dto.PermissionResponse, error) {
	perms, err := uc.permRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PermissionResponse, 0, len(perms))
	for _, p := range perms {
		out = append(out, toPermissionResponse(p))
	}
	return out, nil
}

// DeletePermission elimina un permiso e invalida el cache de todos los roles.
func (uc *RoleUseCase) DeletePermission(ctx context.Context, id string) error {
	if err := uc.permRepo.Delete(ctx, id); err != nil {
		return err
	}
	roles, err := uc.roleRepo.List(ctx)
	if err != nil {
		return err
	}
	for _, r := range roles {
		uc.authz.Invalidate(ctx, r.ID)
	}
	return nil
}

// MyPermissions permisos efectivos del rol del usuario autenticado.
func (uc *RoleUseCase) MyPermissions(ctx context.Context, roleID, roleName string) (*dto.MyPermissionsResponse, error) {
	set, err := uc.authz.Resolve(ctx, roleID, roleName)
	if err != nil {
		return nil, err
	}
	return &dto.MyPermissionsResponse{Role: roleName, IsAdmin: set.IsAdmin(), Permissions: set.Keys()}, nil
}

func (uc *RoleUseCase) get(ctx context.Context, id string) (*entity.Role, error) {
	role, err := uc.roleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, fmt.Errorf("%w: rol", domain.ErrNotFound)
	}
	return role, nil
}

func toRoleResponse(r *entity.Role, perms []*entity.Permission) *dto.RoleResponse {
	out := &dto.RoleResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	for _, p := range perms {
		out.Permissions = append(out.Permissions, toPermissionResponse(p))
	}
	return out
}

func toPermissionResponse(p *entity.Permission) dto.PermissionResponse {
	return dto.PermissionResponse{
		ID:          p.ID,
		Resource:    p.Resource,
		Action:      p.Action,
		Key:         permission.Key(p.Resource, p.Action),
		Description: p.Description,
	}
}
