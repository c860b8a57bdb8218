package repository

import (
	"context"

	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
)

// RoleRepository roles y su conjunto de permisos asignados.
type RoleRepository interface {
	Create(ctx context.Context, role *entity.Role) error
	GetByID(ctx context.Context, id string) (*entity.Role, error)
	GetByName(ctx context.Context, name string) (*entity.Role, error)
	List(ctx context.Context) ([]*entity.Role, error)
	Update(ctx context.Context, role *entity.Role) error
	Delete(ctx context.Context, id string) error
	// SetPermissions reemplaza la asignación completa del rol.
	SetPermissions(ctx context.Context, roleID string, permissionIDs []string) error
	ListPermissions(ctx context.Context, roleID string) ([]*entity.Permission, error)
}

// PermissionRepository catálogo de permisos (recurso, acción).
type PermissionRepository interface {
	Create(ctx context.Context, p *entity.Permission) error
	GetByID(ctx context.Context, id string) (*entity.Permission, error)
	GetByResourceAction(ctx context.Context, resource, action string) (*entity.Permission, error)
	List(ctx context.Context) ([]*entity.Permission, error)
	Delete(ctx context.Context, id string) error
}

// PermissionCache cache de claves de permiso por rol. Una implementación
// caída no debe impedir la autorización: los errores se tratan como miss.
type PermissionCache interface {
	Get(ctx context.Context, roleID string) ([]string, bool, error)
	Set(ctx context.Context, roleID string, keys []string) error
	Invalidate(ctx context.Context, roleID string) error
}
