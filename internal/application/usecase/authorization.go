package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/domain/permission"
	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
	"github.com/jhoicas/agrotrack-api/pkg/logger"
)

// AuthorizationService resuelve el conjunto de permisos de un rol, con cache opcional.
// Es el único punto que conoce cómo se combinan rol administrador, asignaciones y cache.
type AuthorizationService struct {
	roleRepo repository.RoleRepository
	cache    repository.PermissionCache
	log      *logger.Logger
}

// NewAuthorizationService construye el servicio. cache puede ser nil.
func NewAuthorizationService(roleRepo repository.RoleRepository, cache repository.PermissionCache, log *logger.Logger) *AuthorizationService {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthorizationService{roleRepo: roleRepo, cache: cache, log: log.Component("authz")}
}

// Resolve devuelve los permisos efectivos del rol. El rol administrador no consulta la DB.
// Un fallo del cache se registra y se consulta la DB; un fallo de la DB se devuelve.
func (s *AuthorizationService) Resolve(ctx context.Context, roleID, roleName string) (*permission.Set, error) {
	if permission.IsAdminRole(roleName) {
		return permission.NewSetFromKeys(roleName, nil), nil
	}
	if roleID == "" {
		return permission.NewSetFromKeys(roleName, nil), nil
	}
	if s.cache != nil {
		keys, ok, err := s.cache.Get(ctx, roleID)
		if err != nil {
			s.log.Warn().Err(err).Str("rol_id", roleID).Msg("cache de permisos no disponible")
		} else if ok {
			return permission.NewSetFromKeys(roleName, keys), nil
		}
	}
	perms, err := s.roleRepo.ListPermissions(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("authz: permisos del rol: %w", err)
	}
	values := make([]entity.Permission, 0, len(perms))
	for _, p := range perms {
		values = append(values, *p)
	}
	set := permission.NewSet(roleName, values)
	if s.cache != nil {
		if err := s.cache.Set(ctx, roleID, set.Keys()); err != nil {
			s.log.Warn().Err(err).Str("rol_id", roleID).Msg("no se pudo guardar en cache")
		}
	}
	return set, nil
}

// Allows atajo para verificar un par recurso/acción.
func (s *AuthorizationService) Allows(ctx context.Context, roleID, roleName, resource, action string) (bool, error) {
	set, err := s.Resolve(ctx, roleID, roleName)
	if err != nil {
		return false, err
	}
	return set.Allows(resource, action), nil
}

// Invalidate descarta el cache de un rol tras cambiar sus asignaciones.
func (s *AuthorizationService) Invalidate(ctx context.Context, roleID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, roleID); err != nil {
		s.log.Warn().Err(err).Str("rol_id", roleID).Msg("no se pudo invalidar el cache de permisos")
	}
}
