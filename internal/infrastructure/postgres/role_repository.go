package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
)

var (
	_ repository.RoleRepository       = (*RoleRepo)(nil)
	_ repository.PermissionRepository = (*PermissionRepo)(nil)
)

// RoleRepo roles y su asignación de permisos.
type RoleRepo struct {
	q Querier
}

// NewRoleRepository construye el adaptador de roles.
func NewRoleRepository(q Querier) *RoleRepo {
	return &RoleRepo{q: q}
}

func (r *RoleRepo) Create(ctx context.Context, role *entity.Role) error {
	query := `
		INSERT INTO roles (id, nombre, descripcion, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, role.ID, role.Name, role.Description, role.CreatedAt, role.UpdatedAt); err != nil {
		return writeErr("insert role", err)
	}
	return nil
}

func (r *RoleRepo) GetByID(ctx context.Context, id string) (*entity.Role, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByName búsqueda sin distinguir mayúsculas.
func (r *RoleRepo) GetByName(ctx context.Context, name string) (*entity.Role, error) {
	return r.getOne(ctx, "lower(nombre) = lower($1)", name)
}

func (r *RoleRepo) getOne(ctx context.Context, cond string, arg string) (*entity.Role, error) {
	query := `SELECT id, nombre, descripcion, created_at, updated_at FROM roles WHERE ` + cond
	var role entity.Role
	err := r.q.QueryRow(ctx, query, arg).Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	return &role, nil
}

func (r *RoleRepo) List(ctx context.Context) ([]*entity.Role, error) {
	rows, err := r.q.Query(ctx, `SELECT id, nombre, descripcion, created_at, updated_at FROM roles ORDER BY nombre`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	out := []*entity.Role{}
	for rows.Next() {
		var role entity.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		out = append(out, &role)
	}
	return out, rows.Err()
}

func (r *RoleRepo) Update(ctx context.Context, role *entity.Role) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE roles SET nombre = $2, descripcion = $3, updated_at = $4 WHERE id = $1`,
		role.ID, role.Name, role.Description, role.UpdatedAt,
	)
	if err != nil {
		return writeErr("update role", err)
	}
	return affected(tag, "update role")
}

// Delete falla con ErrConflict si hay usuarios con el rol.
func (r *RoleRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return writeErr("delete role", err)
	}
	return affected(tag, "delete role")
}

// SetPermissions reemplaza la asignación en una sola sentencia: borra lo que sobra e inserta lo que falta.
func (r *RoleRepo) SetPermissions(ctx context.Context, roleID string, permissionIDs []string) error {
	if permissionIDs == nil {
		permissionIDs = []string{}
	}
	query := `
		WITH quitar AS (
			DELETE FROM rol_permisos
			WHERE rol_id = $1 AND permiso_id::text <> ALL($2::text[])
		)
		INSERT INTO rol_permisos (rol_id, permiso_id)
		SELECT $1, p::uuid FROM unnest($2::text[]) AS p
		ON CONFLICT DO NOTHING`
	if _, err := r.q.Exec(ctx, query, roleID, permissionIDs); err != nil {
		return writeErr("set role permissions", err)
	}
	return nil
}

func (r *RoleRepo) ListPermissions(ctx context.Context, roleID string) ([]*entity.Permission, error) {
	query := `
		SELECT p.id, p.recurso, p.accion, p.descripcion, p.created_at
		FROM permisos p JOIN rol_permisos rp ON rp.permiso_id = p.id
		WHERE rp.rol_id = $1
		ORDER BY p.recurso, p.accion`
	return queryPermissions(ctx, r.q, query, roleID)
}

// PermissionRepo catálogo de permisos.
type PermissionRepo struct {
	q Querier
}

// NewPermissionRepository construye el adaptador de permisos.
func NewPermissionRepository(q Querier) *PermissionRepo {
	return &PermissionRepo{q: q}
}

func (r *PermissionRepo) Create(ctx context.Context, p *entity.Permission) error {
	query := `
		INSERT INTO permisos (id, recurso, accion, descripcion, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, p.ID, p.Resource, p.Action, p.Description, p.CreatedAt); err != nil {
		return writeErr("insert permission", err)
	}
	return nil
}

func (r *PermissionRepo) GetByID(ctx context.Context, id string) (*entity.Permission, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *PermissionRepo) GetByResourceAction(ctx context.Context, resource, action string) (*entity.Permission, error) {
	return r.getOne(ctx, `WHERE recurso = $1 AND accion = $2`, resource, action)
}

func (r *PermissionRepo) getOne(ctx context.Context, where string, args ...any) (*entity.Permission, error) {
	var p entity.Permission
	err := r.q.QueryRow(ctx, `SELECT id, recurso, accion, descripcion, created_at FROM permisos `+where, args...).
		Scan(&p.ID, &p.Resource, &p.Action, &p.Description, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get permission: %w", err)
	}
	return &p, nil
}

func (r *PermissionRepo) List(ctx context.Context) ([]*entity.Permission, error) {
	return queryPermissions(ctx, r.q,
		`SELECT id, recurso, accion, descripcion, created_at FROM permisos ORDER BY recurso, accion`)
}

// Delete quita el permiso y sus asignaciones (ON DELETE CASCADE).
func (r *PermissionRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM permisos WHERE id = $1`, id)
	if err != nil {
		return writeErr("delete permission", err)
	}
	return affected(tag, "delete permission")
}

func queryPermissions(ctx context.Context, q Querier, query string, args ...any) ([]*entity.Permission, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()

	out := []*entity.Permission{}
	for rows.Next() {
		var p entity.Permission
		if err := rows.Scan(&p.ID, &p.Resource, &p.Action, &p.Description, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
