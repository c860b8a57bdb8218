package dto

import "time"

// RoleRequest alta o modificación de un rol.
type RoleRequest struct {
	Name        string `json:"nombre" validate:"required,max=60"`
	Description string `json:"descripcion" validate:"omitempty,max=255"`
}

// SetRolePermissionsRequest reemplaza el conjunto de permisos del rol.
type SetRolePermissionsRequest struct {
	PermissionIDs []string `json:"permisos" validate:"dive,uuid"`
}

// RoleResponse rol con sus permisos (si se pidieron).
type RoleResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"nombre"`
	Description string               `json:"descripcion"`
	Permissions []PermissionResponse `json:"permisos,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// CreatePermissionRequest nuevo permiso (se normaliza antes de guardar).
type CreatePermissionRequest struct {
	Resource    string `json:"recurso" validate:"required,max=60"`
	Action      string `json:"accion" validate:"required,max=60"`
	Description string `json:"descripcion" validate:"omitempty,max=255"`
}

// PermissionResponse permiso con su clave canónica.
type PermissionResponse struct {
	ID          string `json:"id"`
	Resource    string `json:"recurso"`
	Action      string `json:"accion"`
	Key         string `json:"clave"`
	Description string `json:"descripcion,omitempty"`
}

// MyPermissionsResponse permisos efectivos del usuario autenticado.
type MyPermissionsResponse struct {
	Role        string   `json:"rol"`
	IsAdmin     bool     `json:"es_admin"`
	Permissions []string `json:"permisos"`
}
