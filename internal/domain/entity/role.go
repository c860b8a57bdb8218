package entity

import "time"

// RoleAdmin nombre del rol que omite las verificaciones de permisos.
const RoleAdmin = "administrador"

// Role agrupa permisos asignables a usuarios.
type Role struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Permission par (recurso, acción).
type Permission struct {
	ID          string
	Resource    string
	Action      string
	Description string
	CreatedAt   time.Time
}

// Key devuelve la forma "recurso:accion" sin normalizar.
func (p Permission) Key() string {
	return p.Resource + ":" + p.Action
}
