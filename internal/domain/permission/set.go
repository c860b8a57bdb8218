package permission

import (
	"sort"

	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
)

// IsAdminRole informa si el nombre de rol corresponde al administrador.
func IsAdminRole(role string) bool {
	switch Normalize(role) {
	case entity.RoleAdmin, "admin":
		return true
	}
	return false
}

// Set conjunto de permisos efectivos de un rol.
type Set struct {
	admin bool
	keys  map[string]struct{}
}

// NewSet construye el conjunto a partir de los permisos asignados al rol.
// Los permisos con recurso o acción vacíos se ignoran.
func NewSet(role string, perms []entity.Permission) *Set {
	s := &Set{admin: IsAdminRole(role), keys: make(map[string]struct{}, len(perms))}
	for _, p := range perms {
		r, a := Normalize(p.Resource), CanonicalAction(p.Action)
		if r == "" || a == "" {
			continue
		}
		s.keys[r+":"+a] = struct{}{}
	}
	return s
}

// NewSetFromKeys reconstruye el conjunto desde claves ya canónicas (p. ej. leídas de caché).
func NewSetFromKeys(role string, keys []string) *Set {
	s := &Set{admin: IsAdminRole(role), keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		if r, a, err := ParseKey(k); err == nil {
			s.keys[r+":"+a] = struct{}{}
		}
	}
	return s
}

// Allows informa si el conjunto cubre la acción sobre el recurso.
func (s *Set) Allows(resource, action string) bool {
	if s == nil {
		return false
	}
	if s.admin {
		return true
	}
	r, a := Normalize(resource), CanonicalAction(action)
	for _, k := range []string{r + ":" + a, r + ":" + Wildcard, Wildcard + ":" + a, Wildcard + ":" + Wildcard} {
		if _, ok := s.keys[k]; ok {
			return true
		}
	}
	return false
}

// IsAdmin informa si el conjunto pertenece al rol administrador.
func (s *Set) IsAdmin() bool { return s != nil && s.admin }

// Keys devuelve las claves canónicas ordenadas.
func (s *Set) Keys() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
