// Package permission evalúa permisos con forma "recurso:accion".
//
// Las claves se normalizan antes de compararse: minúsculas, sin tildes, espacios y
// guiones convertidos a "_". Las acciones admiten sinónimos (ver/leer/listar, crear,
// editar/actualizar, eliminar/borrar) y comodines ("*" o "gestionar").
package permission

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Wildcard cubre todas las acciones o todos los recursos.
const Wildcard = "*"

var actionSynonyms = map[string]string{
	"ver":        "ver",
	"leer":       "ver",
	"listar":     "ver",
	"read":       "ver",
	"consultar":  "ver",
	"crear":      "crear",
	"create":     "crear",
	"registrar":  "crear",
	"editar":     "editar",
	"actualizar": "editar",
	"update":     "editar",
	"modificar":  "editar",
	"eliminar":   "eliminar",
	"borrar":     "eliminar",
	"delete":     "eliminar",
	"gestionar":  Wildcard,
	"manage":     Wildcard,
	Wildcard:     Wildcard,
}

// Normalize pasa a minúsculas, elimina tildes y unifica separadores.
// "Inventário de Insumos" -> "inventario_de_insumos".
func Normalize(s string) string {
	// transform.Chain es stateful: uno por llamada.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = strings.ToLower(strings.TrimSpace(out))
	out = strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' || r == '\t' {
			return '_'
		}
		return r
	}, out)
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	return strings.Trim(out, "_")
}

// CanonicalAction normaliza la acción y resuelve sinónimos. Acciones desconocidas se devuelven normalizadas.
func CanonicalAction(action string) string {
	a := Normalize(action)
	if c, ok := actionSynonyms[a]; ok {
		return c
	}
	return a
}

// Key construye la clave canónica "recurso:accion".
func Key(resource, action string) string {
	return Normalize(resource) + ":" + CanonicalAction(action)
}

// ParseKey separa y canoniza una clave "recurso:accion".
func ParseKey(key string) (resource, action string, err error) {
	parts := strings.Split(key, ":")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("permiso %q: se espera recurso:accion", key)
	}
	resource = Normalize(parts[0])
	action = CanonicalAction(parts[1])
	if resource == "" || action == "" {
		return "", "", fmt.Errorf("permiso %q: recurso y acción son obligatorios", key)
	}
	return resource, action, nil
}
