package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/agrotrack-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return hasCode(err, "23505")
}

// isFKViolation verifica si un error es una violación de llave foránea (23503).
func isFKViolation(err error) bool {
	return hasCode(err, "23503")
}

// isCheckViolation verifica si un error es una violación de CHECK (23514).
func isCheckViolation(err error) bool {
	return hasCode(err, "23514")
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}

// writeErr traduce los errores de escritura a errores de dominio.
func writeErr(op string, err error) error {
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
	case isFKViolation(err):
		return fmt.Errorf("%s: %w", op, domain.ErrConflict)
	case isCheckViolation(err):
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidInput)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// affected devuelve ErrNotFound si la sentencia no tocó filas.
func affected(tag pgconn.CommandTag, op string) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}

// nullable convierte "" en NULL para columnas UUID opcionales.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// conds arma cláusulas WHERE con placeholders numerados.
type conds struct {
	parts []string
	args  []any
}

// add agrega una condición; format lleva un único %d para el placeholder.
func (c *conds) add(format string, v any) {
	c.args = append(c.args, v)
	c.parts = append(c.parts, fmt.Sprintf(format, len(c.args)))
}

func (c *conds) where() string {
	if len(c.parts) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.parts, " AND ")
}

// page agrega LIMIT/OFFSET (limit 0 = sin límite) y devuelve el sufijo SQL con sus args.
func (c *conds) page(limit, offset int) (string, []any) {
	n := len(c.args)
	args := append(append([]any{}, c.args...), limit, offset)
	return fmt.Sprintf(" LIMIT NULLIF($%d, 0) OFFSET $%d", n+1, n+2), args
}
