package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
)

var (
	_ repository.UserRepository          = (*UserRepo)(nil)
	_ repository.PasswordResetRepository = (*PasswordResetRepo)(nil)
)

const userColumns = `
	u.id, u.nombre, u.apellido, u.email, u.tipo_documento, u.numero_documento, u.telefono,
	u.rol_id, r.nombre, u.password_hash, u.imagen_perfil, u.estado, u.created_at, u.updated_at`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO usuarios (id, nombre, apellido, email, tipo_documento, numero_documento, telefono,
			rol_id, password_hash, imagen_perfil, estado, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		u.ID, u.FirstName, u.LastName, u.Email, u.DocumentType, u.DocumentNumber, u.Phone,
		u.RoleID, u.PasswordHash, u.ProfileImage, u.Status, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return userWriteErr("insert user", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID con el nombre de su rol.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, "u.id = $1", id)
}

// GetByEmail búsqueda sin distinguir mayúsculas.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, "lower(u.email) = lower($1)", email)
}

// GetByDocument obtiene un usuario por tipo y número de documento.
func (r *UserRepo) GetByDocument(ctx context.Context, docType, docNumber string) (*entity.User, error) {
	return r.getOne(ctx, "u.tipo_documento = $1 AND u.numero_documento = $2", docType, docNumber)
}

func (r *UserRepo) getOne(ctx context.Context, cond string, args ...any) (*entity.User, error) {
	query := `SELECT ` + userColumns + `
		FROM usuarios u JOIN roles r ON r.id = u.rol_id
		WHERE ` + cond
	u, err := scanUser(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Update actualiza datos, rol, contraseña, imagen y estado.
func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	query := `
		UPDATE usuarios SET nombre = $2, apellido = $3, email = $4, tipo_documento = $5,
			numero_documento = $6, telefono = $7, rol_id = $8, password_hash = $9,
			imagen_perfil = $10, estado = $11, updated_at = $12
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		u.ID, u.FirstName, u.LastName, u.Email, u.DocumentType, u.DocumentNumber, u.Phone,
		u.RoleID, u.PasswordHash, u.ProfileImage, u.Status, u.UpdatedAt,
	)
	if err != nil {
		return userWriteErr("update user", err)
	}
	return affected(tag, "update user")
}

// List usuarios ordenados por email.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]*entity.User, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM usuarios`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	query := `SELECT ` + userColumns + `
		FROM usuarios u JOIN roles r ON r.id = u.rol_id
		ORDER BY u.email
		LIMIT NULLIF($1, 0) OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := []*entity.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

// Delete elimina el usuario; sus tokens de recuperación caen en cascada.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM usuarios WHERE id = $1`, id)
	if err != nil {
		return writeErr("delete user", err)
	}
	return affected(tag, "delete user")
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.DocumentType, &u.DocumentNumber, &u.Phone,
		&u.RoleID, &u.RoleName, &u.PasswordHash, &u.ProfileImage, &u.Status, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// userWriteErr distingue el email duplicado del documento duplicado.
func userWriteErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "usuarios_email_key" {
		return domain.ErrEmailAlreadyExists
	}
	return writeErr(op, err)
}

// PasswordResetRepo tokens de recuperación de contraseña.
type PasswordResetRepo struct {
	q Querier
}

// NewPasswordResetRepository construye el adaptador.
func NewPasswordResetRepository(q Querier) *PasswordResetRepo {
	return &PasswordResetRepo{q: q}
}

// Create guarda la solicitud (solo el hash del token).
func (r *PasswordResetRepo) Create(ctx context.Context, p *entity.PasswordReset) error {
	query := `
		INSERT INTO password_resets (id, usuario_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, p.ID, p.UserID, p.TokenHash, p.ExpiresAt, p.CreatedAt); err != nil {
		return writeErr("insert password reset", err)
	}
	return nil
}

// GetByTokenHash devuelve (nil, nil) si el hash no existe.
func (r *PasswordResetRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*entity.PasswordReset, error) {
	query := `
		SELECT id, usuario_id, token_hash, expires_at, used_at, created_at
		FROM password_resets WHERE token_hash = $1`
	var p entity.PasswordReset
	err := r.q.QueryRow(ctx, query, tokenHash).Scan(
		&p.ID, &p.UserID, &p.TokenHash, &p.ExpiresAt, &p.UsedAt, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get password reset: %w", err)
	}
	return &p, nil
}

// Claim consume el token con un UPDATE condicional: de dos llamadas concurrentes
// solo una obtiene la fila, la otra espera el lock y ya no cumple used_at IS NULL.
func (r *PasswordResetRepo) Claim(ctx context.Context, tokenHash string, now time.Time) (*entity.PasswordReset, error) {
	query := `
		UPDATE password_resets SET used_at = $2
		WHERE token_hash = $1 AND used_at IS NULL AND expires_at > $2
		RETURNING id, usuario_id, token_hash, expires_at, used_at, created_at`
	var p entity.PasswordReset
	err := r.q.QueryRow(ctx, query, tokenHash, now).Scan(
		&p.ID, &p.UserID, &p.TokenHash, &p.ExpiresAt, &p.UsedAt, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("claim password reset: %w", err)
	}
	return &p, nil
}
