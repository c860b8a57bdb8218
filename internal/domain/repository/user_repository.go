package repository

import (
	"context"
	"time"

	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// GetBy* devuelve (nil, nil) si no existe.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByDocument(ctx context.Context, docType, docNumber string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	List(ctx context.Context, limit, offset int) ([]*entity.User, int, error)
	Delete(ctx context.Context, id string) error
}

// PasswordResetRepository tokens de recuperación de contraseña (solo se guarda el hash).
type PasswordResetRepository interface {
	Create(ctx context.Context, reset *entity.PasswordReset) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*entity.PasswordReset, error)
	// Claim marca como usado el token si sigue vigente y lo devuelve.
	// Si ya fue usado, venció o no existe retorna domain.ErrInvalidToken.
	Claim(ctx context.Context, tokenHash string, now time.Time) (*entity.PasswordReset, error)
}
