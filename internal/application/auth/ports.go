package auth

import (
	"context"

	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción con usuarios y tokens de recuperación atados a ella.
type TxRunner interface {
	RunCredentials(ctx context.Context, fn func(
		users repository.UserRepository,
		resets repository.PasswordResetRepository,
	) error) error
}
