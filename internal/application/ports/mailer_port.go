package ports

import "context"

// Mailer puerto de salida para correo transaccional.
// El adaptador SMTP (gomail) o uno que solo registra en log en desarrollo.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, name, resetLink string) error
}
