package dto

import "time"

// RegisterRequest entrada para el auto-registro (rol por defecto).
type RegisterRequest struct {
	FirstName      string `json:"nombre" validate:"required,max=100"`
	LastName       string `json:"apellido" validate:"required,max=100"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=8,max=72"`
	DocumentType   string `json:"tipo_documento" validate:"required,max=5"`
	DocumentNumber string `json:"numero_documento" validate:"required,max=30"`
	Phone          string `json:"telefono" validate:"omitempty,max=30"`
}

// CreateUserRequest alta de usuario por un administrador (rol explícito).
type CreateUserRequest struct {
	RegisterRequest
	RoleID string `json:"rol_id" validate:"required,uuid"`
}

// UpdateUserRequest campos opcionales a modificar.
type UpdateUserRequest struct {
	FirstName      *string `json:"nombre" validate:"omitempty,min=1,max=100"`
	LastName       *string `json:"apellido" validate:"omitempty,min=1,max=100"`
	Email          *string `json:"email" validate:"omitempty,email"`
	DocumentType   *string `json:"tipo_documento" validate:"omitempty,max=5"`
	DocumentNumber *string `json:"numero_documento" validate:"omitempty,min=1,max=30"`
	Phone          *string `json:"telefono" validate:"omitempty,max=30"`
	RoleID         *string `json:"rol_id" validate:"omitempty,uuid"`
	Password       *string `json:"password" validate:"omitempty,min=8,max=72"`
}

// UpdateUserStatusRequest cambio de estado activo/inactivo.
type UpdateUserStatusRequest struct {
	Status string `json:"estado" validate:"required,oneof=activo inactivo"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"nombre"`
	LastName       string    `json:"apellido"`
	Email          string    `json:"email"`
	DocumentType   string    `json:"tipo_documento"`
	DocumentNumber string    `json:"numero_documento"`
	Phone          string    `json:"telefono,omitempty"`
	RoleID         string    `json:"rol_id"`
	RoleName       string    `json:"rol,omitempty"`
	ProfileImage   string    `json:"imagen_perfil,omitempty"`
	Status         string    `json:"estado"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LoginRequest credenciales.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse token de acceso más el usuario autenticado.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"` // segundos
	User        UserResponse `json:"user"`
}

// ForgotPasswordRequest solicitud de enlace de recuperación.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest token recibido por correo y nueva contraseña.
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// MeResponse perfil del usuario autenticado con sus permisos efectivos.
type MeResponse struct {
	User        UserResponse `json:"user"`
	Permissions []string     `json:"permisos"`
	IsAdmin     bool         `json:"es_admin"`
}
