package entity

import "time"

// Estados de usuario.
const (
	UserStatusActive   = "activo"
	UserStatusInactive = "inactivo"
)

// Tipos de documento de identidad aceptados.
const (
	DocCC  = "CC"  // cédula de ciudadanía
	DocCE  = "CE"  // cédula de extranjería
	DocTI  = "TI"  // tarjeta de identidad
	DocPAS = "PAS" // pasaporte
	DocNIT = "NIT"
)

// ValidDocumentType informa si el tipo de documento es uno de los aceptados.
func ValidDocumentType(t string) bool {
	switch t {
	case DocCC, DocCE, DocTI, DocPAS, DocNIT:
		return true
	}
	return false
}

// User representa un usuario del sistema.
type User struct {
	ID             string
	FirstName      string
	LastName       string
	Email          string
	DocumentType   string
	DocumentNumber string
	Phone          string
	RoleID         string
	RoleName       string // desnormalizado al leer (JOIN roles)
	PasswordHash   string // bcrypt
	ProfileImage   string // ruta relativa en UPLOAD_DIR
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FullName nombre y apellido.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// PasswordReset solicitud de recuperación de contraseña. Solo se guarda el hash del token.
type PasswordReset struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Usable informa si el token sigue vigente y no fue consumido.
func (p *PasswordReset) Usable(now time.Time) bool {
	return p.UsedAt == nil && now.Before(p.ExpiresAt)
}
