package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/application/ports"
	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/document"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/domain/permission"
	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
	"github.com/jhoicas/agrotrack-api/pkg/jwt"
	"github.com/jhoicas/agrotrack-api/pkg/logger"
)

// ResetTokenTTL vigencia del enlace de recuperación.
const ResetTokenTTL = time.Hour

// Config configuración para generación de tokens y registro.
type Config struct {
	Secret      string
	ExpMinutes  int
	Issuer      string
	DefaultRole string
	ResetURL    string
}

// PermissionResolver resuelve los permisos efectivos de un rol.
type PermissionResolver interface {
	Resolve(ctx context.Context, roleID, roleName string) (*permission.Set, error)
}

// AuthUseCase casos de uso de autenticación: registro, login y recuperación de contraseña.
type AuthUseCase struct {
	userRepo  repository.UserRepository
	roleRepo  repository.RoleRepository
	resetRepo repository.PasswordResetRepository
	tx        TxRunner
	perms     PermissionResolver
	mailer    ports.Mailer
	cfg       Config
	log       *logger.Logger
	now       func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	resetRepo repository.PasswordResetRepository,
	tx TxRunner,
	perms PermissionResolver,
	mailer ports.Mailer,
	cfg Config,
	log *logger.Logger,
) *AuthUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthUseCase{
		userRepo:  userRepo,
		roleRepo:  roleRepo,
		resetRepo: resetRepo,
		tx:        tx,
		perms:     perms,
		mailer:    mailer,
		cfg:       cfg,
		log:       log.Component("auth"),
		now:       time.Now,
	}
}

// HashPassword bcrypt con costo por defecto.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(hash), nil
}

// NormalizeEmail minúsculas y sin espacios.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register crea un usuario con el rol por defecto.
// Devuelve ErrEmailAlreadyExists o ErrDuplicate (documento) si ya existen.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	role, err := uc.roleRepo.GetByName(ctx, uc.cfg.DefaultRole)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, fmt.Errorf("%w: el rol por defecto %q no existe", domain.ErrConflict, uc.cfg.DefaultRole)
	}
	user, err := uc.newUser(ctx, in, role)
	if err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

// CreateWithRole alta administrativa con rol explícito.
func (uc *AuthUseCase) CreateWithRole(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	role, err := uc.roleRepo.GetByID(ctx, in.RoleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, fmt.Errorf("%w: rol", domain.ErrNotFound)
	}
	user, err := uc.newUser(ctx, in.RegisterRequest, role)
	if err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

func (uc *AuthUseCase) newUser(ctx context.Context, in dto.RegisterRequest, role *entity.Role) (*entity.User, error) {
	email := NormalizeEmail(in.Email)
	docType, docNumber, err := document.Normalize(in.DocumentType, in.DocumentNumber)
	if err != nil {
		return nil, err
	}
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	existing, err = uc.userRepo.GetByDocument(ctx, docType, docNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: documento ya registrado", domain.ErrDuplicate)
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	user := &entity.User{
		ID:             uuid.New().String(),
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
		Email:          email,
		DocumentType:   docType,
		DocumentNumber: docNumber,
		Phone:          in.Phone,
		RoleID:         role.ID,
		RoleName:       role.Name,
		PasswordHash:   hash,
		Status:         entity.UserStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifica email/password, genera JWT y retorna token + usuario.
// Credenciales inválidas -> ErrUnauthorized; usuario inactivo -> ErrForbidden.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, NormalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != entity.UserStatusActive {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.cfg.Secret, user.ID, user.RoleID, user.RoleName, uc.cfg.Issuer, uc.cfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   uc.cfg.ExpMinutes * 60,
		User:        *ToUserResponse(user),
	}, nil
}

// ForgotPassword genera un token de un solo uso y envía el enlace por correo.
// Si el email no existe no hace nada: el llamador responde igual en ambos casos.
func (uc *AuthUseCase) ForgotPassword(ctx context.Context, in dto.ForgotPasswordRequest) error {
	user, err := uc.userRepo.GetByEmail(ctx, NormalizeEmail(in.Email))
	if err != nil {
		return err
	}
	if user == nil || user.Status != entity.UserStatusActive {
		return nil
	}
	token, err := newResetToken()
	if err != nil {
		return err
	}
	now := uc.now()
	reset := &entity.PasswordReset{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		TokenHash: HashToken(token),
		ExpiresAt: now.Add(ResetTokenTTL),
		CreatedAt: now,
	}
	if err := uc.resetRepo.Create(ctx, reset); err != nil {
		return err
	}
	link := uc.cfg.ResetURL + "?token=" + token
	if err := uc.mailer.SendPasswordReset(ctx, user.Email, user.FullName(), link); err != nil {
		uc.log.Error().Err(err).Str("user_id", user.ID).Msg("no se pudo enviar el correo de recuperación")
	}
	return nil
}

// ResetPassword consume el token y reemplaza la contraseña en una sola tx.
// El token se reclama antes de escribir: un segundo uso recibe ErrInvalidToken.
func (uc *AuthUseCase) ResetPassword(ctx context.Context, in dto.ResetPasswordRequest) error {
	hash, err := HashPassword(in.Password)
	if err != nil {
		return err
	}
	tokenHash := HashToken(strings.TrimSpace(in.Token))
	return uc.tx.RunCredentials(ctx, func(users repository.UserRepository, resets repository.PasswordResetRepository) error {
		now := uc.now()
		reset, err := resets.Claim(ctx, tokenHash, now)
		if err != nil {
			return err
		}
		user, err := users.GetByID(ctx, reset.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrInvalidToken
		}
		user.PasswordHash = hash
		user.UpdatedAt = now
		return users.Update(ctx, user)
	})
}

// Me perfil del usuario autenticado y sus permisos efectivos.
func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*dto.MeResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	set, err := uc.perms.Resolve(ctx, user.RoleID, user.RoleName)
	if err != nil {
		return nil, err
	}
	return &dto.MeResponse{
		User:        *ToUserResponse(user),
		Permissions: set.Keys(),
		IsAdmin:     set.IsAdmin(),
	}, nil
}

// HashToken sha256 en hexadecimal; es lo único que se guarda del token de recuperación.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("auth: token aleatorio: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// ToUserResponse mapea la entidad a su DTO (sin password).
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:             u.ID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Email:          u.Email,
		DocumentType:   u.DocumentType,
		DocumentNumber: u.DocumentNumber,
		Phone:          u.Phone,
		RoleID:         u.RoleID,
		RoleName:       u.RoleName,
		ProfileImage:   u.ProfileImage,
		Status:         u.Status,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
