package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/agrotrack-api/internal/application/auth"
	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/document"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/domain/permission"
	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
)

// UserUseCase aplica reglas de negocio para usuarios.
type UserUseCase struct {
	repo     repository.UserRepository
	roleRepo repository.RoleRepository
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository, roleRepo repository.RoleRepository) *UserUseCase {
	return &UserUseCase{repo: repo, roleRepo: roleRepo}
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return auth.ToUserResponse(user), nil
}

// List lista usuarios con paginación.
func (uc *UserUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ListResponse[dto.UserResponse], error) {
	page.DefaultPage()
	list, total, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *auth.ToUserResponse(u))
	}
	return &dto.ListResponse[dto.UserResponse]{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Update modifica los campos enviados. Email y documento siguen siendo únicos.
// Solo el rol administrador puede cambiar el rol de un usuario.
func (uc *UserUseCase) Update(ctx context.Context, actorRole, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Email != nil {
		email := auth.NormalizeEmail(*in.Email)
		if email != user.Email {
			other, err := uc.repo.GetByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if other != nil {
				return nil, domain.ErrEmailAlreadyExists
			}
			user.Email = email
		}
	}
	if in.DocumentType != nil || in.DocumentNumber != nil {
		docType, docNumber := user.DocumentType, user.DocumentNumber
		if in.DocumentType != nil {
			docType = *in.DocumentType
		}
		if in.DocumentNumber != nil {
			docNumber = *in.DocumentNumber
		}
		docType, docNumber, err := document.Normalize(docType, docNumber)
		if err != nil {
			return nil, err
		}
		other, err := uc.repo.GetByDocument(ctx, docType, docNumber)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != user.ID {
			return nil, fmt.Errorf("%w: documento ya registrado", domain.ErrDuplicate)
		}
		user.DocumentType, user.DocumentNumber = docType, docNumber
	}
	if in.RoleID != nil && *in.RoleID != user.RoleID {
		if !permission.IsAdminRole(actorRole) {
			return nil, fmt.Errorf("%w: solo un administrador asigna roles", domain.ErrForbidden)
		}
		role, err := uc.roleRepo.GetByID(ctx, *in.RoleID)
		if err != nil {
			return nil, err
		}
		if role == nil {
			return nil, fmt.Errorf("%w: rol", domain.ErrNotFound)
		}
		user.RoleID, user.RoleName = role.ID, role.Name
	}
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Phone != nil {
		user.Phone = *in.Phone
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return auth.ToUserResponse(user), nil
}

// SetStatus activa o inactiva un usuario. Un usuario no puede inactivarse a sí mismo.
func (uc *UserUseCase) SetStatus(ctx context.Context, actorID, id, status string) (*dto.UserResponse, error) {
	if status != entity.UserStatusActive && status != entity.UserStatusInactive {
		return nil, fmt.Errorf("%w: estado", domain.ErrInvalidInput)
	}
	if actorID == id && status == entity.UserStatusInactive {
		return nil, fmt.Errorf("%w: no puede inactivar su propio usuario", domain.ErrConflict)
	}
	user, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Status = status
	user.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return auth.ToUserResponse(user), nil
}

// SetProfileImage guarda la ruta de la imagen y devuelve la anterior para que el llamador la borre.
func (uc *UserUseCase) SetProfileImage(ctx context.Context, id, path string) (*dto.UserResponse, string, error) {
	user, err := uc.get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	previous := user.ProfileImage
	user.ProfileImage = path
	user.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, "", err
	}
	return auth.ToUserResponse(user), previous, nil
}

// Delete elimina un usuario. Nadie puede eliminarse a sí mismo.
func (uc *UserUseCase) Delete(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return fmt.Errorf("%w: no puede eliminar su propio usuario", domain.ErrConflict)
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *UserUseCase) get(ctx context.Context, id string) (*entity.User, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}
