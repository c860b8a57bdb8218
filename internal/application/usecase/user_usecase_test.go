package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/application/usecase"
	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/testutil/memrepo"
)

func str(s string) *string { return &s }

func seedUsers(t *testing.T) (*memrepo.Store, *usecase.UserUseCase) {
	t.Helper()
	store := memrepo.New()
	seedRoles(t, store)
	ctx := context.Background()
	for _, u := range []entity.User{
		{ID: "u1", FirstName: "Ana", Email: "ana@finca.com", DocumentType: "CC", DocumentNumber: "1", RoleID: "r-op", Status: entity.UserStatusActive},
		{ID: "u2", FirstName: "Luis", Email: "luis@finca.com", DocumentType: "CC", DocumentNumber: "2", RoleID: "r-admin", Status: entity.UserStatusActive},
	} {
		u := u
		require.NoError(t, store.Users().Create(ctx, &u))
	}
	return store, usecase.NewUserUseCase(store.Users(), store.Roles())
}

func TestUserUpdate_CamposParciales(t *testing.T) {
	store, uc := seedUsers(t)
	ctx := context.Background()

	resp, err := uc.Update(ctx, entity.RoleAdmin, "u1", dto.UpdateUserRequest{
		Email:    str("ANA.P@finca.com"),
		RoleID:   str("r-admin"),
		Password: str("clave-nueva-9"),
	})
	require.NoError(t, err)
	assert.Equal(t, "ana.p@finca.com", resp.Email)
	assert.Equal(t, "r-admin", resp.RoleID)
	assert.Equal(t, "Ana", resp.FirstName)

	stored, err := store.Users().GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("clave-nueva-9")))
}

func TestUserUpdate_Conflictos(t *testing.T) {
	_, uc := seedUsers(t)
	ctx := context.Background()

	_, err := uc.Update(ctx, entity.RoleAdmin, "u1", dto.UpdateUserRequest{Email: str("luis@finca.com")})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	_, err = uc.Update(ctx, entity.RoleAdmin, "u1", dto.UpdateUserRequest{DocumentNumber: str("2")})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Update(ctx, entity.RoleAdmin, "u1", dto.UpdateUserRequest{RoleID: str("no-existe")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Update(ctx, entity.RoleAdmin, "nadie", dto.UpdateUserRequest{})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserUpdate_CambioDeRolSoloAdmin(t *testing.T) {
	store, uc := seedUsers(t)
	ctx := context.Background()

	_, err := uc.Update(ctx, "supervisor", "u1", dto.UpdateUserRequest{RoleID: str("r-admin")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	stored, err := store.Users().GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.NotEqual(t, "r-admin", stored.RoleID)

	// el mismo rol no es un cambio
	_, err = uc.Update(ctx, "supervisor", "u1", dto.UpdateUserRequest{RoleID: str(stored.RoleID), FirstName: str("Ana María")})
	assert.NoError(t, err)
}

func TestUserSetStatus(t *testing.T) {
	_, uc := seedUsers(t)
	ctx := context.Background()

	resp, err := uc.SetStatus(ctx, "u2", "u1", entity.UserStatusInactive)
	require.NoError(t, err)
	assert.Equal(t, entity.UserStatusInactive, resp.Status)

	_, err = uc.SetStatus(ctx, "u2", "u2", entity.UserStatusInactive)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = uc.SetStatus(ctx, "u2", "u1", "suspendido")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUserDelete(t *testing.T) {
	store, uc := seedUsers(t)
	ctx := context.Background()

	assert.ErrorIs(t, uc.Delete(ctx, "u2", "u2"), domain.ErrConflict)
	require.NoError(t, uc.Delete(ctx, "u2", "u1"))
	u, err := store.Users().GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, u)
	assert.ErrorIs(t, uc.Delete(ctx, "u2", "u1"), domain.ErrNotFound)
}

func TestUserSetProfileImage_DevuelveAnterior(t *testing.T) {
	_, uc := seedUsers(t)
	ctx := context.Background()

	_, prev, err := uc.SetProfileImage(ctx, "u1", "usuarios/u1/a.png")
	require.NoError(t, err)
	assert.Empty(t, prev)

	resp, prev, err := uc.SetProfileImage(ctx, "u1", "usuarios/u1/b.png")
	require.NoError(t, err)
	assert.Equal(t, "usuarios/u1/a.png", prev)
	assert.Equal(t, "usuarios/u1/b.png", resp.ProfileImage)
}

func TestUserList_Paginado(t *testing.T) {
	_, uc := seedUsers(t)
	resp, err := uc.List(context.Background(), dto.PageRequest{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, resp.Items, 1)
	assert.Equal(t, 2, resp.Page.Total)
}
