package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/application/usecase"
	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/testutil/memrepo"
)

// fakeCache cache de permisos en memoria que cuenta aciertos y puede fallar.
type fakeCache struct {
	data        map[string][]string
	hits, sets  int
	invalidated []string
	err         error
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]string{}} }

func (c *fakeCache) Get(_ context.Context, roleID string) ([]string, bool, error) {
	if c.err != nil {
		return nil, false, c.err
	}
	keys, ok := c.data[roleID]
	if ok {
		c.hits++
	}
	return keys, ok, nil
}

func (c *fakeCache) Set(_ context.Context, roleID string, keys []string) error {
	if c.err != nil {
		return c.err
	}
	c.sets++
	c.data[roleID] = keys
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, roleID string) error {
	c.invalidated = append(c.invalidated, roleID)
	delete(c.data, roleID)
	return c.err
}

func seedRoles(t *testing.T, store *memrepo.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Roles().Create(ctx, &entity.Role{ID: "r-op", Name: "operario"}))
	require.NoError(t, store.Roles().Create(ctx, &entity.Role{ID: "r-admin", Name: entity.RoleAdmin}))
	for _, p := range []entity.Permission{
		{ID: "p-lotes-ver", Resource: "lotes", Action: "ver"},
		{ID: "p-inv-all", Resource: "inventario", Action: "*"},
		{ID: "p-usr-crear", Resource: "usuarios", Action: "crear"},
	} {
		p := p
		require.NoError(t, store.Permissions().Create(ctx, &p))
	}
	require.NoError(t, store.Roles().SetPermissions(ctx, "r-op", []string{"p-lotes-ver", "p-inv-all"}))
}

func TestResolve_PermisosDelRol(t *testing.T) {
	store := memrepo.New()
	seedRoles(t, store)
	authz := usecase.NewAuthorizationService(store.Roles(), nil, nil)

	set, err := authz.Resolve(context.Background(), "r-op", "operario")
	require.NoError(t, err)
	assert.True(t, set.Allows("lotes", "listar"), "sinónimo de ver")
	assert.True(t, set.Allows("Inventario", "eliminar"), "comodín de acción")
	assert.False(t, set.Allows("lotes", "crear"))
	assert.False(t, set.Allows("usuarios", "crear"))
}

func TestResolve_AdminNoConsultaRepositorio(t *testing.T) {
	store := memrepo.New()
	cache := newFakeCache()
	authz := usecase.NewAuthorizationService(store.Roles(), cache, nil)

	ok, err := authz.Allows(context.Background(), "cualquiera", "Administrador", "finanzas", "eliminar")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, cache.sets)
}

func TestResolve_UsaCacheEInvalida(t *testing.T) {
	store := memrepo.New()
	seedRoles(t, store)
	cache := newFakeCache()
	authz := usecase.NewAuthorizationService(store.Roles(), cache, nil)
	ctx := context.Background()

	_, err := authz.Resolve(ctx, "r-op", "operario")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, []string{"inventario:*", "lotes:ver"}, cache.data["r-op"])

	set, err := authz.Resolve(ctx, "r-op", "operario")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.True(t, set.Allows("lotes", "ver"))

	authz.Invalidate(ctx, "r-op")
	assert.NotContains(t, cache.data, "r-op")
}

func TestResolve_CacheCaidoConsultaRepositorio(t *testing.T) {
	store := memrepo.New()
	seedRoles(t, store)
	cache := newFakeCache()
	cache.err = errors.New("redis caído")
	authz := usecase.NewAuthorizationService(store.Roles(), cache, nil)

	set, err := authz.Resolve(context.Background(), "r-op", "operario")
	require.NoError(t, err)
	assert.True(t, set.Allows("lotes", "ver"))
}

func TestRoleUseCase_SetPermissionsInvalidaCache(t *testing.T) {
	store := memrepo.New()
	seedRoles(t, store)
	cache := newFakeCache()
	authz := usecase.NewAuthorizationService(store.Roles(), cache, nil)
	uc := usecase.NewRoleUseCase(store.Roles(), store.Permissions(), authz)
	ctx := context.Background()

	_, err := authz.Resolve(ctx, "r-op", "operario")
	require.NoError(t, err)

	resp, err := uc.SetPermissions(ctx, "r-op", dto.SetRolePermissionsRequest{
		PermissionIDs: []string{"p-usr-crear", "p-usr-crear", "p-lotes-ver"},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Permissions, 2, "los repetidos se ignoran")
	assert.Contains(t, cache.invalidated, "r-op")

	ok, err := authz.Allows(ctx, "r-op", "operario", "usuarios", "crear")
	require.NoError(t, err)
	assert.True(t, ok, "tras invalidar se leen las asignaciones nuevas")

	_, err = uc.SetPermissions(ctx, "r-op", dto.SetRolePermissionsRequest{PermissionIDs: []string{"no-existe"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRoleUseCase_AdminProtegido(t *testing.T) {
	store := memrepo.New()
	seedRoles(t, store)
	uc := usecase.NewRoleUseCase(store.Roles(), store.Permissions(), usecase.NewAuthorizationService(store.Roles(), nil, nil))
	ctx := context.Background()

	assert.ErrorIs(t, uc.Delete(ctx, "r-admin"), domain.ErrConflict)
	_, err := uc.Update(ctx, "r-admin", dto.RoleRequest{Name: "jefe"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = uc.Create(ctx, dto.RoleRequest{Name: "operario"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	assert.ErrorIs(t, uc.Delete(ctx, "no-existe"), domain.ErrNotFound)
}

func TestRoleUseCase_CreatePermissionNormaliza(t *testing.T) {
	store := memrepo.New()
	uc := usecase.NewRoleUseCase(store.Roles(), store.Permissions(), usecase.NewAuthorizationService(store.Roles(), nil, nil))
	ctx := context.Background()

	p, err := uc.CreatePermission(ctx, dto.CreatePermissionRequest{Resource: " Tratamientos ", Action: "Actualizar"})
	require.NoError(t, err)
	assert.Equal(t, "tratamientos", p.Resource)
	assert.Equal(t, "editar", p.Action)
	assert.Equal(t, "tratamientos:editar", p.Key)

	_, err = uc.CreatePermission(ctx, dto.CreatePermissionRequest{Resource: "tratamientos", Action: "editar"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}
