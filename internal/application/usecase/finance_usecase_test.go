package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/application/usecase"
	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/testutil/memrepo"
)

func TestFinance_CRUDYFiltros(t *testing.T) {
	store := memrepo.New()
	ctx := context.Background()
	require.NoError(t, store.Crops().Create(ctx, &entity.Crop{ID: "c1", Name: "Café"}))
	uc := usecase.NewFinanceUseCase(store.Finance(), store.Crops())

	inc, err := uc.Create(ctx, "u1", dto.FinanceRequest{Type: "ingreso", Concept: "Venta", Amount: decimalOf(500), Date: "2026-04-10", CropID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "u1", inc.UserID)
	_, err = uc.Create(ctx, "u1", dto.FinanceRequest{Type: "egreso", Concept: "Jornales", Amount: decimalOf(200), Date: "2026-04-20"})
	require.NoError(t, err)

	list, err := uc.List(ctx, dto.FinanceQuery{Type: "ingreso"})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page.Total)

	list, err = uc.List(ctx, dto.FinanceQuery{From: "2026-04-15", To: "2026-04-20"})
	require.NoError(t, err)
	require.Equal(t, 1, list.Page.Total, "hasta incluye el día completo")
	assert.Equal(t, "Jornales", list.Items[0].Concept)

	upd, err := uc.Update(ctx, inc.ID, dto.FinanceRequest{Type: "ingreso", Concept: "Venta café", Amount: decimalOf(650), Date: "2026-04-10"})
	require.NoError(t, err)
	assert.True(t, upd.Amount.Equal(decimalOf(650)))

	require.NoError(t, uc.Delete(ctx, inc.ID))
	_, err = uc.GetByID(ctx, inc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFinance_Validaciones(t *testing.T) {
	store := memrepo.New()
	uc := usecase.NewFinanceUseCase(store.Finance(), store.Crops())
	ctx := context.Background()

	_, err := uc.Create(ctx, "u1", dto.FinanceRequest{Type: "donacion", Concept: "x", Amount: decimalOf(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, "u1", dto.FinanceRequest{Type: "egreso", Concept: "x", Amount: decimalOf(0)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, "u1", dto.FinanceRequest{Type: "egreso", Concept: "x", Amount: decimalOf(1), CropID: "no-existe"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.List(ctx, dto.FinanceQuery{From: "2026-05-01", To: "2026-04-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSupply_NombreUnico(t *testing.T) {
	store := memrepo.New()
	uc := usecase.NewSupplyUseCase(store.Supplies())
	ctx := context.Background()

	s, err := uc.Create(ctx, dto.SupplyRequest{Name: "Urea", Unit: "kg", UnitCost: decimalOf(2000), MinStock: decimalOf(10)})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.SupplyRequest{Name: "Urea", Unit: "kg"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	other, err := uc.Create(ctx, dto.SupplyRequest{Name: "DAP", Unit: "kg"})
	require.NoError(t, err)
	_, err = uc.Update(ctx, other.ID, dto.SupplyRequest{Name: "urea", Unit: "kg"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(ctx, dto.SupplyRequest{Name: "Cal", Unit: "kg", MinStock: decimalOf(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, uc.Delete(ctx, s.ID))
}
