package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/application/inventory"
	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
)

func newTreatmentUC(t *testing.T, f *fixture) *inventory.TreatmentUseCase {
	t.Helper()
	require.NoError(t, f.store.Crops().Create(context.Background(), &entity.Crop{ID: cropID, Name: "Café", Status: entity.CropStatusActive}))
	return inventory.NewTreatmentUseCase(f.store.TxRunner(), f.store.Crops(), f.store.Treatments(), f.store.Supplies(), f.spy)
}

func TestTreatment_ConsumeInsumosConSalidas(t *testing.T) {
	f := newFixture(t)
	uc := newTreatmentUC(t, f)
	f.create(t, supplyA, entity.MovementEntrada, "10")
	f.create(t, supplyB, entity.MovementEntrada, "4")

	tr, err := uc.Create(context.Background(), "u1", dto.TreatmentRequest{
		CropID: cropID, Type: "fertilización", Date: "2026-03-01",
		Supplies: []dto.TreatmentSupplyRequest{
			{SupplyID: supplyB, Quantity: dec("1")},
			{SupplyID: supplyA, Quantity: dec("2")},
		},
	})
	require.NoError(t, err)
	require.Len(t, tr.Supplies, 2)
	assert.NotEmpty(t, tr.Supplies[0].MovementID)
	assert.True(t, f.qty(supplyA).Equal(dec("8")))
	assert.True(t, f.qty(supplyB).Equal(dec("3")))

	out, err := f.movs.List(context.Background(), dto.MovementQuery{CropID: cropID})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Page.Total)
	for _, m := range out.Items {
		assert.Equal(t, tr.ID, m.TreatmentID)
		assert.Equal(t, entity.MovementSalida, m.Type)
	}
}

func TestTreatment_StockInsuficienteAbortaTodo(t *testing.T) {
	f := newFixture(t)
	uc := newTreatmentUC(t, f)
	f.create(t, supplyA, entity.MovementEntrada, "10")
	f.create(t, supplyB, entity.MovementEntrada, "1")

	_, err := uc.Create(context.Background(), "u1", dto.TreatmentRequest{
		CropID: cropID, Type: "fumigación",
		Supplies: []dto.TreatmentSupplyRequest{
			{SupplyID: supplyA, Quantity: dec("2")},
			{SupplyID: supplyB, Quantity: dec("5")},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.qty(supplyA).Equal(dec("10")), "la salida de A se revierte")
	assert.Equal(t, 2, f.store.Movements().Count())

	list, err := uc.ListByCrop(context.Background(), cropID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTreatment_DeleteDevuelveInventario(t *testing.T) {
	f := newFixture(t)
	uc := newTreatmentUC(t, f)
	f.create(t, supplyA, entity.MovementEntrada, "10")

	tr, err := uc.Create(context.Background(), "u1", dto.TreatmentRequest{
		CropID: cropID, Type: "riego",
		Supplies: []dto.TreatmentSupplyRequest{{SupplyID: supplyA, Quantity: dec("6")}},
	})
	require.NoError(t, err)
	assert.True(t, f.qty(supplyA).Equal(dec("4")))

	require.NoError(t, uc.Delete(context.Background(), tr.ID))
	assert.True(t, f.qty(supplyA).Equal(dec("10")))
	_, err = uc.GetByID(context.Background(), tr.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTreatment_MovimientoDeTratamientoNoSeEditaSuelto(t *testing.T) {
	f := newFixture(t)
	uc := newTreatmentUC(t, f)
	f.create(t, supplyA, entity.MovementEntrada, "10")
	tr, err := uc.Create(context.Background(), "u1", dto.TreatmentRequest{
		CropID: cropID, Type: "riego",
		Supplies: []dto.TreatmentSupplyRequest{{SupplyID: supplyA, Quantity: dec("1")}},
	})
	require.NoError(t, err)

	err = f.movs.Delete(context.Background(), tr.Supplies[0].MovementID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestTreatment_Validaciones(t *testing.T) {
	f := newFixture(t)
	uc := newTreatmentUC(t, f)
	ctx := context.Background()

	_, err := uc.Create(ctx, "u1", dto.TreatmentRequest{CropID: "otro", Type: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Create(ctx, "u1", dto.TreatmentRequest{
		CropID: cropID, Type: "x",
		Supplies: []dto.TreatmentSupplyRequest{{SupplyID: supplyA, Quantity: dec("1")}, {SupplyID: supplyA, Quantity: dec("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReplenishment_OrdenaPorDeficitRelativo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Supplies().Create(ctx, &entity.Supply{ID: "s-cal", Name: "Cal", Unit: "kg", MinStock: dec("100"), UnitCost: dec("2")}))
	f.create(t, supplyA, entity.MovementEntrada, "4")  // 4 de 5: déficit 20%
	f.create(t, "s-cal", entity.MovementEntrada, "10") // 10 de 100: déficit 90%
	f.create(t, supplyB, entity.MovementEntrada, "1")  // sin mínimo

	list, err := inventory.NewStockUseCase(f.store.Items(), f.store.Supplies()).GenerateReplenishmentList(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Cal", list[0].SupplyName)
	assert.Equal(t, 1, list[0].Priority)
	assert.True(t, list[0].SuggestedOrderQty.Equal(dec("140")), "150 ideal - 10 actual")
	assert.True(t, list[0].EstimatedOrderCost.Equal(dec("280")))
	assert.Equal(t, "Urea", list[1].SupplyName)
}
