package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/application/inventory"
	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/testutil/memrepo"
)

const (
	supplyA = "00000000-0000-0000-0000-00000000000a"
	supplyB = "00000000-0000-0000-0000-00000000000b"
	cropID  = "00000000-0000-0000-0000-0000000000c1"
)

type lowStockSpy struct{ items []*entity.InventoryItem }

func (s *lowStockSpy) NotifyLowStock(_ context.Context, it *entity.InventoryItem) {
	s.items = append(s.items, it)
}

type fixture struct {
	store *memrepo.Store
	movs  *inventory.MovementUseCase
	spy   *lowStockSpy
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memrepo.New()
	ctx := context.Background()
	require.NoError(t, store.Supplies().Create(ctx, &entity.Supply{ID: supplyA, Name: "Urea", Unit: "kg", MinStock: dec("5")}))
	require.NoError(t, store.Supplies().Create(ctx, &entity.Supply{ID: supplyB, Name: "Fungicida", Unit: "l"}))
	spy := &lowStockSpy{}
	uc := inventory.NewMovementUseCase(store.TxRunner(), store.Supplies(), store.Movements(), store.Items(), spy)
	return &fixture{store: store, movs: uc, spy: spy}
}

func (f *fixture) qty(supplyID string) decimal.Decimal { return f.store.Items().Quantity(supplyID) }

func (f *fixture) create(t *testing.T, supplyID, tipo, qty string) *dto.MovementResponse {
	t.Helper()
	m, err := f.movs.Create(context.Background(), inventory.MovementInput{SupplyID: supplyID, Type: tipo, Quantity: dec(qty)})
	require.NoError(t, err)
	return m
}

func TestCreate_EntradaCreaItemYActualizaCosto(t *testing.T) {
	f := newFixture(t)
	cost := dec("100")
	_, err := f.movs.Create(context.Background(), inventory.MovementInput{
		SupplyID: supplyA, Type: entity.MovementEntrada, Quantity: dec("10"), UnitCost: &cost,
	})
	require.NoError(t, err)
	cost2 := dec("200")
	_, err = f.movs.Create(context.Background(), inventory.MovementInput{
		SupplyID: supplyA, Type: entity.MovementEntrada, Quantity: dec("10"), UnitCost: &cost2,
	})
	require.NoError(t, err)

	assert.True(t, f.qty(supplyA).Equal(dec("20")))
	sp, _ := f.store.Supplies().GetByID(context.Background(), supplyA)
	assert.True(t, sp.UnitCost.Equal(dec("150")), sp.UnitCost.String())
}

func TestCreate_SalidaSinItemEsStockInsuficiente(t *testing.T) {
	f := newFixture(t)
	_, err := f.movs.Create(context.Background(), inventory.MovementInput{SupplyID: supplyB, Type: entity.MovementSalida, Quantity: dec("1")})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 0, f.store.Movements().Count())
}

func TestCreate_SalidaMayorAlStockNoModificaNada(t *testing.T) {
	f := newFixture(t)
	f.create(t, supplyA, entity.MovementEntrada, "3")

	_, err := f.movs.Create(context.Background(), inventory.MovementInput{SupplyID: supplyA, Type: entity.MovementSalida, Quantity: dec("3.5")})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.qty(supplyA).Equal(dec("3")))
	assert.Equal(t, 1, f.store.Movements().Count())
}

func TestCreate_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.movs.Create(ctx, inventory.MovementInput{SupplyID: supplyA, Type: entity.MovementEntrada, Quantity: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.movs.Create(ctx, inventory.MovementInput{SupplyID: supplyA, Type: "traslado", Quantity: dec("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.movs.Create(ctx, inventory.MovementInput{SupplyID: "no-existe", Type: entity.MovementEntrada, Quantity: dec("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_SalidaBajoMinimoNotifica(t *testing.T) {
	f := newFixture(t)
	f.create(t, supplyA, entity.MovementEntrada, "8")
	assert.Empty(t, f.spy.items)

	f.create(t, supplyA, entity.MovementSalida, "4")
	require.Len(t, f.spy.items, 1)
	assert.Equal(t, "Urea", f.spy.items[0].SupplyName)
	assert.True(t, f.spy.items[0].Quantity.Equal(dec("4")))
}

func TestEdit_MismoInsumoAplicaDelta(t *testing.T) {
	f := newFixture(t)
	m := f.create(t, supplyA, entity.MovementEntrada, "10")

	got, err := f.movs.Edit(context.Background(), m.ID, inventory.MovementInput{SupplyID: supplyA, Type: entity.MovementEntrada, Quantity: dec("4")})
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(dec("4")))
	assert.True(t, f.qty(supplyA).Equal(dec("4")))
}

func TestEdit_QueDejaNegativoSeRechazaCompleto(t *testing.T) {
	f := newFixture(t)
	entrada := f.create(t, supplyA, entity.MovementEntrada, "10")
	f.create(t, supplyA, entity.MovementSalida, "8")

	_, err := f.movs.Edit(context.Background(), entrada.ID, inventory.MovementInput{SupplyID: supplyA, Type: entity.MovementEntrada, Quantity: dec("5")})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.qty(supplyA).Equal(dec("2")))

	stored, err := f.movs.GetByID(context.Background(), entrada.ID)
	require.NoError(t, err)
	assert.True(t, stored.Quantity.Equal(dec("10")), "el movimiento no cambia")
}

func TestEdit_CambioDeInsumoRevierteYCreaDestino(t *testing.T) {
	f := newFixture(t)
	m := f.create(t, supplyA, entity.MovementEntrada, "10")

	_, err := f.movs.Edit(context.Background(), m.ID, inventory.MovementInput{SupplyID: supplyB, Type: entity.MovementEntrada, Quantity: dec("10")})
	require.NoError(t, err)
	assert.True(t, f.qty(supplyA).IsZero())
	assert.True(t, f.qty(supplyB).Equal(dec("10")))
}

func TestEdit_ReversionSinItemOriginalEsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// movimiento huérfano: existe sin ítem de inventario
	require.NoError(t, f.store.Movements().Create(ctx, &entity.Movement{
		ID: "m-huerfano", SupplyID: supplyA, Type: entity.MovementEntrada, Quantity: dec("2"), Date: time.Now(),
	}))

	_, err := f.movs.Edit(ctx, "m-huerfano", inventory.MovementInput{SupplyID: supplyB, Type: entity.MovementEntrada, Quantity: dec("2")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, f.qty(supplyB).IsZero(), "el destino no se toca si la reversión falla")
}

func TestEdit_MovimientoInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.movs.Edit(context.Background(), "nada", inventory.MovementInput{SupplyID: supplyA, Type: entity.MovementEntrada, Quantity: dec("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete_RevierteEfecto(t *testing.T) {
	f := newFixture(t)
	f.create(t, supplyA, entity.MovementEntrada, "10")
	salida := f.create(t, supplyA, entity.MovementSalida, "3")

	require.NoError(t, f.movs.Delete(context.Background(), salida.ID))
	assert.True(t, f.qty(supplyA).Equal(dec("10")))
	assert.Equal(t, 1, f.store.Movements().Count())
}

func TestDelete_EntradaYaConsumidaSeRechaza(t *testing.T) {
	f := newFixture(t)
	entrada := f.create(t, supplyA, entity.MovementEntrada, "10")
	f.create(t, supplyA, entity.MovementSalida, "7")

	err := f.movs.Delete(context.Background(), entrada.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.qty(supplyA).Equal(dec("3")))
	assert.Equal(t, 2, f.store.Movements().Count())
}

func TestDelete_Inexistente(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.movs.Delete(context.Background(), "nada"), domain.ErrNotFound)
}

func TestCantidadIgualASumaNetaTrasOperaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t, supplyA, entity.MovementEntrada, "12")
	b := f.create(t, supplyA, entity.MovementSalida, "2.5")
	f.create(t, supplyA, entity.MovementEntrada, "1")
	_, err := f.movs.Edit(ctx, b.ID, inventory.MovementInput{SupplyID: supplyA, Type: entity.MovementSalida, Quantity: dec("4")})
	require.NoError(t, err)
	_, err = f.movs.Edit(ctx, a.ID, inventory.MovementInput{SupplyID: supplyB, Type: entity.MovementEntrada, Quantity: dec("6")})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock, "A quedaría en 1 - 4 = -3")

	for _, id := range []string{supplyA, supplyB} {
		rec, err := f.movs.Reconcile(ctx, id, false)
		require.NoError(t, err)
		assert.True(t, rec.Consistent, "insumo %s: almacenado %s, derivado %s", id, rec.Stored, rec.Derived)
	}
}

func TestReconcile_DetectaYReparaDeriva(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, supplyA, entity.MovementEntrada, "10")
	// deriva artificial
	require.NoError(t, f.store.Items().Upsert(ctx, &entity.InventoryItem{SupplyID: supplyA, Quantity: dec("7")}))

	rec, err := f.movs.Reconcile(ctx, supplyA, false)
	require.NoError(t, err)
	assert.False(t, rec.Consistent)
	assert.True(t, rec.Drift.Equal(dec("-3")))
	assert.True(t, f.qty(supplyA).Equal(dec("7")), "sin repair no escribe")

	rec, err = f.movs.Reconcile(ctx, supplyA, true)
	require.NoError(t, err)
	assert.True(t, rec.Repaired)
	assert.True(t, f.qty(supplyA).Equal(dec("10")))
}

func TestList_FiltraPorTipo(t *testing.T) {
	f := newFixture(t)
	f.create(t, supplyA, entity.MovementEntrada, "10")
	f.create(t, supplyA, entity.MovementSalida, "1")
	f.create(t, supplyB, entity.MovementEntrada, "2")

	out, err := f.movs.List(context.Background(), dto.MovementQuery{Type: entity.MovementEntrada})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Page.Total)
	assert.Equal(t, 20, out.Page.Limit)

	_, err = f.movs.List(context.Background(), dto.MovementQuery{From: "ayer"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEdit_CambioDeTipoTomaElCostoPromedioVigente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c100, c200 := dec("100"), dec("200")
	first, err := f.movs.Create(ctx, inventory.MovementInput{SupplyID: supplyA, Type: entity.MovementEntrada, Quantity: dec("10"), UnitCost: &c100})
	require.NoError(t, err)
	_, err = f.movs.Create(ctx, inventory.MovementInput{SupplyID: supplyA, Type: entity.MovementEntrada, Quantity: dec("10"), UnitCost: &c200})
	require.NoError(t, err)

	got, err := f.movs.Edit(ctx, first.ID, inventory.MovementInput{SupplyID: supplyA, Type: entity.MovementSalida, Quantity: dec("2")})
	require.NoError(t, err)
	assert.True(t, got.UnitCost.Equal(dec("150")), "la salida se valora al promedio, no al costo de la entrada: %s", got.UnitCost)
	assert.True(t, f.qty(supplyA).Equal(dec("8")))

	sp, _ := f.store.Supplies().GetByID(ctx, supplyA)
	assert.True(t, sp.UnitCost.Equal(dec("150")), "editar no recalcula el promedio del insumo")
}
