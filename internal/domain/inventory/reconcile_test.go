package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/domain/inventory"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func state(supply, tipo, qty string) inventory.MovementState {
	return inventory.MovementState{SupplyID: supply, Type: tipo, Quantity: dec(qty)}
}

func TestEffect_SignoPorTipo(t *testing.T) {
	assert.True(t, state("a", entity.MovementEntrada, "5").Effect().Equal(dec("5")))
	assert.True(t, state("a", entity.MovementSalida, "5").Effect().Equal(dec("-5")))
}

func TestPlanCreate_Validaciones(t *testing.T) {
	cases := []struct {
		name string
		in   inventory.MovementState
	}{
		{"cantidad cero", state("a", entity.MovementEntrada, "0")},
		{"cantidad negativa", state("a", entity.MovementSalida, "-2")},
		{"tipo desconocido", state("a", "ajuste", "2")},
		{"sin insumo", state("", entity.MovementEntrada, "2")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := inventory.PlanCreate(tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestPlanEdit_MismoInsumoAplicaSoloDeltaNeto(t *testing.T) {
	// entrada 10 -> entrada 4: el ítem baja 6
	plan, err := inventory.PlanEdit(
		state("a", entity.MovementEntrada, "10"),
		state("a", entity.MovementEntrada, "4"),
	)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "a", plan[0].SupplyID)
	assert.True(t, plan[0].Delta.Equal(dec("-6")))
	assert.True(t, plan[0].MustExist)
}

func TestPlanEdit_CambioDeTipoInvierteSigno(t *testing.T) {
	// entrada 3 -> salida 2: delta = -2 - 3 = -5
	plan, err := inventory.PlanEdit(
		state("a", entity.MovementEntrada, "3"),
		state("a", entity.MovementSalida, "2"),
	)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.True(t, plan[0].Delta.Equal(dec("-5")))
}

func TestPlanEdit_SinCambiosNoGeneraAjustes(t *testing.T) {
	plan, err := inventory.PlanEdit(
		state("a", entity.MovementSalida, "3"),
		state("a", entity.MovementSalida, "3.000"),
	)
	require.NoError(t, err)
	assert.Empty(t, plan)
}

func TestPlanEdit_CambioDeInsumoRevierteYAplica(t *testing.T) {
	plan, err := inventory.PlanEdit(
		state("z", entity.MovementEntrada, "8"),
		state("b", entity.MovementSalida, "2"),
	)
	require.NoError(t, err)
	require.Len(t, plan, 2)

	// ordenado por insumo: b antes que z
	assert.Equal(t, "b", plan[0].SupplyID)
	assert.True(t, plan[0].Delta.Equal(dec("-2")))
	assert.False(t, plan[0].MustExist, "el destino se crea si no existe")

	assert.Equal(t, "z", plan[1].SupplyID)
	assert.True(t, plan[1].Delta.Equal(dec("-8")), "se revierte la entrada original")
	assert.True(t, plan[1].MustExist, "la reversión exige el ítem original")
}

func TestPlanDelete_RevierteEfecto(t *testing.T) {
	plan := inventory.PlanDelete(state("a", entity.MovementSalida, "4"))
	require.Len(t, plan, 1)
	assert.True(t, plan[0].Delta.Equal(dec("4")))
	assert.True(t, plan[0].MustExist)
}

func TestApply_RechazaNegativos(t *testing.T) {
	next, err := inventory.Apply(dec("5"), inventory.Adjustment{Delta: dec("-5")})
	require.NoError(t, err)
	assert.True(t, next.IsZero())

	_, err = inventory.Apply(dec("5"), inventory.Adjustment{Delta: dec("-5.01")})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestDerive_SumaNetaDeMovimientos(t *testing.T) {
	movs := []*entity.Movement{
		{SupplyID: "a", Type: entity.MovementEntrada, Quantity: dec("10")},
		{SupplyID: "a", Type: entity.MovementSalida, Quantity: dec("2.5")},
		{SupplyID: "a", Type: entity.MovementEntrada, Quantity: dec("1")},
	}
	assert.True(t, inventory.Derive(movs).Equal(dec("8.5")))
	assert.True(t, inventory.Derive(nil).IsZero())
}

func TestWeightedAverageCost(t *testing.T) {
	cases := []struct {
		name                             string
		stock, cost, inQty, inCost, want string
	}{
		{"pondera stock y entrada", "10", "100", "10", "200", "150"},
		{"sin stock previo toma la entrada", "0", "999", "4", "25", "25"},
		{"stock negativo no pondera", "-3", "50", "2", "80", "80"},
		{"redondea a cuatro decimales", "3", "1", "1", "2", "1.25"},
		{"tercios", "2", "1", "1", "2", "1.3333"},
		{"entrada nula conserva el costo", "5", "40", "0", "90", "40"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := inventory.WeightedAverageCost(dec(tc.stock), dec(tc.cost), dec(tc.inQty), dec(tc.inCost))
			assert.True(t, got.Equal(dec(tc.want)), got.String())
		})
	}
}
