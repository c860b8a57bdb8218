// Package inventory contiene las reglas puras del inventario de insumos:
// efecto de cada movimiento sobre la cantidad almacenada, plan de ajustes al
// crear/editar/eliminar movimientos y costo promedio ponderado.
package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
)

// MovementState triple (insumo, tipo, cantidad) que determina el efecto de un movimiento.
type MovementState struct {
	SupplyID string
	Type     string
	Quantity decimal.Decimal
}

// StateOf extrae el MovementState de un movimiento persistido.
func StateOf(m *entity.Movement) MovementState {
	return MovementState{SupplyID: m.SupplyID, Type: m.Type, Quantity: m.Quantity}
}

// Adjustment cambio a aplicar sobre la cantidad de un ítem de inventario.
// MustExist indica que el ítem debe existir (reversiones); si es false y no existe, se crea en cero.
type Adjustment struct {
	SupplyID  string
	Delta     decimal.Decimal
	MustExist bool
}

// Validate comprueba tipo, insumo y cantidad positiva.
func (s MovementState) Validate() error {
	if s.SupplyID == "" {
		return domain.ErrInvalidInput
	}
	if s.Type != entity.MovementEntrada && s.Type != entity.MovementSalida {
		return domain.ErrInvalidInput
	}
	if !s.Quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	return nil
}

// Effect devuelve el cambio con signo: +cantidad para entrada, -cantidad para salida.
func (s MovementState) Effect() decimal.Decimal {
	if s.Type == entity.MovementSalida {
		return s.Quantity.Neg()
	}
	return s.Quantity
}

// PlanCreate ajuste que produce registrar un movimiento nuevo.
// Una salida sobre un insumo sin ítem se evalúa contra stock cero.
func PlanCreate(m MovementState) ([]Adjustment, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return []Adjustment{{SupplyID: m.SupplyID, Delta: m.Effect()}}, nil
}

// PlanEdit ajustes que produce reemplazar old por updated.
//
// Mismo insumo: un único ajuste con el delta neto (vacío si el delta es cero).
// Insumo distinto: reversión sobre el ítem original (que debe existir) y efecto nuevo
// sobre el destino, que se crea si no existe.
// El resultado va ordenado por SupplyID para que los llamadores bloqueen filas en orden estable.
func PlanEdit(old, updated MovementState) ([]Adjustment, error) {
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	if old.SupplyID == updated.SupplyID {
		delta := updated.Effect().Sub(old.Effect())
		if delta.IsZero() {
			return nil, nil
		}
		return []Adjustment{{SupplyID: old.SupplyID, Delta: delta, MustExist: true}}, nil
	}
	plan := []Adjustment{
		{SupplyID: old.SupplyID, Delta: old.Effect().Neg(), MustExist: true},
		{SupplyID: updated.SupplyID, Delta: updated.Effect()},
	}
	sort.Slice(plan, func(i, j int) bool { return plan[i].SupplyID < plan[j].SupplyID })
	return plan, nil
}

// PlanDelete ajuste que revierte el efecto de un movimiento eliminado.
func PlanDelete(m MovementState) []Adjustment {
	return []Adjustment{{SupplyID: m.SupplyID, Delta: m.Effect().Neg(), MustExist: true}}
}

// Apply aplica el ajuste sobre la cantidad actual. Rechaza resultados negativos.
func Apply(current decimal.Decimal, adj Adjustment) (decimal.Decimal, error) {
	next := current.Add(adj.Delta)
	if next.LessThan(decimal.Zero) {
		return current, domain.ErrInsufficientStock
	}
	return next, nil
}

// Derive calcula la cantidad que corresponde al historial de movimientos (entradas - salidas).
func Derive(movements []*entity.Movement) decimal.Decimal {
	total := decimal.Zero
	for _, m := range movements {
		total = total.Add(StateOf(m).Effect())
	}
	return total
}
