package inventory

import "github.com/shopspring/decimal"

// costScale coincide con NUMERIC(14,4) de insumos.costo_unitario.
const costScale = 4

// WeightedAverageCost recalcula el costo unitario de un insumo tras una entrada.
// Un stock previo negativo o nulo no pondera: el costo queda en el de la entrada.
func WeightedAverageCost(stock, unitCost, inQty, inCost decimal.Decimal) decimal.Decimal {
	if !inQty.IsPositive() {
		return unitCost
	}
	if !stock.IsPositive() {
		return inCost.Round(costScale)
	}
	value := stock.Mul(unitCost).Add(inQty.Mul(inCost))
	return value.Div(stock.Add(inQty)).Round(costScale)
}
