package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementEntrada = "entrada"
	MovementSalida  = "salida"
)

// Supply insumo consumible (fertilizante, semilla, herramienta fungible...).
// UnitCost es promedio ponderado calculado desde las entradas.
type Supply struct {
	ID        string
	Name      string
	Category  string
	Unit      string
	UnitCost  decimal.Decimal
	MinStock  decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// InventoryItem cantidad almacenada de un insumo (una fila por insumo).
type InventoryItem struct {
	ID        string
	SupplyID  string
	Quantity  decimal.Decimal
	UpdatedAt time.Time

	// Campos desnormalizados al listar (JOIN insumos).
	SupplyName string
	Unit       string
	UnitCost   decimal.Decimal
	MinStock   decimal.Decimal
}

// Movement movimiento de entrada o salida de un insumo.
type Movement struct {
	ID          string
	SupplyID    string
	Type        string
	Quantity    decimal.Decimal // siempre positiva; el signo lo da Type
	UnitCost    decimal.Decimal
	Date        time.Time
	CropID      string // costeo por cultivo (opcional)
	TreatmentID string
	UserID      string
	Note        string
	CreatedAt   time.Time

	SupplyName string // desnormalizado al listar
}

// TotalCost cantidad * costo unitario.
func (m *Movement) TotalCost() decimal.Decimal {
	return m.Quantity.Mul(m.UnitCost)
}

// MovementFilter filtros del listado de movimientos.
type MovementFilter struct {
	SupplyID string
	Type     string
	CropID   string
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}
