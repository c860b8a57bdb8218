package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Treatment aplicación sobre un cultivo (fertilización, control fitosanitario, riego...).
type Treatment struct {
	ID          string
	CropID      string
	Type        string
	Description string
	Date        time.Time
	UserID      string
	Supplies    []TreatmentSupply
	CreatedAt   time.Time
}

// TreatmentSupply insumo consumido por un tratamiento (tabla tratamiento_insumos).
type TreatmentSupply struct {
	TreatmentID string
	SupplyID    string
	Quantity    decimal.Decimal
	MovementID  string
}
