package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinanceRequest alta o modificación de un ingreso/egreso.
type FinanceRequest struct {
	Type    string          `json:"tipo" validate:"required,oneof=ingreso egreso"`
	Concept string          `json:"concepto" validate:"required,max=255"`
	Amount  decimal.Decimal `json:"monto" validate:"gt=0"`
	Date    string          `json:"fecha"`
	CropID  string          `json:"cultivo_id" validate:"omitempty,uuid"`
}

// FinanceQuery filtros de GET /finanzas y /finanzas/resumen.
type FinanceQuery struct {
	Type   string `query:"tipo"`
	CropID string `query:"cultivo_id"`
	From   string `query:"desde"`
	To     string `query:"hasta"`
	PageRequest
}

// FinanceResponse salida de un registro financiero.
type FinanceResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"tipo"`
	Concept   string          `json:"concepto"`
	Amount    decimal.Decimal `json:"monto"`
	Date      time.Time       `json:"fecha"`
	CropID    string          `json:"cultivo_id,omitempty"`
	UserID    string          `json:"usuario_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// FinanceSummaryDTO respuesta de GET /finanzas/resumen.
type FinanceSummaryDTO struct {
	From        time.Time        `json:"desde"`
	To          time.Time        `json:"hasta"`
	Income      decimal.Decimal  `json:"ingresos"`
	Expense     decimal.Decimal  `json:"egresos"`
	SupplyCost  decimal.Decimal  `json:"costo_insumos"` // salidas * costo unitario del período
	Balance     decimal.Decimal  `json:"balance"`       // ingresos - egresos - costo_insumos
	ByCrop      []CropFinanceDTO `json:"por_cultivo"`
	PeriodLabel string           `json:"periodo"`
}

// CropFinanceDTO desglose por cultivo.
type CropFinanceDTO struct {
	CropID     string          `json:"cultivo_id"`
	CropName   string          `json:"cultivo"`
	Income     decimal.Decimal `json:"ingresos"`
	Expense    decimal.Decimal `json:"egresos"`
	SupplyCost decimal.Decimal `json:"costo_insumos"`
	Balance    decimal.Decimal `json:"balance"`
}
