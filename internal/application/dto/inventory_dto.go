package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SupplyRequest alta o modificación de un insumo.
type SupplyRequest struct {
	Name     string          `json:"nombre" validate:"required,max=120"`
	Category string          `json:"categoria" validate:"omitempty,max=60"`
	Unit     string          `json:"unidad_medida" validate:"required,max=20"`
	UnitCost decimal.Decimal `json:"costo_unitario" validate:"min=0"`
	MinStock decimal.Decimal `json:"stock_minimo" validate:"min=0"`
}

// SupplyResponse salida de un insumo con su cantidad actual.
type SupplyResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"nombre"`
	Category  string          `json:"categoria"`
	Unit      string          `json:"unidad_medida"`
	UnitCost  decimal.Decimal `json:"costo_unitario"`
	MinStock  decimal.Decimal `json:"stock_minimo"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// InventoryItemResponse cantidad almacenada de un insumo.
type InventoryItemResponse struct {
	ID         string          `json:"id"`
	SupplyID   string          `json:"insumo_id"`
	SupplyName string          `json:"insumo"`
	Unit       string          `json:"unidad_medida"`
	Quantity   decimal.Decimal `json:"cantidad"`
	MinStock   decimal.Decimal `json:"stock_minimo"`
	UnitCost   decimal.Decimal `json:"costo_unitario"`
	TotalValue decimal.Decimal `json:"valor_total"`
	BelowMin   bool            `json:"bajo_minimo"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// MovementRequest body de POST/PUT /movimientos.
// Cantidad numérica > 0; un valor no numérico falla al decodificar el JSON.
type MovementRequest struct {
	SupplyID string           `json:"insumo_id" validate:"required,uuid"`
	Type     string           `json:"tipo" validate:"required,oneof=entrada salida"`
	Quantity decimal.Decimal  `json:"cantidad" validate:"gt=0"`
	UnitCost *decimal.Decimal `json:"costo_unitario,omitempty"`
	Date     string           `json:"fecha"`
	CropID   string           `json:"cultivo_id" validate:"omitempty,uuid"`
	Note     string           `json:"observacion" validate:"omitempty,max=500"`
}

// MovementQuery filtros de GET /movimientos.
type MovementQuery struct {
	SupplyID string `query:"insumo_id"`
	Type     string `query:"tipo"`
	CropID   string `query:"cultivo_id"`
	From     string `query:"desde"`
	To       string `query:"hasta"`
	PageRequest
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID          string          `json:"id"`
	SupplyID    string          `json:"insumo_id"`
	SupplyName  string          `json:"insumo,omitempty"`
	Type        string          `json:"tipo"`
	Quantity    decimal.Decimal `json:"cantidad"`
	UnitCost    decimal.Decimal `json:"costo_unitario"`
	TotalCost   decimal.Decimal `json:"costo_total"`
	Date        time.Time       `json:"fecha"`
	CropID      string          `json:"cultivo_id,omitempty"`
	TreatmentID string          `json:"tratamiento_id,omitempty"`
	UserID      string          `json:"usuario_id,omitempty"`
	Note        string          `json:"observacion,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ReplenishmentSuggestionDTO insumo bajo su stock mínimo con la cantidad sugerida a comprar.
type ReplenishmentSuggestionDTO struct {
	SupplyID           string          `json:"insumo_id"`
	SupplyName         string          `json:"insumo"`
	Unit               string          `json:"unidad_medida"`
	CurrentStock       decimal.Decimal `json:"stock_actual"`
	MinStock           decimal.Decimal `json:"stock_minimo"`
	IdealStock         decimal.Decimal `json:"stock_ideal"`       // MinStock * 1.5
	SuggestedOrderQty  decimal.Decimal `json:"cantidad_sugerida"` // IdealStock - CurrentStock
	UnitCost           decimal.Decimal `json:"costo_unitario"`
	EstimatedOrderCost decimal.Decimal `json:"costo_estimado"`
	Priority           int             `json:"prioridad"` // 1 = más urgente
}

// ReconciliationResponse comparación entre la cantidad almacenada y la derivada del historial.
type ReconciliationResponse struct {
	SupplyID      string          `json:"insumo_id"`
	Stored        decimal.Decimal `json:"cantidad_almacenada"`
	Derived       decimal.Decimal `json:"cantidad_derivada"`
	Drift         decimal.Decimal `json:"diferencia"` // Stored - Derived
	Consistent    bool            `json:"consistente"`
	Repaired      bool            `json:"reparado"`
	MovementCount int             `json:"movimientos"`
}

// TreatmentSupplyRequest insumo consumido por un tratamiento.
type TreatmentSupplyRequest struct {
	SupplyID string          `json:"insumo_id" validate:"required,uuid"`
	Quantity decimal.Decimal `json:"cantidad" validate:"gt=0"`
}

// TreatmentRequest body de POST /tratamientos.
type TreatmentRequest struct {
	CropID      string                   `json:"cultivo_id" validate:"required,uuid"`
	Type        string                   `json:"tipo" validate:"required,max=60"`
	Description string                   `json:"descripcion" validate:"omitempty,max=1000"`
	Date        string                   `json:"fecha"`
	Supplies    []TreatmentSupplyRequest `json:"insumos" validate:"dive"`
}

// TreatmentSupplyResponse detalle de insumo en la respuesta.
type TreatmentSupplyResponse struct {
	SupplyID   string          `json:"insumo_id"`
	Quantity   decimal.Decimal `json:"cantidad"`
	MovementID string          `json:"movimiento_id"`
}

// TreatmentResponse salida de un tratamiento.
type TreatmentResponse struct {
	ID          string                    `json:"id"`
	CropID      string                    `json:"cultivo_id"`
	Type        string                    `json:"tipo"`
	Description string                    `json:"descripcion"`
	Date        time.Time                 `json:"fecha"`
	UserID      string                    `json:"usuario_id,omitempty"`
	Supplies    []TreatmentSupplyResponse `json:"insumos"`
	CreatedAt   time.Time                 `json:"created_at"`
}
