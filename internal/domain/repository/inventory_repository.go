package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
)

// SupplyRepository catálogo de insumos.
type SupplyRepository interface {
	Create(ctx context.Context, s *entity.Supply) error
	GetByID(ctx context.Context, id string) (*entity.Supply, error)
	// GetByIDForUpdate bloquea la fila del insumo (costo promedio).
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Supply, error)
	GetByName(ctx context.Context, name string) (*entity.Supply, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Supply, int, error)
	Update(ctx context.Context, s *entity.Supply) error
	UpdateCost(ctx context.Context, id string, unitCost decimal.Decimal) error
	Delete(ctx context.Context, id string) error
}

// InventoryItemRepository cantidad almacenada por insumo.
// Usado dentro de transacciones para garantizar consistencia.
type InventoryItemRepository interface {
	GetBySupply(ctx context.Context, supplyID string) (*entity.InventoryItem, error)
	// GetBySupplyForUpdate bloquea la fila (SELECT FOR UPDATE).
	GetBySupplyForUpdate(ctx context.Context, supplyID string) (*entity.InventoryItem, error)
	// LockOrCreate crea el ítem en cero si no existe y lo devuelve bloqueado.
	LockOrCreate(ctx context.Context, supplyID string, now time.Time) (*entity.InventoryItem, error)
	Upsert(ctx context.Context, item *entity.InventoryItem) error
	List(ctx context.Context) ([]*entity.InventoryItem, error)
	ListBelowMinimum(ctx context.Context) ([]*entity.InventoryItem, error)
}

// CropSupplyCost costo de insumos consumidos por un cultivo en un período.
type CropSupplyCost struct {
	CropID   string
	CropName string
	Cost     decimal.Decimal
}

// MovementRepository movimientos de entrada/salida.
type MovementRepository interface {
	Create(ctx context.Context, m *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Movement, error)
	Update(ctx context.Context, m *entity.Movement) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f entity.MovementFilter) ([]*entity.Movement, int, error)
	ListBySupply(ctx context.Context, supplyID string) ([]*entity.Movement, error)
	ListByTreatment(ctx context.Context, treatmentID string) ([]*entity.Movement, error)
	// SupplyCostByCrop suma salidas * costo_unitario agrupado por cultivo.
	// Las salidas sin cultivo se agrupan con CropID vacío.
	SupplyCostByCrop(ctx context.Context, from, to time.Time) ([]CropSupplyCost, error)
}

// TreatmentRepository tratamientos y su detalle de insumos.
type TreatmentRepository interface {
	Create(ctx context.Context, t *entity.Treatment) error
	GetByID(ctx context.Context, id string) (*entity.Treatment, error)
	ListByCrop(ctx context.Context, cropID string) ([]*entity.Treatment, error)
	Delete(ctx context.Context, id string) error
}
