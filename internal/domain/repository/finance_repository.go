package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
)

// FinanceFilter filtros del listado de registros financieros.
type FinanceFilter struct {
	Type   string
	CropID string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// CropFinance totales por cultivo.
type CropFinance struct {
	CropID   string
	CropName string
	Income   decimal.Decimal
	Expense  decimal.Decimal
}

// FinanceRepository ingresos y egresos.
type FinanceRepository interface {
	Create(ctx context.Context, r *entity.FinanceRecord) error
	GetByID(ctx context.Context, id string) (*entity.FinanceRecord, error)
	List(ctx context.Context, f FinanceFilter) ([]*entity.FinanceRecord, int, error)
	Update(ctx context.Context, r *entity.FinanceRecord) error
	Delete(ctx context.Context, id string) error
	// Totals usa COALESCE para devolver cero si no hay registros en el período.
	Totals(ctx context.Context, from, to time.Time) (income, expense decimal.Decimal, err error)
	TotalsByCrop(ctx context.Context, from, to time.Time) ([]CropFinance, error)
}
