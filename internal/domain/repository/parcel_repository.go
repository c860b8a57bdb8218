package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
)

// LotRepository persistencia de lotes.
type LotRepository interface {
	Create(ctx context.Context, lot *entity.Lot) error
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Lot, int, error)
	Update(ctx context.Context, lot *entity.Lot) error
	UpdateCoordinates(ctx context.Context, id string, coords []entity.Point, areaM2 decimal.Decimal) error
	Delete(ctx context.Context, id string) error
}

// SublotRepository persistencia de sublotes.
type SublotRepository interface {
	Create(ctx context.Context, s *entity.Sublot) error
	GetByID(ctx context.Context, id string) (*entity.Sublot, error)
	// ListByLot con lotID vacío lista todos.
	ListByLot(ctx context.Context, lotID string) ([]*entity.Sublot, error)
	Update(ctx context.Context, s *entity.Sublot) error
	UpdateCoordinates(ctx context.Context, id string, coords []entity.Point, areaM2 decimal.Decimal) error
	Delete(ctx context.Context, id string) error
}

// CropFilter filtros del listado de cultivos.
type CropFilter struct {
	SublotID string
	Status   string
	Limit    int
	Offset   int
}

// CropRepository persistencia de cultivos.
type CropRepository interface {
	Create(ctx context.Context, c *entity.Crop) error
	GetByID(ctx context.Context, id string) (*entity.Crop, error)
	List(ctx context.Context, f CropFilter) ([]*entity.Crop, int, error)
	Update(ctx context.Context, c *entity.Crop) error
	Delete(ctx context.Context, id string) error
}
