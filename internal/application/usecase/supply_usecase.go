package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
)

// SupplyUseCase catálogo de insumos.
type SupplyUseCase struct {
	repo repository.SupplyRepository
}

// NewSupplyUseCase construye el caso de uso.
func NewSupplyUseCase(repo repository.SupplyRepository) *SupplyUseCase {
	return &SupplyUseCase{repo: repo}
}

// Create registra un insumo. El nombre es único.
func (uc *SupplyUseCase) Create(ctx context.Context, in dto.SupplyRequest) (*dto.SupplyResponse, error) {
	if err := validateSupply(in); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if existing, err := uc.repo.GetByName(ctx, name); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("%w: ya existe el insumo %q", domain.ErrDuplicate, name)
	}
	now := time.Now()
	s := &entity.Supply{
		ID:        uuid.New().String(),
		Name:      name,
		Category:  in.Category,
		Unit:      in.Unit,
		UnitCost:  in.UnitCost,
		MinStock:  in.MinStock,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return toSupplyResponse(s), nil
}

// GetByID obtiene un insumo.
func (uc *SupplyUseCase) GetByID(ctx context.Context, id string) (*dto.SupplyResponse, error) {
	s, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSupplyResponse(s), nil
}

// List insumos paginados.
func (uc *SupplyUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ListResponse[dto.SupplyResponse], error) {
	page.DefaultPage()
	list, total, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SupplyResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSupplyResponse(s))
	}
	return &dto.ListResponse[dto.SupplyResponse]{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Update modifica el insumo. El costo unitario enviado reemplaza el promedio vigente.
func (uc *SupplyUseCase) Update(ctx context.Context, id string, in dto.SupplyRequest) (*dto.SupplyResponse, error) {
	if err := validateSupply(in); err != nil {
		return nil, err
	}
	s, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if !strings.EqualFold(name, s.Name) {
		if other, err := uc.repo.GetByName(ctx, name); err != nil {
			return nil, err
		} else if other != nil && other.ID != id {
			return nil, fmt.Errorf("%w: ya existe el insumo %q", domain.ErrDuplicate, name)
		}
	}
	s.Name = name
	s.Category = in.Category
	s.Unit = in.Unit
	s.UnitCost = in.UnitCost
	s.MinStock = in.MinStock
	s.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return toSupplyResponse(s), nil
}

// Delete elimina un insumo sin movimientos; con historial devuelve ErrConflict.
func (uc *SupplyUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

func (uc *SupplyUseCase) get(ctx context.Context, id string) (*entity.Supply, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: insumo", domain.ErrNotFound)
	}
	return s, nil
}

func validateSupply(in dto.SupplyRequest) error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Unit) == "" {
		return fmt.Errorf("%w: nombre y unidad_medida son obligatorios", domain.ErrInvalidInput)
	}
	if in.UnitCost.IsNegative() || in.MinStock.IsNegative() {
		return fmt.Errorf("%w: costo y stock mínimo no pueden ser negativos", domain.ErrInvalidInput)
	}
	return nil
}

func toSupplyResponse(s *entity.Supply) *dto.SupplyResponse {
	return &dto.SupplyResponse{
		ID:        s.ID,
		Name:      s.Name,
		Category:  s.Category,
		Unit:      s.Unit,
		UnitCost:  s.UnitCost.Round(4),
		MinStock:  s.MinStock,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

