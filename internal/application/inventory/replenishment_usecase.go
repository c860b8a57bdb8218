package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
)

// idealFactor stock ideal = stock mínimo * 1.5.
var idealFactor = decimal.NewFromFloat(1.5)

// StockUseCase consultas de cantidades almacenadas y lista de reposición.
type StockUseCase struct {
	itemRepo   repository.InventoryItemRepository
	supplyRepo repository.SupplyRepository
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(itemRepo repository.InventoryItemRepository, supplyRepo repository.SupplyRepository) *StockUseCase {
	return &StockUseCase{itemRepo: itemRepo, supplyRepo: supplyRepo}
}

// List todos los ítems de inventario con datos del insumo.
func (uc *StockUseCase) List(ctx context.Context) ([]dto.InventoryItemResponse, error) {
	items, err := uc.itemRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InventoryItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResponse(it))
	}
	return out, nil
}

// GetBySupply ítem de un insumo. Un insumo existente sin movimientos se informa en cero.
func (uc *StockUseCase) GetBySupply(ctx context.Context, supplyID string) (*dto.InventoryItemResponse, error) {
	item, err := uc.itemRepo.GetBySupply(ctx, supplyID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		supply, err := uc.supplyRepo.GetByID(ctx, supplyID)
		if err != nil {
			return nil, err
		}
		if supply == nil {
			return nil, fmt.Errorf("%w: insumo", domain.ErrNotFound)
		}
		item = &entity.InventoryItem{
			SupplyID:   supply.ID,
			SupplyName: supply.Name,
			Unit:       supply.Unit,
			UnitCost:   supply.UnitCost,
			MinStock:   supply.MinStock,
			UpdatedAt:  supply.UpdatedAt,
		}
	}
	out := toItemResponse(item)
	return &out, nil
}

// GenerateReplenishmentList devuelve los insumos bajo su stock mínimo con la cantidad
// sugerida para volver al stock ideal, ordenados por déficit relativo (más urgente primero).
func (uc *StockUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	rawItems, err := uc.itemRepo.ListBelowMinimum(ctx)
	if err != nil {
		return nil, err
	}
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(rawItems))
	for _, item := range rawItems {
		idealStock := item.MinStock.Mul(idealFactor)
		suggestedQty := idealStock.Sub(item.Quantity)
		if suggestedQty.LessThanOrEqual(decimal.Zero) {
			suggestedQty = decimal.Zero
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			SupplyID:           item.SupplyID,
			SupplyName:         item.SupplyName,
			Unit:               item.Unit,
			CurrentStock:       item.Quantity,
			MinStock:           item.MinStock,
			IdealStock:         idealStock,
			SuggestedOrderQty:  suggestedQty,
			UnitCost:           item.UnitCost,
			EstimatedOrderCost: suggestedQty.Mul(item.UnitCost).Round(2),
		})
	}

	// Déficit relativo: (mínimo - actual) / mínimo; a igualdad, mayor costo estimado primero.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		ra, rb := relativeDeficit(a), relativeDeficit(b)
		if !ra.Equal(rb) {
			return ra.GreaterThan(rb)
		}
		return a.EstimatedOrderCost.GreaterThan(b.EstimatedOrderCost)
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}

func relativeDeficit(s dto.ReplenishmentSuggestionDTO) decimal.Decimal {
	if s.MinStock.IsZero() {
		return decimal.Zero
	}
	return s.MinStock.Sub(s.CurrentStock).Div(s.MinStock)
}

func toItemResponse(it *entity.InventoryItem) dto.InventoryItemResponse {
	return dto.InventoryItemResponse{
		ID:         it.ID,
		SupplyID:   it.SupplyID,
		SupplyName: it.SupplyName,
		Unit:       it.Unit,
		Quantity:   it.Quantity,
		MinStock:   it.MinStock,
		UnitCost:   it.UnitCost,
		TotalValue: it.Quantity.Mul(it.UnitCost).Round(2),
		BelowMin:   it.MinStock.GreaterThan(decimal.Zero) && it.Quantity.LessThan(it.MinStock),
		UpdatedAt:  it.UpdatedAt,
	}
}
