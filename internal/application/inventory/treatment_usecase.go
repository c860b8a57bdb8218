package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/domain/inventory"
	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
)

// TreatmentUseCase registra tratamientos sobre cultivos. Cada insumo consumido genera
// una salida ligada al cultivo y al tratamiento, todo en la misma transacción.
type TreatmentUseCase struct {
	txRunner      TxRunner
	cropRepo      repository.CropRepository
	treatmentRepo repository.TreatmentRepository
	supplyRepo    repository.SupplyRepository
	notifier      LowStockNotifier
	now           func() time.Time
}

// NewTreatmentUseCase construye el caso de uso. notifier puede ser nil.
func NewTreatmentUseCase(
	txRunner TxRunner,
	cropRepo repository.CropRepository,
	treatmentRepo repository.TreatmentRepository,
	supplyRepo repository.SupplyRepository,
	notifier LowStockNotifier,
) *TreatmentUseCase {
	return &TreatmentUseCase{
		txRunner:      txRunner,
		cropRepo:      cropRepo,
		treatmentRepo: treatmentRepo,
		supplyRepo:    supplyRepo,
		notifier:      notifier,
		now:           time.Now,
	}
}

// Create persiste el tratamiento, su detalle y una salida por insumo.
// Un insumo con stock insuficiente aborta todo.
func (uc *TreatmentUseCase) Create(ctx context.Context, userID string, in dto.TreatmentRequest) (*dto.TreatmentResponse, error) {
	crop, err := uc.cropRepo.GetByID(ctx, in.CropID)
	if err != nil {
		return nil, err
	}
	if crop == nil {
		return nil, fmt.Errorf("%w: cultivo", domain.ErrNotFound)
	}
	now := uc.now()
	date := now
	if in.Date != "" {
		if date, err = dto.ParseDate(in.Date); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
	}

	lines := make([]dto.TreatmentSupplyRequest, len(in.Supplies))
	copy(lines, in.Supplies)
	seen := make(map[string]bool, len(lines))
	for _, l := range lines {
		if l.SupplyID == "" || !l.Quantity.GreaterThan(decimal.Zero) {
			return nil, fmt.Errorf("%w: cada insumo requiere insumo_id y cantidad > 0", domain.ErrInvalidInput)
		}
		if seen[l.SupplyID] {
			return nil, fmt.Errorf("%w: insumo repetido %s", domain.ErrInvalidInput, l.SupplyID)
		}
		seen[l.SupplyID] = true
	}
	// Orden estable de bloqueo de filas.
	sort.Slice(lines, func(i, j int) bool { return lines[i].SupplyID < lines[j].SupplyID })

	t := &entity.Treatment{
		ID:          uuid.New().String(),
		CropID:      crop.ID,
		Type:        in.Type,
		Description: in.Description,
		Date:        date,
		UserID:      userID,
		CreatedAt:   now,
	}
	movs := make([]*entity.Movement, 0, len(lines))
	for _, l := range lines {
		m := &entity.Movement{
			ID:          uuid.New().String(),
			SupplyID:    l.SupplyID,
			Type:        entity.MovementSalida,
			Quantity:    l.Quantity,
			Date:        date,
			CropID:      crop.ID,
			TreatmentID: t.ID,
			UserID:      userID,
			Note:        "Tratamiento: " + in.Type,
			CreatedAt:   now,
		}
		movs = append(movs, m)
		t.Supplies = append(t.Supplies, entity.TreatmentSupply{
			TreatmentID: t.ID,
			SupplyID:    l.SupplyID,
			Quantity:    l.Quantity,
			MovementID:  m.ID,
		})
	}

	var touched []*entity.InventoryItem
	err = uc.txRunner.RunTreatment(ctx, func(
		movRepo repository.MovementRepository,
		itemRepo repository.InventoryItemRepository,
		supplyRepo repository.SupplyRepository,
		treatmentRepo repository.TreatmentRepository,
	) error {
		if err := treatmentRepo.Create(ctx, t); err != nil {
			return err
		}
		for _, m := range movs {
			supply, err := supplyRepo.GetByID(ctx, m.SupplyID)
			if err != nil {
				return err
			}
			if supply == nil {
				return fmt.Errorf("%w: insumo %s", domain.ErrNotFound, m.SupplyID)
			}
			plan, err := inventory.PlanCreate(inventory.StateOf(m))
			if err != nil {
				return err
			}
			items, err := applyPlan(ctx, itemRepo, plan, now)
			if err != nil {
				return fmt.Errorf("%s: %w", supply.Name, err)
			}
			// el costo se lee con el ítem ya bloqueado
			if supply, err = lockSupply(ctx, supplyRepo, m.SupplyID); err != nil {
				return err
			}
			m.UnitCost = supply.UnitCost
			touched = append(touched, items...)
			if err := movRepo.Create(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	notifyLowStock(ctx, uc.notifier, uc.supplyRepo, touched)
	return toTreatmentResponse(t), nil
}

// Delete elimina el tratamiento devolviendo al inventario lo consumido.
func (uc *TreatmentUseCase) Delete(ctx context.Context, id string) error {
	now := uc.now()
	return uc.txRunner.RunTreatment(ctx, func(
		movRepo repository.MovementRepository,
		itemRepo repository.InventoryItemRepository,
		_ repository.SupplyRepository,
		treatmentRepo repository.TreatmentRepository,
	) error {
		t, err := treatmentRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("%w: tratamiento", domain.ErrNotFound)
		}
		movs, err := movRepo.ListByTreatment(ctx, id)
		if err != nil {
			return err
		}
		sort.Slice(movs, func(i, j int) bool { return movs[i].SupplyID < movs[j].SupplyID })
		for _, m := range movs {
			if _, err := applyPlan(ctx, itemRepo, inventory.PlanDelete(inventory.StateOf(m)), now); err != nil {
				return err
			}
			if err := movRepo.Delete(ctx, m.ID); err != nil {
				return err
			}
		}
		return treatmentRepo.Delete(ctx, id)
	})
}

// GetByID obtiene un tratamiento con su detalle.
func (uc *TreatmentUseCase) GetByID(ctx context.Context, id string) (*dto.TreatmentResponse, error) {
	t, err := uc.treatmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: tratamiento", domain.ErrNotFound)
	}
	return toTreatmentResponse(t), nil
}

// ListByCrop tratamientos de un cultivo (todos si cropID es vacío).
func (uc *TreatmentUseCase) ListByCrop(ctx context.Context, cropID string) ([]dto.TreatmentResponse, error) {
	list, err := uc.treatmentRepo.ListByCrop(ctx, cropID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TreatmentResponse, 0, len(list))
	for _, t := range list {
		out = append(out, *toTreatmentResponse(t))
	}
	return out, nil
}

func toTreatmentResponse(t *entity.Treatment) *dto.TreatmentResponse {
	supplies := make([]dto.TreatmentSupplyResponse, 0, len(t.Supplies))
	for _, s := range t.Supplies {
		supplies = append(supplies, dto.TreatmentSupplyResponse{
			SupplyID:   s.SupplyID,
			Quantity:   s.Quantity,
			MovementID: s.MovementID,
		})
	}
	return &dto.TreatmentResponse{
		ID:          t.ID,
		CropID:      t.CropID,
		Type:        t.Type,
		Description: t.Description,
		Date:        t.Date,
		UserID:      t.UserID,
		Supplies:    supplies,
		CreatedAt:   t.CreatedAt,
	}
}
