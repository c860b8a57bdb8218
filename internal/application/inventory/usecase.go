package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/domain/inventory"
	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
)

// LowStockNotifier recibe los ítems que quedaron bajo su stock mínimo tras un commit.
type LowStockNotifier interface {
	NotifyLowStock(ctx context.Context, item *entity.InventoryItem)
}

// MovementUseCase registra, edita y elimina movimientos manteniendo la cantidad
// almacenada de cada ítem igual a la suma neta de sus movimientos.
// Cada operación corre en una transacción con bloqueo de fila (SELECT FOR UPDATE).
type MovementUseCase struct {
	txRunner   TxRunner
	supplyRepo repository.SupplyRepository
	movRepo    repository.MovementRepository
	itemRepo   repository.InventoryItemRepository
	notifier   LowStockNotifier
	now        func() time.Time
}

// NewMovementUseCase construye el caso de uso. notifier puede ser nil.
func NewMovementUseCase(
	txRunner TxRunner,
	supplyRepo repository.SupplyRepository,
	movRepo repository.MovementRepository,
	itemRepo repository.InventoryItemRepository,
	notifier LowStockNotifier,
) *MovementUseCase {
	return &MovementUseCase{
		txRunner:   txRunner,
		supplyRepo: supplyRepo,
		movRepo:    movRepo,
		itemRepo:   itemRepo,
		notifier:   notifier,
		now:        time.Now,
	}
}

// MovementInput datos de un movimiento nuevo o editado.
type MovementInput struct {
	UserID   string
	SupplyID string
	Type     string
	Quantity decimal.Decimal
	UnitCost *decimal.Decimal
	Date     time.Time // cero = ahora
	CropID   string
	Note     string
}

// InputFromRequest adapta el request HTTP a MovementInput.
func InputFromRequest(userID string, in dto.MovementRequest) (MovementInput, error) {
	var date time.Time
	if in.Date != "" {
		d, err := dto.ParseDate(in.Date)
		if err != nil {
			return MovementInput{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		date = d
	}
	return MovementInput{
		UserID:   userID,
		SupplyID: in.SupplyID,
		Type:     in.Type,
		Quantity: in.Quantity,
		UnitCost: in.UnitCost,
		Date:     date,
		CropID:   in.CropID,
		Note:     in.Note,
	}, nil
}

func (in MovementInput) state() inventory.MovementState {
	return inventory.MovementState{SupplyID: in.SupplyID, Type: in.Type, Quantity: in.Quantity}
}

// Create registra un movimiento. Entrada sobre un insumo sin ítem lo crea;
// salida sin ítem o que deje la cantidad negativa -> ErrInsufficientStock.
func (uc *MovementUseCase) Create(ctx context.Context, in MovementInput) (*dto.MovementResponse, error) {
	plan, err := inventory.PlanCreate(in.state())
	if err != nil {
		return nil, fmt.Errorf("%w: tipo entrada|salida, cantidad > 0 e insumo obligatorios", err)
	}
	if in.UnitCost != nil && in.UnitCost.LessThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: costo unitario negativo", domain.ErrInvalidInput)
	}
	if err := uc.requireSupply(ctx, in.SupplyID); err != nil {
		return nil, err
	}

	now := uc.now()
	mov := &entity.Movement{
		ID:        uuid.New().String(),
		SupplyID:  in.SupplyID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		Date:      dateOrNow(in.Date, now),
		CropID:    in.CropID,
		UserID:    in.UserID,
		Note:      in.Note,
		CreatedAt: now,
	}
	var touched []*entity.InventoryItem

	err = uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		itemRepo repository.InventoryItemRepository,
		supplyRepo repository.SupplyRepository,
	) error {
		// Orden de bloqueo: ítem y luego insumo. El costo promedio se calcula
		// contra la cantidad previa al movimiento.
		before, err := itemRepo.LockOrCreate(ctx, in.SupplyID, now)
		if err != nil {
			return err
		}
		supply, err := lockSupply(ctx, supplyRepo, in.SupplyID)
		if err != nil {
			return err
		}
		mov.UnitCost, err = costMovement(ctx, supplyRepo, supply, before, in)
		if err != nil {
			return err
		}
		touched, err = applyPlan(ctx, itemRepo, plan, now)
		if err != nil {
			return err
		}
		return movRepo.Create(ctx, mov)
	})
	if err != nil {
		return nil, err
	}
	notifyLowStock(ctx, uc.notifier, uc.supplyRepo, touched)
	return toMovementResponse(mov), nil
}

// Edit reemplaza tipo/cantidad/insumo de un movimiento ajustando solo la diferencia
// (mismo insumo) o revirtiendo y aplicando (insumo distinto). Cualquier cantidad
// negativa resultante rechaza la edición completa.
func (uc *MovementUseCase) Edit(ctx context.Context, id string, in MovementInput) (*dto.MovementResponse, error) {
	if err := in.state().Validate(); err != nil {
		return nil, fmt.Errorf("%w: tipo entrada|salida, cantidad > 0 e insumo obligatorios", err)
	}
	if in.UnitCost != nil && in.UnitCost.LessThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: costo unitario negativo", domain.ErrInvalidInput)
	}
	if err := uc.requireSupply(ctx, in.SupplyID); err != nil {
		return nil, err
	}

	now := uc.now()
	var updated *entity.Movement
	var touched []*entity.InventoryItem

	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		itemRepo repository.InventoryItemRepository,
		supplyRepo repository.SupplyRepository,
	) error {
		old, err := movRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if old == nil {
			return fmt.Errorf("%w: movimiento", domain.ErrNotFound)
		}
		if old.TreatmentID != "" {
			return fmt.Errorf("%w: el movimiento pertenece a un tratamiento", domain.ErrConflict)
		}
		plan, err := inventory.PlanEdit(inventory.StateOf(old), in.state())
		if err != nil {
			return err
		}
		touched, err = applyPlan(ctx, itemRepo, plan, now)
		if err != nil {
			return err
		}

		m := *old
		m.SupplyID = in.SupplyID
		m.Type = in.Type
		m.Quantity = in.Quantity
		m.CropID = in.CropID
		m.Note = in.Note
		if !in.Date.IsZero() {
			m.Date = in.Date
		}
		switch {
		case in.Type == entity.MovementEntrada && in.UnitCost != nil:
			m.UnitCost = *in.UnitCost
		case old.Type != in.Type || old.SupplyID != in.SupplyID:
			supply, err := lockSupply(ctx, supplyRepo, in.SupplyID)
			if err != nil {
				return err
			}
			m.UnitCost = supply.UnitCost
		}
		if err := movRepo.Update(ctx, &m); err != nil {
			return err
		}
		updated = &m
		return nil
	})
	if err != nil {
		return nil, err
	}
	notifyLowStock(ctx, uc.notifier, uc.supplyRepo, touched)
	return toMovementResponse(updated), nil
}

// Delete revierte el efecto del movimiento sobre su ítem y lo elimina.
func (uc *MovementUseCase) Delete(ctx context.Context, id string) error {
	now := uc.now()
	var touched []*entity.InventoryItem
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		itemRepo repository.InventoryItemRepository,
		_ repository.SupplyRepository,
	) error {
		old, err := movRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if old == nil {
			return fmt.Errorf("%w: movimiento", domain.ErrNotFound)
		}
		if old.TreatmentID != "" {
			return fmt.Errorf("%w: el movimiento pertenece a un tratamiento", domain.ErrConflict)
		}
		touched, err = applyPlan(ctx, itemRepo, inventory.PlanDelete(inventory.StateOf(old)), now)
		if err != nil {
			return err
		}
		return movRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	notifyLowStock(ctx, uc.notifier, uc.supplyRepo, touched)
	return nil
}

// GetByID obtiene un movimiento.
func (uc *MovementUseCase) GetByID(ctx context.Context, id string) (*dto.MovementResponse, error) {
	m, err := uc.movRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: movimiento", domain.ErrNotFound)
	}
	return toMovementResponse(m), nil
}

// List lista movimientos con filtros y paginación.
func (uc *MovementUseCase) List(ctx context.Context, q dto.MovementQuery) (*dto.ListResponse[dto.MovementResponse], error) {
	q.DefaultPage()
	from, err := dto.ParseOptionalDate(q.From)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	to, err := dto.ParseOptionalDate(q.To)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if to != nil && len(q.To) == len("2006-01-02") {
		end := to.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	if q.Type != "" && q.Type != entity.MovementEntrada && q.Type != entity.MovementSalida {
		return nil, fmt.Errorf("%w: tipo", domain.ErrInvalidInput)
	}
	list, total, err := uc.movRepo.List(ctx, entity.MovementFilter{
		SupplyID: q.SupplyID,
		Type:     q.Type,
		CropID:   q.CropID,
		From:     from,
		To:       to,
		Limit:    q.Limit,
		Offset:   q.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *toMovementResponse(m))
	}
	return &dto.ListResponse[dto.MovementResponse]{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}, nil
}

// Reconcile compara la cantidad almacenada con la derivada del historial.
// Con repair=true escribe la derivada dentro de una transacción.
func (uc *MovementUseCase) Reconcile(ctx context.Context, supplyID string, repair bool) (*dto.ReconciliationResponse, error) {
	if err := uc.requireSupply(ctx, supplyID); err != nil {
		return nil, err
	}
	if !repair {
		item, err := uc.itemRepo.GetBySupply(ctx, supplyID)
		if err != nil {
			return nil, err
		}
		movs, err := uc.movRepo.ListBySupply(ctx, supplyID)
		if err != nil {
			return nil, err
		}
		return reconciliation(supplyID, item, movs), nil
	}

	var out *dto.ReconciliationResponse
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		itemRepo repository.InventoryItemRepository,
		_ repository.SupplyRepository,
	) error {
		item, err := itemRepo.LockOrCreate(ctx, supplyID, uc.now())
		if err != nil {
			return err
		}
		movs, err := movRepo.ListBySupply(ctx, supplyID)
		if err != nil {
			return err
		}
		out = reconciliation(supplyID, item, movs)
		if out.Consistent {
			return nil
		}
		if out.Derived.LessThan(decimal.Zero) {
			return fmt.Errorf("%w: el historial de movimientos da una cantidad negativa (%s)", domain.ErrConflict, out.Derived)
		}
		item.Quantity = out.Derived
		item.UpdatedAt = uc.now()
		if err := itemRepo.Upsert(ctx, item); err != nil {
			return err
		}
		out.Repaired = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func reconciliation(supplyID string, item *entity.InventoryItem, movs []*entity.Movement) *dto.ReconciliationResponse {
	stored := decimal.Zero
	if item != nil {
		stored = item.Quantity
	}
	derived := inventory.Derive(movs)
	return &dto.ReconciliationResponse{
		SupplyID:      supplyID,
		Stored:        stored,
		Derived:       derived,
		Drift:         stored.Sub(derived),
		Consistent:    stored.Equal(derived),
		MovementCount: len(movs),
	}
}

func (uc *MovementUseCase) requireSupply(ctx context.Context, supplyID string) error {
	supply, err := uc.supplyRepo.GetByID(ctx, supplyID)
	if err != nil {
		return err
	}
	if supply == nil {
		return fmt.Errorf("%w: insumo", domain.ErrNotFound)
	}
	return nil
}

// notifyLowStock avisa de los ítems que quedaron bajo el mínimo de su insumo.
func notifyLowStock(ctx context.Context, notifier LowStockNotifier, supplyRepo repository.SupplyRepository, items []*entity.InventoryItem) {
	if notifier == nil {
		return
	}
	for _, it := range items {
		supply, err := supplyRepo.GetByID(ctx, it.SupplyID)
		if err != nil || supply == nil {
			continue
		}
		if supply.MinStock.GreaterThan(decimal.Zero) && it.Quantity.LessThan(supply.MinStock) {
			it.SupplyName = supply.Name
			it.Unit = supply.Unit
			it.MinStock = supply.MinStock
			notifier.NotifyLowStock(ctx, it)
		}
	}
}

// applyPlan bloquea y ajusta cada ítem en el orden del plan (ordenado por insumo).
// Un ítem ausente en una reversión es ErrNotFound; en los demás casos se crea en cero
// antes de bloquearlo.
func applyPlan(ctx context.Context, itemRepo repository.InventoryItemRepository, plan []inventory.Adjustment, now time.Time) ([]*entity.InventoryItem, error) {
	touched := make([]*entity.InventoryItem, 0, len(plan))
	for _, adj := range plan {
		var item *entity.InventoryItem
		var err error
		if adj.MustExist {
			item, err = itemRepo.GetBySupplyForUpdate(ctx, adj.SupplyID)
		} else {
			item, err = itemRepo.LockOrCreate(ctx, adj.SupplyID, now)
		}
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, fmt.Errorf("%w: falta el ítem de inventario del insumo %s para revertir", domain.ErrNotFound, adj.SupplyID)
		}
		next, err := inventory.Apply(item.Quantity, adj)
		if err != nil {
			return nil, fmt.Errorf("%w: disponible %s, ajuste %s", err, item.Quantity, adj.Delta)
		}
		item.Quantity = next
		item.UpdatedAt = now
		if err := itemRepo.Upsert(ctx, item); err != nil {
			return nil, err
		}
		touched = append(touched, item)
	}
	return touched, nil
}

func lockSupply(ctx context.Context, supplyRepo repository.SupplyRepository, id string) (*entity.Supply, error) {
	supply, err := supplyRepo.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if supply == nil {
		return nil, fmt.Errorf("%w: insumo", domain.ErrNotFound)
	}
	return supply, nil
}

// costMovement fija el costo unitario del movimiento. Una entrada con costo
// actualiza el promedio ponderado del insumo; las salidas usan el promedio vigente.
func costMovement(
	ctx context.Context,
	supplyRepo repository.SupplyRepository,
	supply *entity.Supply,
	before *entity.InventoryItem,
	in MovementInput,
) (decimal.Decimal, error) {
	if in.Type != entity.MovementEntrada || in.UnitCost == nil {
		return supply.UnitCost, nil
	}
	current := decimal.Zero
	if before != nil {
		current = before.Quantity
	}
	newCost := inventory.WeightedAverageCost(current, supply.UnitCost, in.Quantity, *in.UnitCost)
	if !newCost.Equal(supply.UnitCost) {
		if err := supplyRepo.UpdateCost(ctx, supply.ID, newCost); err != nil {
			return decimal.Zero, err
		}
	}
	return *in.UnitCost, nil
}

func dateOrNow(d, now time.Time) time.Time {
	if d.IsZero() {
		return now
	}
	return d
}

func toMovementResponse(m *entity.Movement) *dto.MovementResponse {
	return &dto.MovementResponse{
		ID:          m.ID,
		SupplyID:    m.SupplyID,
		SupplyName:  m.SupplyName,
		Type:        m.Type,
		Quantity:    m.Quantity,
		UnitCost:    m.UnitCost,
		TotalCost:   m.TotalCost(),
		Date:        m.Date,
		CropID:      m.CropID,
		TreatmentID: m.TreatmentID,
		UserID:      m.UserID,
		Note:        m.Note,
		CreatedAt:   m.CreatedAt,
	}
}
