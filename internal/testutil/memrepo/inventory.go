package memrepo

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
)

var (
	_ repository.SupplyRepository        = (*SupplyRepo)(nil)
	_ repository.InventoryItemRepository = (*ItemRepo)(nil)
	_ repository.MovementRepository      = (*MovementRepo)(nil)
	_ repository.TreatmentRepository     = (*TreatmentRepo)(nil)
)

type SupplyRepo struct{ s *Store }

func (r *SupplyRepo) Create(_ context.Context, sp *entity.Supply) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.supplies {
		if strings.EqualFold(other.Name, sp.Name) {
			return domain.ErrDuplicate
		}
	}
	r.s.supplies[sp.ID] = *sp
	return nil
}

func (r *SupplyRepo) GetByID(_ context.Context, id string) (*entity.Supply, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sp, ok := r.s.supplies[id]
	if !ok {
		return nil, nil
	}
	return &sp, nil
}

func (r *SupplyRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Supply, error) {
	return r.GetByID(ctx, id)
}

func (r *SupplyRepo) GetByName(_ context.Context, name string) (*entity.Supply, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sp := range r.s.supplies {
		if strings.EqualFold(sp.Name, name) {
			cp := sp
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *SupplyRepo) List(_ context.Context, limit, offset int) ([]*entity.Supply, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Supply, 0, len(r.s.supplies))
	for _, sp := range r.s.supplies {
		cp := sp
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), len(out), nil
}

func (r *SupplyRepo) Update(_ context.Context, sp *entity.Supply) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.supplies[sp.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.supplies[sp.ID] = *sp
	return nil
}

func (r *SupplyRepo) UpdateCost(_ context.Context, id string, cost decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sp, ok := r.s.supplies[id]
	if !ok {
		return domain.ErrNotFound
	}
	sp.UnitCost = cost
	r.s.supplies[id] = sp
	return nil
}

func (r *SupplyRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.movements {
		if m.SupplyID == id {
			return domain.ErrConflict
		}
	}
	delete(r.s.items, id)
	return deleteOrNotFound(r.s.supplies, id)
}

type ItemRepo struct{ s *Store }

func (r *ItemRepo) enrich(it entity.InventoryItem) *entity.InventoryItem {
	if sp, ok := r.s.supplies[it.SupplyID]; ok {
		it.SupplyName = sp.Name
		it.Unit = sp.Unit
		it.UnitCost = sp.UnitCost
		it.MinStock = sp.MinStock
	}
	return &it
}

func (r *ItemRepo) GetBySupply(_ context.Context, supplyID string) (*entity.InventoryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.items[supplyID]
	if !ok {
		return nil, nil
	}
	return r.enrich(it), nil
}

func (r *ItemRepo) GetBySupplyForUpdate(ctx context.Context, supplyID string) (*entity.InventoryItem, error) {
	return r.GetBySupply(ctx, supplyID)
}

func (r *ItemRepo) LockOrCreate(_ context.Context, supplyID string, now time.Time) (*entity.InventoryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.items[supplyID]
	if !ok {
		if _, exists := r.s.supplies[supplyID]; !exists {
			return nil, domain.ErrConflict
		}
		it = entity.InventoryItem{ID: uuid.New().String(), SupplyID: supplyID, Quantity: decimal.Zero, UpdatedAt: now}
		r.s.items[supplyID] = it
	}
	return r.enrich(it), nil
}

func (r *ItemRepo) Upsert(_ context.Context, it *entity.InventoryItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return err
	}
	if it.ID == "" {
		it.ID = uuid.New().String()
	}
	r.s.items[it.SupplyID] = *it
	return nil
}

func (r *ItemRepo) List(_ context.Context) ([]*entity.InventoryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.InventoryItem, 0, len(r.s.items))
	for _, it := range r.s.items {
		out = append(out, r.enrich(it))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SupplyName < out[j].SupplyName })
	return out, nil
}

func (r *ItemRepo) ListBelowMinimum(ctx context.Context) ([]*entity.InventoryItem, error) {
	all, _ := r.List(ctx)
	out := []*entity.InventoryItem{}
	for _, it := range all {
		if it.Quantity.LessThan(it.MinStock) {
			out = append(out, it)
		}
	}
	return out, nil
}

// Quantity atajo para tests: cantidad almacenada del insumo (cero si no hay ítem).
func (r *ItemRepo) Quantity(supplyID string) decimal.Decimal {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.items[supplyID].Quantity
}

type MovementRepo struct{ s *Store }

func (r *MovementRepo) Create(_ context.Context, m *entity.Movement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return err
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	r.s.movements[m.ID] = *m
	return nil
}

func (r *MovementRepo) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.movements[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *MovementRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Movement, error) {
	return r.GetByID(ctx, id)
}

func (r *MovementRepo) Update(_ context.Context, m *entity.Movement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.movements[m.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.movements[m.ID] = *m
	return nil
}

func (r *MovementRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return deleteOrNotFound(r.s.movements, id)
}

func (r *MovementRepo) List(_ context.Context, f entity.MovementFilter) ([]*entity.Movement, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Movement{}
	for _, m := range r.s.movements {
		if f.SupplyID != "" && m.SupplyID != f.SupplyID ||
			f.Type != "" && m.Type != f.Type ||
			f.CropID != "" && m.CropID != f.CropID ||
			f.From != nil && m.Date.Before(*f.From) ||
			f.To != nil && m.Date.After(*f.To) {
			continue
		}
		cp := m
		if sp, ok := r.s.supplies[m.SupplyID]; ok {
			cp.SupplyName = sp.Name
		}
		out = append(out, &cp)
	}
	sortMovements(out)
	return page(out, f.Limit, f.Offset), len(out), nil
}

func (r *MovementRepo) ListBySupply(ctx context.Context, supplyID string) ([]*entity.Movement, error) {
	out, _, err := r.List(ctx, entity.MovementFilter{SupplyID: supplyID})
	return out, err
}

func (r *MovementRepo) ListByTreatment(_ context.Context, treatmentID string) ([]*entity.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Movement{}
	for _, m := range r.s.movements {
		if m.TreatmentID == treatmentID {
			cp := m
			out = append(out, &cp)
		}
	}
	sortMovements(out)
	return out, nil
}

func (r *MovementRepo) SupplyCostByCrop(_ context.Context, from, to time.Time) ([]repository.CropSupplyCost, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byCrop := map[string]decimal.Decimal{}
	for _, m := range r.s.movements {
		if m.Type != entity.MovementSalida || m.Date.Before(from) || m.Date.After(to) {
			continue
		}
		byCrop[m.CropID] = byCrop[m.CropID].Add(m.TotalCost())
	}
	out := make([]repository.CropSupplyCost, 0, len(byCrop))
	for id, cost := range byCrop {
		out = append(out, repository.CropSupplyCost{CropID: id, CropName: r.s.crops[id].Name, Cost: cost})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CropID < out[j].CropID })
	return out, nil
}

// Count número de movimientos guardados.
func (r *MovementRepo) Count() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.movements)
}

func sortMovements(ms []*entity.Movement) {
	sort.Slice(ms, func(i, j int) bool {
		if !ms[i].Date.Equal(ms[j].Date) {
			return ms[i].Date.After(ms[j].Date)
		}
		return ms[i].ID < ms[j].ID
	})
}

type TreatmentRepo struct{ s *Store }

func (r *TreatmentRepo) Create(_ context.Context, t *entity.Treatment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *t
	cp.Supplies = append([]entity.TreatmentSupply(nil), t.Supplies...)
	r.s.treatments[t.ID] = cp
	return nil
}

func (r *TreatmentRepo) GetByID(_ context.Context, id string) (*entity.Treatment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.treatments[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *TreatmentRepo) ListByCrop(_ context.Context, cropID string) ([]*entity.Treatment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Treatment{}
	for _, t := range r.s.treatments {
		if cropID == "" || t.CropID == cropID {
			cp := t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *TreatmentRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return deleteOrNotFound(r.s.treatments, id)
}
