package memrepo

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
)

var (
	_ repository.LotRepository    = (*LotRepo)(nil)
	_ repository.SublotRepository = (*SublotRepo)(nil)
	_ repository.CropRepository   = (*CropRepo)(nil)
)

type LotRepo struct{ s *Store }

func (r *LotRepo) Create(_ context.Context, l *entity.Lot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return err
	}
	r.s.lots[l.ID] = *l
	return nil
}

func (r *LotRepo) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.lots[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *LotRepo) List(_ context.Context, limit, offset int) ([]*entity.Lot, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Lot, 0, len(r.s.lots))
	for _, l := range r.s.lots {
		cp := l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), len(out), nil
}

func (r *LotRepo) Update(_ context.Context, l *entity.Lot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.lots[l.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.lots[l.ID] = *l
	return nil
}

func (r *LotRepo) UpdateCoordinates(_ context.Context, id string, coords []entity.Point, area decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.lots[id]
	if !ok {
		return domain.ErrNotFound
	}
	l.Coordinates = coords
	l.AreaM2 = area
	r.s.lots[id] = l
	return nil
}

func (r *LotRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sl := range r.s.sublots {
		if sl.LotID == id {
			return domain.ErrConflict
		}
	}
	return deleteOrNotFound(r.s.lots, id)
}

type SublotRepo struct{ s *Store }

func (r *SublotRepo) Create(_ context.Context, sl *entity.Sublot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.lots[sl.LotID]; !ok {
		return domain.ErrConflict
	}
	r.s.sublots[sl.ID] = *sl
	return nil
}

func (r *SublotRepo) GetByID(_ context.Context, id string) (*entity.Sublot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sl, ok := r.s.sublots[id]
	if !ok {
		return nil, nil
	}
	return &sl, nil
}

func (r *SublotRepo) ListByLot(_ context.Context, lotID string) ([]*entity.Sublot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Sublot{}
	for _, sl := range r.s.sublots {
		if lotID == "" || sl.LotID == lotID {
			cp := sl
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *SublotRepo) Update(_ context.Context, sl *entity.Sublot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sublots[sl.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.sublots[sl.ID] = *sl
	return nil
}

func (r *SublotRepo) UpdateCoordinates(_ context.Context, id string, coords []entity.Point, area decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sl, ok := r.s.sublots[id]
	if !ok {
		return domain.ErrNotFound
	}
	sl.Coordinates = coords
	sl.AreaM2 = area
	r.s.sublots[id] = sl
	return nil
}

func (r *SublotRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return deleteOrNotFound(r.s.sublots, id)
}

type CropRepo struct{ s *Store }

func (r *CropRepo) Create(_ context.Context, c *entity.Crop) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.crops[c.ID] = *c
	return nil
}

func (r *CropRepo) GetByID(_ context.Context, id string) (*entity.Crop, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.crops[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *CropRepo) List(_ context.Context, f repository.CropFilter) ([]*entity.Crop, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Crop{}
	for _, c := range r.s.crops {
		if f.SublotID != "" && c.SublotID != f.SublotID {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		cp := c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SowingDate.After(out[j].SowingDate) })
	return page(out, f.Limit, f.Offset), len(out), nil
}

func (r *CropRepo) Update(_ context.Context, c *entity.Crop) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.crops[c.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.crops[c.ID] = *c
	return nil
}

func (r *CropRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return deleteOrNotFound(r.s.crops, id)
}
