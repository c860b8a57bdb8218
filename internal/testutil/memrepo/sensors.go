package memrepo

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
)

var (
	_ repository.SensorRepository  = (*SensorRepo)(nil)
	_ repository.AlertRepository   = (*AlertRepo)(nil)
	_ repository.FinanceRepository = (*FinanceRepo)(nil)
)

type SensorRepo struct{ s *Store }

func (r *SensorRepo) Create(_ context.Context, sn *entity.Sensor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sensors[sn.ID] = *sn
	return nil
}

func (r *SensorRepo) GetByID(_ context.Context, id string) (*entity.Sensor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sn, ok := r.s.sensors[id]
	if !ok {
		return nil, nil
	}
	return &sn, nil
}

func (r *SensorRepo) list(onlyActive bool) []*entity.Sensor {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Sensor{}
	for _, sn := range r.s.sensors {
		if onlyActive && !sn.Active {
			continue
		}
		cp := sn
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *SensorRepo) List(_ context.Context) ([]*entity.Sensor, error) { return r.list(false), nil }

func (r *SensorRepo) ListActive(_ context.Context) ([]*entity.Sensor, error) { return r.list(true), nil }

func (r *SensorRepo) Update(_ context.Context, sn *entity.Sensor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sensors[sn.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.sensors[sn.ID] = *sn
	return nil
}

func (r *SensorRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return deleteOrNotFound(r.s.sensors, id)
}

type AlertRepo struct{ s *Store }

func (r *AlertRepo) Create(_ context.Context, a *entity.Alert) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.alerts[a.ID] = *a
	return nil
}

func (r *AlertRepo) List(_ context.Context, onlyUnread bool, limit, offset int) ([]*entity.Alert, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Alert{}
	for _, a := range r.s.alerts {
		if onlyUnread && a.Read {
			continue
		}
		cp := a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), len(out), nil
}

func (r *AlertRepo) MarkRead(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.alerts[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.Read = true
	r.s.alerts[id] = a
	return nil
}

func (r *AlertRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return deleteOrNotFound(r.s.alerts, id)
}

type FinanceRepo struct{ s *Store }

func (r *FinanceRepo) Create(_ context.Context, f *entity.FinanceRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.finance[f.ID] = *f
	return nil
}

func (r *FinanceRepo) GetByID(_ context.Context, id string) (*entity.FinanceRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.finance[id]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (r *FinanceRepo) List(_ context.Context, flt repository.FinanceFilter) ([]*entity.FinanceRecord, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.FinanceRecord{}
	for _, f := range r.s.finance {
		if flt.Type != "" && f.Type != flt.Type ||
			flt.CropID != "" && f.CropID != flt.CropID ||
			flt.From != nil && f.Date.Before(*flt.From) ||
			flt.To != nil && f.Date.After(*flt.To) {
			continue
		}
		cp := f
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return page(out, flt.Limit, flt.Offset), len(out), nil
}

func (r *FinanceRepo) Update(_ context.Context, f *entity.FinanceRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.finance[f.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.finance[f.ID] = *f
	return nil
}

func (r *FinanceRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return deleteOrNotFound(r.s.finance, id)
}

func (r *FinanceRepo) Totals(_ context.Context, from, to time.Time) (decimal.Decimal, decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	income, expense := decimal.Zero, decimal.Zero
	for _, f := range r.s.finance {
		if f.Date.Before(from) || f.Date.After(to) {
			continue
		}
		if f.Type == entity.FinanceIncome {
			income = income.Add(f.Amount)
		} else {
			expense = expense.Add(f.Amount)
		}
	}
	return income, expense, nil
}

func (r *FinanceRepo) TotalsByCrop(_ context.Context, from, to time.Time) ([]repository.CropFinance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byCrop := map[string]*repository.CropFinance{}
	for _, f := range r.s.finance {
		if f.CropID == "" || f.Date.Before(from) || f.Date.After(to) {
			continue
		}
		cf, ok := byCrop[f.CropID]
		if !ok {
			cf = &repository.CropFinance{CropID: f.CropID, CropName: r.s.crops[f.CropID].Name}
			byCrop[f.CropID] = cf
		}
		if f.Type == entity.FinanceIncome {
			cf.Income = cf.Income.Add(f.Amount)
		} else {
			cf.Expense = cf.Expense.Add(f.Amount)
		}
	}
	out := make([]repository.CropFinance, 0, len(byCrop))
	for _, cf := range byCrop {
		out = append(out, *cf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CropID < out[j].CropID })
	return out, nil
}
