// Package analytics contiene los casos de uso de resumen financiero de la finca.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
)

// FinanceSummaryUseCase genera el resumen de ingresos, egresos y costo de insumos.
//
// Fuente de datos: FinanceRepository y MovementRepository (consultas read-only).
type FinanceSummaryUseCase struct {
	financeRepo  repository.FinanceRepository
	movementRepo repository.MovementRepository
	now          func() time.Time
}

// NewFinanceSummaryUseCase construye el caso de uso.
func NewFinanceSummaryUseCase(financeRepo repository.FinanceRepository, movementRepo repository.MovementRepository) *FinanceSummaryUseCase {
	return &FinanceSummaryUseCase{financeRepo: financeRepo, movementRepo: movementRepo, now: time.Now}
}

// GetSummary construye el FinanceSummaryDTO del período [desde, hasta].
// Sin fechas usa el mes en curso.
//
// Tres llamadas en paralelo:
//  1. Totals            → ingresos y egresos
//  2. TotalsByCrop      → desglose de ingresos/egresos por cultivo
//  3. SupplyCostByCrop  → salidas × costo unitario por cultivo
func (uc *FinanceSummaryUseCase) GetSummary(ctx context.Context, fromStr, toStr string) (*dto.FinanceSummaryDTO, error) {
	from, to, err := uc.period(fromStr, toStr)
	if err != nil {
		return nil, err
	}

	type totalsResult struct {
		income  decimal.Decimal
		expense decimal.Decimal
		err     error
	}
	type byCropResult struct {
		rows []repository.CropFinance
		err  error
	}
	type costResult struct {
		rows []repository.CropSupplyCost
		err  error
	}

	totalsCh := make(chan totalsResult, 1)
	byCropCh := make(chan byCropResult, 1)
	costCh := make(chan costResult, 1)

	go func() {
		inc, exp, err := uc.financeRepo.Totals(ctx, from, to)
		totalsCh <- totalsResult{inc, exp, err}
	}()
	go func() {
		rows, err := uc.financeRepo.TotalsByCrop(ctx, from, to)
		byCropCh <- byCropResult{rows, err}
	}()
	go func() {
		rows, err := uc.movementRepo.SupplyCostByCrop(ctx, from, to)
		costCh <- costResult{rows, err}
	}()

	totals := <-totalsCh
	byCrop := <-byCropCh
	costs := <-costCh

	if totals.err != nil {
		return nil, fmt.Errorf("resumen: totales: %w", totals.err)
	}
	if byCrop.err != nil {
		return nil, fmt.Errorf("resumen: totales por cultivo: %w", byCrop.err)
	}
	if costs.err != nil {
		return nil, fmt.Errorf("resumen: costo de insumos: %w", costs.err)
	}

	supplyCost := decimal.Zero
	for _, c := range costs.rows {
		supplyCost = supplyCost.Add(c.Cost)
	}

	return &dto.FinanceSummaryDTO{
		From:        from,
		To:          to,
		Income:      totals.income.Round(2),
		Expense:     totals.expense.Round(2),
		SupplyCost:  supplyCost.Round(2),
		Balance:     totals.income.Sub(totals.expense).Sub(supplyCost).Round(2),
		ByCrop:      mergeByCrop(byCrop.rows, costs.rows),
		PeriodLabel: periodLabel(from, to),
	}, nil
}

func (uc *FinanceSummaryUseCase) period(fromStr, toStr string) (time.Time, time.Time, error) {
	now := uc.now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).Add(24*time.Hour - time.Nanosecond)
	if strings.TrimSpace(fromStr) != "" {
		f, err := dto.ParseDate(fromStr)
		if err != nil {
			return from, to, fmt.Errorf("%w: desde: %v", domain.ErrInvalidInput, err)
		}
		from = f
	}
	if strings.TrimSpace(toStr) != "" {
		t, err := dto.ParseDate(toStr)
		if err != nil {
			return from, to, fmt.Errorf("%w: hasta: %v", domain.ErrInvalidInput, err)
		}
		if len(strings.TrimSpace(toStr)) == len("2006-01-02") {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		to = t
	}
	if to.Before(from) {
		return from, to, fmt.Errorf("%w: hasta anterior a desde", domain.ErrInvalidInput)
	}
	return from, to, nil
}

// mergeByCrop une los totales financieros y el costo de insumos por cultivo.
// Las salidas sin cultivo no aparecen en el desglose pero sí en el total.
func mergeByCrop(fin []repository.CropFinance, costs []repository.CropSupplyCost) []dto.CropFinanceDTO {
	idx := map[string]*dto.CropFinanceDTO{}
	get := func(id, name string) *dto.CropFinanceDTO {
		row, ok := idx[id]
		if !ok {
			row = &dto.CropFinanceDTO{CropID: id, CropName: name, Income: decimal.Zero, Expense: decimal.Zero, SupplyCost: decimal.Zero}
			idx[id] = row
		}
		if row.CropName == "" {
			row.CropName = name
		}
		return row
	}
	for _, f := range fin {
		if f.CropID == "" {
			continue
		}
		row := get(f.CropID, f.CropName)
		row.Income = row.Income.Add(f.Income)
		row.Expense = row.Expense.Add(f.Expense)
	}
	for _, c := range costs {
		if c.CropID == "" {
			continue
		}
		row := get(c.CropID, c.CropName)
		row.SupplyCost = row.SupplyCost.Add(c.Cost)
	}
	out := make([]dto.CropFinanceDTO, 0, len(idx))
	for _, row := range idx {
		row.Balance = row.Income.Sub(row.Expense).Sub(row.SupplyCost).Round(2)
		row.Income = row.Income.Round(2)
		row.Expense = row.Expense.Round(2)
		row.SupplyCost = row.SupplyCost.Round(2)
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CropName < out[j].CropName })
	return out
}

// periodLabel etiqueta legible, ej: "Febrero 2026" o "Enero 2026 - Marzo 2026".
func periodLabel(from, to time.Time) string {
	a, b := monthLabel(from), monthLabel(to)
	if a == b {
		return a
	}
	return a + " - " + b
}

func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
