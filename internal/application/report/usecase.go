// Package report arma los reportes tabulares (inventario, movimientos, IoT, finanzas)
// y los entrega en el formato pedido.
package report

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/agrotrack-api/internal/application/analytics"
	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/application/ports"
	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/domain/repository"
)

// Formatos soportados.
const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

// ReadingSource ventana actual de lecturas por sensor.
type ReadingSource interface {
	Readings(sensorID string) []entity.Reading
}

// File reporte renderizado listo para descargar.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// UseCase genera reportes descargables.
type UseCase struct {
	itemRepo   repository.InventoryItemRepository
	movRepo    repository.MovementRepository
	sensorRepo repository.SensorRepository
	readings   ReadingSource
	summary    *analytics.FinanceSummaryUseCase
	renderers  map[string]ports.ReportRenderer
	now        func() time.Time
}

// NewUseCase construye el caso de uso. renderers indexa por formato ("pdf", "xlsx").
func NewUseCase(
	itemRepo repository.InventoryItemRepository,
	movRepo repository.MovementRepository,
	sensorRepo repository.SensorRepository,
	readings ReadingSource,
	summary *analytics.FinanceSummaryUseCase,
	renderers map[string]ports.ReportRenderer,
) *UseCase {
	return &UseCase{
		itemRepo:   itemRepo,
		movRepo:    movRepo,
		sensorRepo: sensorRepo,
		readings:   readings,
		summary:    summary,
		renderers:  renderers,
		now:        time.Now,
	}
}

// Inventory existencias actuales valorizadas.
func (uc *UseCase) Inventory(ctx context.Context, q dto.ReportQuery) (*File, error) {
	renderer, err := uc.renderer(q.Format)
	if err != nil {
		return nil, err
	}
	items, err := uc.itemRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	rep := uc.newReport("Inventario de insumos", "Existencias actuales",
		"Insumo", "Unidad", "Cantidad", "Stock mínimo", "Costo unitario", "Valor total", "Estado")
	total := zero()
	below := 0
	for _, it := range items {
		value := it.Quantity.Mul(it.UnitCost)
		total = total.Add(value)
		state := "OK"
		if it.MinStock.IsPositive() && it.Quantity.LessThan(it.MinStock) {
			state = "Bajo mínimo"
			below++
		}
		rep.Rows = append(rep.Rows, []string{
			it.SupplyName, it.Unit, it.Quantity.String(), it.MinStock.String(),
			money(it.UnitCost), money(value), state,
		})
	}
	rep.Summary = []dto.ReportTotal{
		{Label: "Insumos", Value: strconv.Itoa(len(items))},
		{Label: "Bajo mínimo", Value: strconv.Itoa(below)},
		{Label: "Valor del inventario", Value: money(total)},
	}
	return uc.render(ctx, renderer, rep, "inventario")
}

// Movements historial de movimientos del período.
func (uc *UseCase) Movements(ctx context.Context, q dto.ReportQuery) (*File, error) {
	renderer, err := uc.renderer(q.Format)
	if err != nil {
		return nil, err
	}
	from, to, err := dateRange(q.From, q.To)
	if err != nil {
		return nil, err
	}
	movs, _, err := uc.movRepo.List(ctx, entity.MovementFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}
	rep := uc.newReport("Movimientos de inventario", rangeLabel(from, to),
		"Fecha", "Insumo", "Tipo", "Cantidad", "Costo unitario", "Costo total", "Observación")
	in, out := zero(), zero()
	for _, m := range movs {
		if m.Type == entity.MovementEntrada {
			in = in.Add(m.TotalCost())
		} else {
			out = out.Add(m.TotalCost())
		}
		rep.Rows = append(rep.Rows, []string{
			m.Date.Format("2006-01-02"), m.SupplyName, m.Type, m.Quantity.String(),
			money(m.UnitCost), money(m.TotalCost()), m.Note,
		})
	}
	rep.Summary = []dto.ReportTotal{
		{Label: "Movimientos", Value: strconv.Itoa(len(movs))},
		{Label: "Valor entradas", Value: money(in)},
		{Label: "Valor salidas", Value: money(out)},
	}
	return uc.render(ctx, renderer, rep, "movimientos")
}

// IoT ventana actual de todos los sensores.
func (uc *UseCase) IoT(ctx context.Context, q dto.ReportQuery) (*File, error) {
	renderer, err := uc.renderer(q.Format)
	if err != nil {
		return nil, err
	}
	sensors, err := uc.sensorRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	rep := uc.newReport("Lecturas de sensores", "Ventana actual en memoria",
		"Sensor", "Tipo", "Fecha y hora", "Valor", "Unidad")
	count := 0
	for _, s := range sensors {
		if uc.readings == nil {
			break
		}
		for _, r := range uc.readings.Readings(s.ID) {
			rep.Rows = append(rep.Rows, []string{
				s.Name, s.Type, r.Timestamp.Format("2006-01-02 15:04:05"),
				strconv.FormatFloat(r.Value, 'f', 2, 64), s.Unit,
			})
			count++
		}
	}
	rep.Summary = []dto.ReportTotal{
		{Label: "Sensores", Value: strconv.Itoa(len(sensors))},
		{Label: "Lecturas", Value: strconv.Itoa(count)},
	}
	return uc.render(ctx, renderer, rep, "iot")
}

// Finance resumen financiero del período con desglose por cultivo.
func (uc *UseCase) Finance(ctx context.Context, q dto.ReportQuery) (*File, error) {
	renderer, err := uc.renderer(q.Format)
	if err != nil {
		return nil, err
	}
	sum, err := uc.summary.GetSummary(ctx, q.From, q.To)
	if err != nil {
		return nil, err
	}
	rep := uc.newReport("Resumen financiero", sum.PeriodLabel,
		"Cultivo", "Ingresos", "Egresos", "Costo insumos", "Balance")
	for _, c := range sum.ByCrop {
		rep.Rows = append(rep.Rows, []string{
			c.CropName, money(c.Income), money(c.Expense), money(c.SupplyCost), money(c.Balance),
		})
	}
	rep.Summary = []dto.ReportTotal{
		{Label: "Ingresos", Value: money(sum.Income)},
		{Label: "Egresos", Value: money(sum.Expense)},
		{Label: "Costo de insumos", Value: money(sum.SupplyCost)},
		{Label: "Balance", Value: money(sum.Balance)},
	}
	return uc.render(ctx, renderer, rep, "finanzas")
}

func (uc *UseCase) renderer(format string) (ports.ReportRenderer, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatPDF
	}
	r, ok := uc.renderers[format]
	if !ok {
		return nil, fmt.Errorf("%w: formato %q no soportado (pdf o xlsx)", domain.ErrInvalidInput, format)
	}
	return r, nil
}

func (uc *UseCase) newReport(title, subtitle string, columns ...string) *dto.Report {
	return &dto.Report{
		Title:       title,
		Subtitle:    subtitle,
		GeneratedAt: uc.now(),
		Columns:     columns,
		Rows:        [][]string{},
	}
}

func (uc *UseCase) render(ctx context.Context, r ports.ReportRenderer, rep *dto.Report, base string) (*File, error) {
	data, err := r.Render(ctx, rep)
	if err != nil {
		return nil, fmt.Errorf("reporte %s: %w", base, err)
	}
	return &File{
		Name:        fmt.Sprintf("%s_%s.%s", base, rep.GeneratedAt.Format("20060102_150405"), r.Extension()),
		ContentType: r.ContentType(),
		Data:        data,
	}, nil
}
