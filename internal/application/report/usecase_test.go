package report_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agrotrack-api/internal/application/analytics"
	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/application/ports"
	"github.com/jhoicas/agrotrack-api/internal/application/report"
	"github.com/jhoicas/agrotrack-api/internal/domain"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/testutil/memrepo"
)

// captureRenderer guarda el último reporte recibido.
type captureRenderer struct {
	last *dto.Report
	ext  string
	err  error
}

func (r *captureRenderer) Render(_ context.Context, rep *dto.Report) ([]byte, error) {
	r.last = rep
	if r.err != nil {
		return nil, r.err
	}
	return []byte(rep.Title), nil
}
func (r *captureRenderer) ContentType() string { return "application/x-" + r.ext }
func (r *captureRenderer) Extension() string   { return r.ext }

type staticReadings map[string][]entity.Reading

func (s staticReadings) Readings(id string) []entity.Reading { return s[id] }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func setup(t *testing.T) (*report.UseCase, *captureRenderer, *captureRenderer) {
	t.Helper()
	ctx := context.Background()
	store := memrepo.New()
	require.NoError(t, store.Supplies().Create(ctx, &entity.Supply{ID: "s1", Name: "Urea", Unit: "kg", UnitCost: dec("2000"), MinStock: dec("10")}))
	require.NoError(t, store.Items().Upsert(ctx, &entity.InventoryItem{ID: "i1", SupplyID: "s1", Quantity: dec("4")}))
	require.NoError(t, store.Movements().Create(ctx, &entity.Movement{
		ID: "m1", SupplyID: "s1", Type: entity.MovementEntrada, Quantity: dec("4"), UnitCost: dec("2000"),
		Date: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, store.Sensors().Create(ctx, &entity.Sensor{ID: "t1", Name: "Temperatura", Unit: "°C", Active: true}))

	readings := staticReadings{"t1": {{SensorID: "t1", Value: 24.5, Timestamp: time.Now()}}}
	pdf := &captureRenderer{ext: "pdf"}
	xlsx := &captureRenderer{ext: "xlsx"}
	uc := report.NewUseCase(
		store.Items(), store.Movements(), store.Sensors(), readings,
		analytics.NewFinanceSummaryUseCase(store.Finance(), store.Movements()),
		map[string]ports.ReportRenderer{report.FormatPDF: pdf, report.FormatXLSX: xlsx},
	)
	return uc, pdf, xlsx
}

func TestInventory_PDFPorDefecto(t *testing.T) {
	uc, pdf, _ := setup(t)

	f, err := uc.Inventory(context.Background(), dto.ReportQuery{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(f.Name, "inventario_"))
	assert.True(t, strings.HasSuffix(f.Name, ".pdf"))
	assert.Equal(t, "application/x-pdf", f.ContentType)

	require.Len(t, pdf.last.Rows, 1)
	row := pdf.last.Rows[0]
	assert.Equal(t, "Urea", row[0])
	assert.Equal(t, "$ 8.000,00", row[5])
	assert.Equal(t, "Bajo mínimo", row[6])
}

func TestMovements_FiltraPorRango(t *testing.T) {
	uc, _, xlsx := setup(t)

	_, err := uc.Movements(context.Background(), dto.ReportQuery{Format: "XLSX", From: "2026-03-10", To: "2026-03-10"})
	require.NoError(t, err)
	assert.Len(t, xlsx.last.Rows, 1, "hasta de solo fecha incluye el día completo")

	_, err = uc.Movements(context.Background(), dto.ReportQuery{Format: "xlsx", From: "2026-04-01"})
	require.NoError(t, err)
	assert.Empty(t, xlsx.last.Rows)
}

func TestIoT_IncluyeVentana(t *testing.T) {
	uc, pdf, _ := setup(t)
	_, err := uc.IoT(context.Background(), dto.ReportQuery{Format: "pdf"})
	require.NoError(t, err)
	require.Len(t, pdf.last.Rows, 1)
	assert.Equal(t, "24.50", pdf.last.Rows[0][3])
}

func TestReporte_FormatoNoSoportado(t *testing.T) {
	uc, _, _ := setup(t)
	_, err := uc.Finance(context.Background(), dto.ReportQuery{Format: "csv"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReporte_ErrorDelRenderer(t *testing.T) {
	uc, pdf, _ := setup(t)
	pdf.err = errors.New("fallo")
	_, err := uc.Inventory(context.Background(), dto.ReportQuery{Format: "pdf"})
	assert.Error(t, err)
}
