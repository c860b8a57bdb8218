package excel

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
)

func TestRender_EscribeCabeceraFilasYTotales(t *testing.T) {
	rep := &dto.Report{
		Title:       "Movimientos de inventario",
		Subtitle:    "01/03/2025 - 31/03/2025",
		GeneratedAt: time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC),
		Columns:     []string{"Fecha", "Insumo", "Tipo"},
		Rows: [][]string{
			{"01/03/2025", "Urea", "entrada"},
			{"02/03/2025", "Urea", "salida"},
		},
		Summary: []dto.ReportTotal{{Label: "Entradas", Value: "1"}},
	}
	data, err := NewReportRenderer().Render(context.Background(), rep)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	get := func(cell string) string {
		v, err := f.GetCellValue(sheet, cell)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "Movimientos de inventario", get("A1"))
	assert.Equal(t, "Generado: 01/04/2025 09:30", get("A3"))
	assert.Equal(t, "Fecha", get("A5"))
	assert.Equal(t, "Tipo", get("C5"))
	assert.Equal(t, "Urea", get("B6"))
	assert.Equal(t, "salida", get("C7"))
	// totales dos filas debajo de la última, en las dos columnas finales
	assert.Equal(t, "Entradas", get("B9"))
	assert.Equal(t, "1", get("C9"))
}

func TestRender_SinColumnas(t *testing.T) {
	_, err := NewReportRenderer().Render(context.Background(), &dto.Report{})
	assert.Error(t, err)
}
