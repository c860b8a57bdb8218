package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
)

func TestSpans_SumanDoce(t *testing.T) {
	for n := 1; n <= gridSize; n++ {
		total := 0
		for _, s := range spans(n) {
			assert.Positive(t, s)
			total += s
		}
		assert.Equal(t, gridSize, total, "n=%d", n)
	}
	assert.Equal(t, []int{3, 3, 2, 2, 2}, spans(5))
}

func TestRender_GeneraPDF(t *testing.T) {
	rep := &dto.Report{
		Title:       "Inventario de insumos",
		Subtitle:    "Existencias actuales",
		GeneratedAt: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
		Columns:     []string{"Insumo", "Unidad", "Cantidad"},
		Rows:        [][]string{{"Urea", "kg", "12"}, {"Semilla", "und", "300"}},
		Summary:     []dto.ReportTotal{{Label: "Valor total", Value: "$ 8.000,00"}},
	}
	r := NewReportRenderer()
	data, err := r.Render(context.Background(), rep)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.Equal(t, "application/pdf", r.ContentType())
	assert.Equal(t, "pdf", r.Extension())
}

func TestRender_SinColumnas(t *testing.T) {
	_, err := NewReportRenderer().Render(context.Background(), &dto.Report{Title: "x"})
	assert.Error(t, err)
}
