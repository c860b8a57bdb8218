// Package pdf renderiza reportes tabulares en A4 con Maroto v2.
//
// Layout de la página:
//
//	┌───────────────────────────────────────────────┐
//	│  Título                       Generado: fecha  │
//	│  Subtítulo (período)                           │
//	│  ───────────────────────────────────────────── │
//	│  Cabecera de columnas (fondo verde)            │
//	│  Filas (sombreado alterno)                     │
//	│  ───────────────────────────────────────────── │
//	│                       Etiqueta total:  valor   │
//	└───────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/application/ports"
)

var _ ports.ReportRenderer = (*ReportRenderer)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 21, Green: 128, Blue: 61}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorStripe  = &props.Color{Red: 240, Green: 247, Blue: 242}
)

// gridSize columnas de la grilla de Maroto.
const gridSize = 12

// ReportRenderer implementa ports.ReportRenderer para PDF.
type ReportRenderer struct{}

func NewReportRenderer() *ReportRenderer { return &ReportRenderer{} }

func (r *ReportRenderer) ContentType() string { return "application/pdf" }
func (r *ReportRenderer) Extension() string   { return "pdf" }

// Render genera el PDF; más de seis columnas pasan a orientación horizontal.
func (r *ReportRenderer) Render(_ context.Context, rep *dto.Report) ([]byte, error) {
	if len(rep.Columns) == 0 || len(rep.Columns) > gridSize {
		return nil, fmt.Errorf("pdf: el reporte debe tener entre 1 y %d columnas", gridSize)
	}
	b := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle(rep.Title, true).
		WithAuthor("AgroTrack", true)
	if len(rep.Columns) > 6 {
		b = b.WithOrientation(orientation.Horizontal)
	}
	m := maroto.New(b.Build())

	m.AddRows(titleRow(rep))
	m.AddRows(line.NewRow(2, props.Line{Color: colorPrimary, Thickness: 0.5}))

	widths := spans(len(rep.Columns))
	m.AddRows(headerRow(rep.Columns, widths))
	for i, cells := range rep.Rows {
		m.AddRows(dataRow(cells, widths, i%2 == 1))
	}
	if len(rep.Rows) == 0 {
		m.AddRows(row.New(8).Add(col.New(gridSize).Add(
			text.New("Sin registros para el período", props.Text{Align: align.Center, Top: 2, Color: colorGray}),
		)))
	}

	if len(rep.Summary) > 0 {
		m.AddRows(line.NewRow(2, props.Line{Color: colorPrimary, Thickness: 0.3}))
		for _, t := range rep.Summary {
			m.AddRows(summaryRow(t))
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func titleRow(rep *dto.Report) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(rep.Title, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New(rep.Subtitle, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Generado: "+rep.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
		),
	)
}

func headerRow(columns []string, widths []int) core.Row {
	cols := make([]core.Col, len(columns))
	for i, c := range columns {
		cols[i] = col.New(widths[i]).Add(text.New(c, props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(cols...).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func dataRow(cells []string, widths []int, striped bool) core.Row {
	cols := make([]core.Col, len(widths))
	for i := range widths {
		value := ""
		if i < len(cells) {
			value = cells[i]
		}
		cols[i] = col.New(widths[i]).Add(text.New(value, props.Text{Size: 7.5, Top: 1.5, Left: 1, Right: 1}))
	}
	r := row.New(7).Add(cols...)
	if striped {
		r = r.WithStyle(&props.Cell{BackgroundColor: colorStripe})
	}
	return r
}

func summaryRow(t dto.ReportTotal) core.Row {
	return row.New(6).Add(
		col.New(6),
		col.New(3).Add(text.New(t.Label+":", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})),
		col.New(3).Add(text.New(t.Value, props.Text{Size: 9, Align: align.Right, Right: 1})),
	)
}

// spans reparte las 12 columnas de la grilla; el sobrante va a las primeras.
func spans(n int) []int {
	out := make([]int, n)
	base, extra := gridSize/n, gridSize%n
	for i := range out {
		out[i] = base
		if i < extra {
			out[i]++
		}
	}
	return out
}
