// Package excel renderiza reportes tabulares como libro XLSX.
package excel

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/application/ports"
)

var _ ports.ReportRenderer = (*ReportRenderer)(nil)

const sheet = "Reporte"

// headerRowIndex fila de la cabecera de columnas (1-based): título, subtítulo, generado, vacía.
const headerRowIndex = 5

// ReportRenderer implementa ports.ReportRenderer para XLSX.
type ReportRenderer struct{}

func NewReportRenderer() *ReportRenderer { return &ReportRenderer{} }

func (r *ReportRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (r *ReportRenderer) Extension() string { return "xlsx" }

// Render escribe título, cabecera congelada con autofiltro, filas y totales.
func (r *ReportRenderer) Render(_ context.Context, rep *dto.Report) ([]byte, error) {
	if len(rep.Columns) == 0 {
		return nil, fmt.Errorf("excel: el reporte no tiene columnas")
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("excel: renombrar hoja: %w", err)
	}
	styles, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	set := func(col, row int, v any) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheet, cell, v)
	}
	style := func(fromCol, fromRow, toCol, toRow, id int) error {
		from, _ := excelize.CoordinatesToCellName(fromCol, fromRow)
		to, _ := excelize.CoordinatesToCellName(toCol, toRow)
		return f.SetCellStyle(sheet, from, to, id)
	}

	if err := set(1, 1, rep.Title); err != nil {
		return nil, err
	}
	if err := style(1, 1, 1, 1, styles.title); err != nil {
		return nil, err
	}
	_ = set(1, 2, rep.Subtitle)
	_ = set(1, 3, "Generado: "+rep.GeneratedAt.Format("02/01/2006 15:04"))

	widths := make([]int, len(rep.Columns))
	for i, c := range rep.Columns {
		if err := set(i+1, headerRowIndex, c); err != nil {
			return nil, err
		}
		widths[i] = utf8.RuneCountInString(c)
	}
	if err := style(1, headerRowIndex, len(rep.Columns), headerRowIndex, styles.header); err != nil {
		return nil, err
	}

	for r, cells := range rep.Rows {
		for c, v := range cells {
			if c >= len(rep.Columns) {
				break
			}
			if err := set(c+1, headerRowIndex+1+r, v); err != nil {
				return nil, err
			}
			widths[c] = max(widths[c], utf8.RuneCountInString(v))
		}
	}
	lastRow := headerRowIndex + len(rep.Rows)

	if len(rep.Rows) > 0 {
		from, _ := excelize.CoordinatesToCellName(1, headerRowIndex)
		to, _ := excelize.CoordinatesToCellName(len(rep.Columns), lastRow)
		if err := f.AutoFilter(sheet, from+":"+to, nil); err != nil {
			return nil, fmt.Errorf("excel: autofiltro: %w", err)
		}
	}

	row := lastRow + 2
	labelCol := max(1, len(rep.Columns)-1)
	for _, t := range rep.Summary {
		_ = set(labelCol, row, t.Label)
		_ = set(labelCol+1, row, t.Value)
		if err := style(labelCol, row, labelCol, row, styles.total); err != nil {
			return nil, err
		}
		row++
	}

	for i, w := range widths {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, name, name, float64(min(w+2, 60))); err != nil {
			return nil, err
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      headerRowIndex,
		TopLeftCell: fmt.Sprintf("A%d", headerRowIndex+1),
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("excel: congelar cabecera: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("excel: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}

type styleIDs struct {
	title, header, total int
}

func newStyles(f *excelize.File) (styleIDs, error) {
	var s styleIDs
	var err error
	if s.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14, Color: "15803D"},
	}); err != nil {
		return s, fmt.Errorf("excel: estilo título: %w", err)
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"15803D"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}); err != nil {
		return s, fmt.Errorf("excel: estilo cabecera: %w", err)
	}
	if s.total, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	}); err != nil {
		return s, fmt.Errorf("excel: estilo totales: %w", err)
	}
	return s, nil
}
