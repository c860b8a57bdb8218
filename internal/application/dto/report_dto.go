package dto

import "time"

// Report reporte tabular independiente del formato de salida.
type Report struct {
	Title       string
	Subtitle    string
	GeneratedAt time.Time
	Columns     []string
	Rows        [][]string
	Summary     []ReportTotal // filas de totales al pie
}

// ReportTotal par etiqueta/valor del pie del reporte.
type ReportTotal struct {
	Label string
	Value string
}

// ReportQuery parámetros comunes de /reportes/*.
type ReportQuery struct {
	Format string `query:"formato"`
	From   string `query:"desde"`
	To     string `query:"hasta"`
}
