package ports

import (
	"context"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
)

// ReportRenderer convierte un reporte tabular a un formato descargable (PDF, XLSX).
type ReportRenderer interface {
	Render(ctx context.Context, report *dto.Report) ([]byte, error)
	ContentType() string
	Extension() string
}
