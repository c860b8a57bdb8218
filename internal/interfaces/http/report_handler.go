package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/application/report"
)

// ReportHandler descarga de reportes PDF / XLSX.
type ReportHandler struct {
	uc *report.UseCase
}

func NewReportHandler(uc *report.UseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

type reportFunc func(ctx context.Context, q dto.ReportQuery) (*report.File, error)

func (h *ReportHandler) send(c *fiber.Ctx, build reportFunc) error {
	var q dto.ReportQuery
	if err := bindQuery(c, &q); err != nil {
		return writeError(c, err)
	}
	file, err := build(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	c.Attachment(file.Name)
	c.Set(fiber.HeaderContentType, file.ContentType)
	return c.Send(file.Data)
}

// Inventory godoc
// @Summary      Reporte de inventario valorizado
// @Tags         reportes
// @Produce      application/pdf
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        formato  query  string  false  "pdf | xlsx"
// @Success      200  {file}  binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reportes/inventario [get]
func (h *ReportHandler) Inventory(c *fiber.Ctx) error {
	return h.send(c, h.uc.Inventory)
}

// Movements godoc
// @Summary      Reporte de movimientos
// @Tags         reportes
// @Produce      application/pdf
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        formato  query  string  false  "pdf | xlsx"
// @Param        desde    query  string  false  "YYYY-MM-DD"
// @Param        hasta    query  string  false  "YYYY-MM-DD"
// @Success      200  {file}  binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reportes/movimientos [get]
func (h *ReportHandler) Movements(c *fiber.Ctx) error {
	return h.send(c, h.uc.Movements)
}

// IoT godoc
// @Summary      Reporte de lecturas IoT
// @Description  Ventana actual de cada sensor.
// @Tags         reportes
// @Produce      application/pdf
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        formato  query  string  false  "pdf | xlsx"
// @Success      200  {file}  binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reportes/iot [get]
func (h *ReportHandler) IoT(c *fiber.Ctx) error {
	return h.send(c, h.uc.IoT)
}

// Finance godoc
// @Summary      Reporte financiero
// @Tags         reportes
// @Produce      application/pdf
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        formato  query  string  false  "pdf | xlsx"
// @Param        desde    query  string  false  "YYYY-MM-DD"
// @Param        hasta    query  string  false  "YYYY-MM-DD"
// @Success      200  {file}  binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reportes/finanzas [get]
func (h *ReportHandler) Finance(c *fiber.Ctx) error {
	return h.send(c, h.uc.Finance)
}
