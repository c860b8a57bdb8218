package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/agrotrack-api/internal/application/analytics"
	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/application/usecase"
)

// FinanceHandler ingresos, egresos y resumen del período.
type FinanceHandler struct {
	uc        *usecase.FinanceUseCase
	summaryUC *analytics.FinanceSummaryUseCase
}

func NewFinanceHandler(uc *usecase.FinanceUseCase, summaryUC *analytics.FinanceSummaryUseCase) *FinanceHandler {
	return &FinanceHandler{uc: uc, summaryUC: summaryUC}
}

// List godoc
// @Summary      Listar registros financieros
// @Tags         finanzas
// @Produce      json
// @Security     BearerAuth
// @Param        tipo        query  string  false  "ingreso | egreso"
// @Param        cultivo_id  query  string  false  "filtrar por cultivo"
// @Param        desde       query  string  false  "YYYY-MM-DD"
// @Param        hasta       query  string  false  "YYYY-MM-DD"
// @Param        limit       query  int     false  "máximo 100"
// @Param        offset      query  int     false  "desplazamiento"
// @Success      200  {object}  dto.ListResponse[dto.FinanceResponse]
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/finanzas [get]
func (h *FinanceHandler) List(c *fiber.Ctx) error {
	var q dto.FinanceQuery
	if err := bindQuery(c, &q); err != nil {
		return writeError(c, err)
	}
	q.DefaultPage()
	out, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener registro financiero
// @Tags         finanzas
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del registro"
// @Success      200  {object}  dto.FinanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/finanzas/{id} [get]
func (h *FinanceHandler) GetByID(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Registrar ingreso o egreso
// @Tags         finanzas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.FinanceRequest  true  "tipo, concepto, monto"
// @Success      201   {object}  dto.FinanceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/finanzas [post]
func (h *FinanceHandler) Create(c *fiber.Ctx) error {
	var in dto.FinanceRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar registro financiero
// @Tags         finanzas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string              true  "ID del registro"
// @Param        body  body  dto.FinanceRequest  true  "tipo, concepto, monto"
// @Success      200   {object}  dto.FinanceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/finanzas/{id} [put]
func (h *FinanceHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.FinanceRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar registro financiero
// @Tags         finanzas
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del registro"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/finanzas/{id} [delete]
func (h *FinanceHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Summary godoc
// @Summary      Resumen financiero del período
// @Description  Ingresos, egresos, costo de insumos consumidos y balance, con desglose por cultivo. Sin fechas usa el mes en curso.
// @Tags         finanzas
// @Produce      json
// @Security     BearerAuth
// @Param        desde  query  string  false  "YYYY-MM-DD"
// @Param        hasta  query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  dto.FinanceSummaryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/finanzas/resumen [get]
func (h *FinanceHandler) Summary(c *fiber.Ctx) error {
	out, err := h.summaryUC.GetSummary(c.UserContext(), c.Query("desde"), c.Query("hasta"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
