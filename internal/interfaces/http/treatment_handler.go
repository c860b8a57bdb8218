package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/application/inventory"
)

// TreatmentHandler tratamientos aplicados a cultivos.
type TreatmentHandler struct {
	uc *inventory.TreatmentUseCase
}

func NewTreatmentHandler(uc *inventory.TreatmentUseCase) *TreatmentHandler {
	return &TreatmentHandler{uc: uc}
}

// List godoc
// @Summary      Listar tratamientos
// @Tags         tratamientos
// @Produce      json
// @Security     BearerAuth
// @Param        cultivo_id  query  string  false  "filtrar por cultivo"
// @Success      200  {array}  dto.TreatmentResponse
// @Router       /api/tratamientos [get]
func (h *TreatmentHandler) List(c *fiber.Ctx) error {
	cropID := c.Query("cultivo_id")
	if cropID != "" {
		if err := validate.Var(cropID, "uuid"); err != nil {
			return writeError(c, invalidParam("cultivo_id debe ser un UUID"))
		}
	}
	out, err := h.uc.ListByCrop(c.UserContext(), cropID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener tratamiento
// @Tags         tratamientos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del tratamiento"
// @Success      200  {object}  dto.TreatmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tratamientos/{id} [get]
func (h *TreatmentHandler) GetByID(c *fiber.Ctx) error {
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
// @Summary      Registrar tratamiento
// @Description  Genera una salida por insumo; si alguno no alcanza no se guarda nada.
// @Tags         tratamientos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.TreatmentRequest  true  "cultivo, tipo e insumos consumidos"
// @Success      201   {object}  dto.TreatmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/tratamientos [post]
func (h *TreatmentHandler) Create(c *fiber.Ctx) error {
	var in dto.TreatmentRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Delete godoc
// @Summary      Eliminar tratamiento
// @Description  Revierte las salidas que generó.
// @Tags         tratamientos
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del tratamiento"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tratamientos/{id} [delete]
func (h *TreatmentHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
