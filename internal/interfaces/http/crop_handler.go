package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/application/inventory"
	"github.com/jhoicas/agrotrack-api/internal/application/usecase"
)

// cropQuery filtros de GET /cultivos.
type cropQuery struct {
	SublotID string `query:"sublote_id" validate:"omitempty,uuid"`
	Status   string `query:"estado" validate:"omitempty,oneof=activo cosechado inactivo"`
	dto.PageRequest
}

// CropHandler cultivos y sus tratamientos.
type CropHandler struct {
	uc          *usecase.CropUseCase
	treatmentUC *inventory.TreatmentUseCase
}

func NewCropHandler(uc *usecase.CropUseCase, treatmentUC *inventory.TreatmentUseCase) *CropHandler {
	return &CropHandler{uc: uc, treatmentUC: treatmentUC}
}

// List godoc
// @Summary      Listar cultivos
// @Tags         cultivos
// @Produce      json
// @Security     BearerAuth
// @Param        sublote_id  query  string  false  "filtrar por sublote"
// @Param        estado      query  string  false  "activo | cosechado | inactivo"
// @Param        limit       query  int     false  "máximo 100"
// @Param        offset      query  int     false  "desplazamiento"
// @Success      200  {object}  dto.ListResponse[dto.CropResponse]
// @Router       /api/cultivos [get]
func (h *CropHandler) List(c *fiber.Ctx) error {
	var q cropQuery
	if err := bindQuery(c, &q); err != nil {
		return writeError(c, err)
	}
	q.DefaultPage()
	out, err := h.uc.List(c.UserContext(), q.SublotID, q.Status, q.PageRequest)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener cultivo
// @Tags         cultivos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del cultivo"
// @Success      200  {object}  dto.CropResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cultivos/{id} [get]
func (h *CropHandler) GetByID(c *fiber.Ctx) error {
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
// @Summary      Crear cultivo
// @Tags         cultivos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CropRequest  true  "datos del cultivo"
// @Success      201   {object}  dto.CropResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/cultivos [post]
func (h *CropHandler) Create(c *fiber.Ctx) error {
	var in dto.CropRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar cultivo
// @Tags         cultivos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string           true  "ID del cultivo"
// @Param        body  body  dto.CropRequest  true  "datos del cultivo"
// @Success      200   {object}  dto.CropResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/cultivos/{id} [put]
func (h *CropHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.CropRequest
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
// @Summary      Eliminar cultivo
// @Tags         cultivos
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del cultivo"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/cultivos/{id} [delete]
func (h *CropHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Treatments godoc
// @Summary      Tratamientos del cultivo
// @Tags         cultivos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del cultivo"
// @Success      200  {array}  dto.TreatmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cultivos/{id}/tratamientos [get]
func (h *CropHandler) Treatments(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.treatmentUC.ListByCrop(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
