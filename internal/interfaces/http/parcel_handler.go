package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/application/usecase"
)

// ParcelHandler lotes, sublotes y vista de mapa.
type ParcelHandler struct {
	uc *usecase.ParcelUseCase
}

func NewParcelHandler(uc *usecase.ParcelUseCase) *ParcelHandler {
	return &ParcelHandler{uc: uc}
}

// ListLots godoc
// @Summary      Listar lotes
// @Tags         lotes
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "máximo 100"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.ListResponse[dto.LotResponse]
// @Router       /api/lotes [get]
func (h *ParcelHandler) ListLots(c *fiber.Ctx) error {
	page, err := pageQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.ListLots(c.UserContext(), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetLot godoc
// @Summary      Obtener lote con sus sublotes
// @Tags         lotes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.LotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lotes/{id} [get]
func (h *ParcelHandler) GetLot(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.GetLot(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreateLot godoc
// @Summary      Crear lote
// @Tags         lotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.LotRequest  true  "datos del lote"
// @Success      201   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lotes [post]
func (h *ParcelHandler) CreateLot(c *fiber.Ctx) error {
	var in dto.LotRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.CreateLot(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateLot godoc
// @Summary      Actualizar lote
// @Tags         lotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string          true  "ID del lote"
// @Param        body  body  dto.LotRequest  true  "datos del lote"
// @Success      200   {object}  dto.LotResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/lotes/{id} [put]
func (h *ParcelHandler) UpdateLot(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.LotRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.UpdateLot(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DeleteLot godoc
// @Summary      Eliminar lote
// @Tags         lotes
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del lote"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/lotes/{id} [delete]
func (h *ParcelHandler) DeleteLot(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.DeleteLot(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetLotCoordinates godoc
// @Summary      Guardar polígono del lote
// @Description  Mínimo 3 vértices distintos; el anillo se cierra solo y se recalcula el área.
// @Tags         lotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                  true  "ID del lote"
// @Param        body  body  dto.CoordinatesRequest  true  "vértices lat/lng"
// @Success      200   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/lotes/{id}/coordenadas [put]
func (h *ParcelHandler) SetLotCoordinates(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.CoordinatesRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.SetLotCoordinates(c.UserContext(), id, in.Coordinates)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Map godoc
// @Summary      Mapa de lotes y sublotes
// @Description  GeoJSON FeatureCollection; posiciones en orden [lng, lat].
// @Tags         lotes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.FeatureCollection
// @Router       /api/lotes/mapa [get]
func (h *ParcelHandler) Map(c *fiber.Ctx) error {
	out, err := h.uc.Map(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListSublots godoc
// @Summary      Listar sublotes
// @Tags         sublotes
// @Produce      json
// @Security     BearerAuth
// @Param        lote_id  query  string  false  "filtrar por lote"
// @Success      200  {array}  dto.SublotResponse
// @Router       /api/sublotes [get]
func (h *ParcelHandler) ListSublots(c *fiber.Ctx) error {
	lotID := c.Query("lote_id")
	if lotID != "" {
		if err := validate.Var(lotID, "uuid"); err != nil {
			return writeError(c, invalidParam("lote_id debe ser un UUID"))
		}
	}
	out, err := h.uc.ListSublots(c.UserContext(), lotID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetSublot godoc
// @Summary      Obtener sublote
// @Tags         sublotes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del sublote"
// @Success      200  {object}  dto.SublotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sublotes/{id} [get]
func (h *ParcelHandler) GetSublot(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.GetSublot(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreateSublot godoc
// @Summary      Crear sublote
// @Tags         sublotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.SublotRequest  true  "datos del sublote"
// @Success      201   {object}  dto.SublotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/sublotes [post]
func (h *ParcelHandler) CreateSublot(c *fiber.Ctx) error {
	var in dto.SublotRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.CreateSublot(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateSublot godoc
// @Summary      Actualizar sublote
// @Tags         sublotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string             true  "ID del sublote"
// @Param        body  body  dto.SublotRequest  true  "datos del sublote"
// @Success      200   {object}  dto.SublotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/sublotes/{id} [put]
func (h *ParcelHandler) UpdateSublot(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.SublotRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.UpdateSublot(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DeleteSublot godoc
// @Summary      Eliminar sublote
// @Tags         sublotes
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del sublote"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sublotes/{id} [delete]
func (h *ParcelHandler) DeleteSublot(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.DeleteSublot(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetSublotCoordinates godoc
// @Summary      Guardar polígono del sublote
// @Description  Cada vértice debe caer dentro del polígono del lote padre.
// @Tags         sublotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                  true  "ID del sublote"
// @Param        body  body  dto.CoordinatesRequest  true  "vértices lat/lng"
// @Success      200   {object}  dto.SublotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/sublotes/{id}/coordenadas [put]
func (h *ParcelHandler) SetSublotCoordinates(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.CoordinatesRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.SetSublotCoordinates(c.UserContext(), id, in.Coordinates)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
