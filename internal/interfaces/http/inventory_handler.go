package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/application/inventory"
	"github.com/jhoicas/agrotrack-api/internal/application/usecase"
)

// InventoryHandler insumos, existencias y movimientos.
type InventoryHandler struct {
	supplyUC   *usecase.SupplyUseCase
	stockUC    *inventory.StockUseCase
	movementUC *inventory.MovementUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(supplyUC *usecase.SupplyUseCase, stockUC *inventory.StockUseCase, movementUC *inventory.MovementUseCase) *InventoryHandler {
	return &InventoryHandler{supplyUC: supplyUC, stockUC: stockUC, movementUC: movementUC}
}

// ListSupplies godoc
// @Summary      Listar insumos
// @Tags         insumos
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "máximo 100"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.ListResponse[dto.SupplyResponse]
// @Router       /api/insumos [get]
func (h *InventoryHandler) ListSupplies(c *fiber.Ctx) error {
	page, err := pageQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.supplyUC.List(c.UserContext(), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetSupply godoc
// @Summary      Obtener insumo
// @Tags         insumos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del insumo"
// @Success      200  {object}  dto.SupplyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/insumos/{id} [get]
func (h *InventoryHandler) GetSupply(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.supplyUC.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreateSupply godoc
// @Summary      Crear insumo
// @Tags         insumos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.SupplyRequest  true  "datos del insumo"
// @Success      201   {object}  dto.SupplyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/insumos [post]
func (h *InventoryHandler) CreateSupply(c *fiber.Ctx) error {
	var in dto.SupplyRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.supplyUC.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateSupply godoc
// @Summary      Actualizar insumo
// @Tags         insumos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string             true  "ID del insumo"
// @Param        body  body  dto.SupplyRequest  true  "datos del insumo"
// @Success      200   {object}  dto.SupplyResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/insumos/{id} [put]
func (h *InventoryHandler) UpdateSupply(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.SupplyRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.supplyUC.Update(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DeleteSupply godoc
// @Summary      Eliminar insumo
// @Description  Falla con 409 si tiene movimientos.
// @Tags         insumos
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del insumo"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/insumos/{id} [delete]
func (h *InventoryHandler) DeleteSupply(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.supplyUC.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListStock godoc
// @Summary      Existencias de todos los insumos
// @Tags         inventario
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.InventoryItemResponse
// @Router       /api/inventario [get]
func (h *InventoryHandler) ListStock(c *fiber.Ctx) error {
	out, err := h.stockUC.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetStock godoc
// @Summary      Existencia de un insumo
// @Tags         inventario
// @Produce      json
// @Security     BearerAuth
// @Param        insumoId  path  string  true  "ID del insumo"
// @Success      200  {object}  dto.InventoryItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventario/{insumoId} [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	id, err := idParam(c, "insumoId")
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.stockUC.GetBySupply(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Replenishment godoc
// @Summary      Lista de reposición
// @Description  Insumos bajo su stock mínimo; sugiere comprar hasta 1.5 veces el mínimo.
// @Tags         inventario
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.ReplenishmentSuggestionDTO
// @Router       /api/inventario/reposicion [get]
func (h *InventoryHandler) Replenishment(c *fiber.Ctx) error {
	out, err := h.stockUC.GenerateReplenishmentList(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Conciliar existencia con el historial
// @Description  GET solo compara; POST además corrige la cantidad almacenada.
// @Tags         inventario
// @Produce      json
// @Security     BearerAuth
// @Param        insumoId  path  string  true  "ID del insumo"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventario/{insumoId}/conciliacion [get]
// @Router       /api/inventario/{insumoId}/conciliacion [post]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	id, err := idParam(c, "insumoId")
	if err != nil {
		return writeError(c, err)
	}
	repair := c.Method() == fiber.MethodPost
	out, err := h.movementUC.Reconcile(c.UserContext(), id, repair)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Listar movimientos
// @Tags         movimientos
// @Produce      json
// @Security     BearerAuth
// @Param        insumo_id   query  string  false  "filtrar por insumo"
// @Param        tipo        query  string  false  "entrada | salida"
// @Param        cultivo_id  query  string  false  "filtrar por cultivo"
// @Param        desde       query  string  false  "YYYY-MM-DD"
// @Param        hasta       query  string  false  "YYYY-MM-DD"
// @Param        limit       query  int     false  "máximo 100"
// @Param        offset      query  int     false  "desplazamiento"
// @Success      200  {object}  dto.ListResponse[dto.MovementResponse]
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movimientos [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var q dto.MovementQuery
	if err := bindQuery(c, &q); err != nil {
		return writeError(c, err)
	}
	q.Type = strings.ToLower(strings.TrimSpace(q.Type))
	q.DefaultPage()
	out, err := h.movementUC.List(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetMovement godoc
// @Summary      Obtener movimiento
// @Tags         movimientos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movimientos/{id} [get]
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.movementUC.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreateMovement godoc
// @Summary      Registrar movimiento
// @Description  Entrada o salida; la existencia del insumo se ajusta en la misma transacción.
// @Tags         movimientos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.MovementRequest  true  "insumo, tipo, cantidad"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movimientos [post]
func (h *InventoryHandler) CreateMovement(c *fiber.Ctx) error {
	in, err := h.movementInput(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.movementUC.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// EditMovement godoc
// @Summary      Editar movimiento
// @Description  Revierte el efecto anterior y aplica el nuevo; puede cambiar de insumo.
// @Tags         movimientos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string               true  "ID del movimiento"
// @Param        body  body  dto.MovementRequest  true  "insumo, tipo, cantidad"
// @Success      200   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movimientos/{id} [put]
func (h *InventoryHandler) EditMovement(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	in, err := h.movementInput(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.movementUC.Edit(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DeleteMovement godoc
// @Summary      Eliminar movimiento
// @Description  Revierte su efecto sobre la existencia.
// @Tags         movimientos
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del movimiento"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/movimientos/{id} [delete]
func (h *InventoryHandler) DeleteMovement(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.movementUC.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *InventoryHandler) movementInput(c *fiber.Ctx) (inventory.MovementInput, error) {
	var req dto.MovementRequest
	if err := bindAndValidate(c, &req); err != nil {
		return inventory.MovementInput{}, err
	}
	return inventory.InputFromRequest(GetUserID(c), req)
}
