package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/application/usecase"
)

// RoleHandler roles, permisos y sus asignaciones.
type RoleHandler struct {
	uc *usecase.RoleUseCase
}

func NewRoleHandler(uc *usecase.RoleUseCase) *RoleHandler {
	return &RoleHandler{uc: uc}
}

// List godoc
// @Summary      Listar roles
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.RoleResponse
// @Router       /api/roles [get]
func (h *RoleHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener rol con sus permisos
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del rol"
// @Success      200  {object}  dto.RoleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/roles/{id} [get]
func (h *RoleHandler) GetByID(c *fiber.Ctx) error {
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
// @Summary      Crear rol
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.RoleRequest  true  "nombre y descripción"
// @Success      201   {object}  dto.RoleResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/roles [post]
func (h *RoleHandler) Create(c *fiber.Ctx) error {
	var in dto.RoleRequest
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
// @Summary      Actualizar rol
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string           true  "ID del rol"
// @Param        body  body  dto.RoleRequest  true  "nombre y descripción"
// @Success      200   {object}  dto.RoleResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/roles/{id} [put]
func (h *RoleHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.RoleRequest
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
// @Summary      Eliminar rol
// @Tags         roles
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del rol"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/roles/{id} [delete]
func (h *RoleHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetPermissions godoc
// @Summary      Reemplazar permisos del rol
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                         true  "ID del rol"
// @Param        body  body  dto.SetRolePermissionsRequest  true  "ids de permisos"
// @Success      200   {object}  dto.RoleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/roles/{id}/permisos [put]
func (h *RoleHandler) SetPermissions(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.SetRolePermissionsRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.SetPermissions(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListPermissions godoc
// @Summary      Listar permisos
// @Tags         permisos
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.PermissionResponse
// @Router       /api/permisos [get]
func (h *RoleHandler) ListPermissions(c *fiber.Ctx) error {
	out, err := h.uc.ListPermissions(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreatePermission godoc
// @Summary      Crear permiso
// @Description  Recurso y acción se normalizan (minúsculas, sin tildes).
// @Tags         permisos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreatePermissionRequest  true  "recurso y acción"
// @Success      201   {object}  dto.PermissionResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/permisos [post]
func (h *RoleHandler) CreatePermission(c *fiber.Ctx) error {
	var in dto.CreatePermissionRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.CreatePermission(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// DeletePermission godoc
// @Summary      Eliminar permiso
// @Tags         permisos
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del permiso"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/permisos/{id} [delete]
func (h *RoleHandler) DeletePermission(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.DeletePermission(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MyPermissions godoc
// @Summary      Permisos efectivos del usuario autenticado
// @Tags         permisos
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.MyPermissionsResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/permisos/me [get]
func (h *RoleHandler) MyPermissions(c *fiber.Ctx) error {
	out, err := h.uc.MyPermissions(c.UserContext(), GetRoleID(c), GetRole(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
