package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
)

// permissionChecker contrato mínimo para autorizar un par recurso/acción.
// Lo implementa *usecase.AuthorizationService.
type permissionChecker interface {
	Allows(ctx context.Context, roleID, roleName, resource, action string) (bool, error)
}

// RequirePermission verifica que el rol del token tenga el permiso resource:action.
// Debe usarse DESPUÉS de AuthMiddleware.
//
//   - 401 si no hay usuario en el contexto.
//   - 403 si el rol no cubre el permiso.
//   - 503 si no se pudo consultar el almacén de permisos.
func RequirePermission(checker permissionChecker, resource, action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetUserID(c) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "usuario no encontrado en el token",
			})
		}

		ok, err := checker.Allows(c.UserContext(), GetRoleID(c), GetRole(c), resource, action)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "PERMISSION_CHECK_FAILED",
				Message: "no se pudo verificar el permiso, intente más tarde",
			})
		}

		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "sin permiso " + resource + ":" + action,
			})
		}

		return c.Next()
	}
}
