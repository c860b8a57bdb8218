package http

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/agrotrack-api/internal/application/auth"
	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/application/usecase"
)

// UploadsPrefix ruta pública desde la que se sirven los archivos subidos.
const UploadsPrefix = "/uploads"

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// UserHandler administración de usuarios.
type UserHandler struct {
	uc        *usecase.UserUseCase
	authUC    *auth.AuthUseCase
	uploadDir string
	maxBytes  int64
}

// NewUserHandler construye el handler. Las imágenes se guardan bajo uploadDir/usuarios.
func NewUserHandler(uc *usecase.UserUseCase, authUC *auth.AuthUseCase, uploadDir string, maxBytes int64) *UserHandler {
	return &UserHandler{uc: uc, authUC: authUC, uploadDir: uploadDir, maxBytes: maxBytes}
}

// List godoc
// @Summary      Listar usuarios
// @Tags         usuarios
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "máximo 100"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.ListResponse[dto.UserResponse]
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/usuarios [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	page, err := pageQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener usuario
// @Tags         usuarios
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del usuario"
// @Success      200  {object}  dto.UserResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/usuarios/{id} [get]
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
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
// @Summary      Crear usuario con rol
// @Description  Solo administradores.
// @Tags         usuarios
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateUserRequest  true  "datos del usuario"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/usuarios [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateUserRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.authUC.CreateWithRole(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar usuario
// @Tags         usuarios
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                 true  "ID del usuario"
// @Param        body  body  dto.UpdateUserRequest  true  "campos a modificar"
// @Success      200   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/usuarios/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateUserRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), GetRole(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SetStatus godoc
// @Summary      Activar o inactivar usuario
// @Tags         usuarios
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                       true  "ID del usuario"
// @Param        body  body  dto.UpdateUserStatusRequest  true  "activo | inactivo"
// @Success      200   {object}  dto.UserResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/usuarios/{id}/estado [put]
func (h *UserHandler) SetStatus(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateUserStatusRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.SetStatus(c.UserContext(), GetUserID(c), id, in.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar usuario
// @Description  Solo administradores; nadie puede eliminarse a sí mismo.
// @Tags         usuarios
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del usuario"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/usuarios/{id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.Delete(c.UserContext(), GetUserID(c), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UploadImage godoc
// @Summary      Subir imagen de perfil
// @Description  JPG o PNG; reemplaza la anterior.
// @Tags         usuarios
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true  "ID del usuario"
// @Param        imagen  formData  file    true  "imagen jpg/png"
// @Success      200  {object}  dto.UserResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/usuarios/{id}/imagen [post]
func (h *UserHandler) UploadImage(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	fh, err := c.FormFile("imagen")
	if err != nil {
		return writeError(c, invalidBody("campo imagen requerido"))
	}
	if fh.Size > h.maxBytes {
		return writeError(c, invalidBody("la imagen excede el tamaño máximo"))
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, err)
	}
	mt, err := mimetype.DetectReader(f)
	f.Close()
	if err != nil {
		return writeError(c, invalidBody("no se pudo leer la imagen"))
	}
	ext, ok := imageExtensions[mt.String()]
	if !ok {
		return writeError(c, invalidBody("formato no soportado, use jpg o png"))
	}
	if _, err := h.uc.GetByID(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}

	dir := filepath.Join(h.uploadDir, "usuarios")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return writeError(c, err)
	}
	name := id + "-" + uuid.NewString() + ext
	if err := c.SaveFile(fh, filepath.Join(dir, name)); err != nil {
		return writeError(c, err)
	}
	out, previous, err := h.uc.SetProfileImage(c.UserContext(), id, path.Join(UploadsPrefix, "usuarios", name))
	if err != nil {
		_ = os.Remove(filepath.Join(dir, name))
		return writeError(c, err)
	}
	h.removeUpload(previous)
	return c.JSON(out)
}

func (h *UserHandler) removeUpload(public string) {
	if !strings.HasPrefix(public, UploadsPrefix+"/") {
		return
	}
	rel := filepath.FromSlash(strings.TrimPrefix(public, UploadsPrefix+"/"))
	if err := os.Remove(filepath.Join(h.uploadDir, rel)); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("archivo", public).Msg("no se pudo borrar la imagen anterior")
	}
}
