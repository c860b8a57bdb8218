package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/application/usecase"
)

// readingIngester lo implementa *telemetry.Service.
type readingIngester interface {
	Ingest(ctx context.Context, raw []byte) (int, error)
}

// SensorHandler sensores, lecturas en vivo y alertas.
type SensorHandler struct {
	uc       *usecase.SensorUseCase
	alertUC  *usecase.AlertUseCase
	ingester readingIngester
}

func NewSensorHandler(uc *usecase.SensorUseCase, alertUC *usecase.AlertUseCase, ingester readingIngester) *SensorHandler {
	return &SensorHandler{uc: uc, alertUC: alertUC, ingester: ingester}
}

// List godoc
// @Summary      Listar sensores
// @Tags         sensores
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.SensorResponse
// @Router       /api/sensores [get]
func (h *SensorHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener sensor
// @Tags         sensores
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del sensor"
// @Success      200  {object}  dto.SensorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sensores/{id} [get]
func (h *SensorHandler) GetByID(c *fiber.Ctx) error {
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
// @Summary      Crear sensor
// @Description  campo es la clave del payload MQTT que alimenta al sensor.
// @Tags         sensores
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.SensorRequest  true  "datos del sensor"
// @Success      201   {object}  dto.SensorResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/sensores [post]
func (h *SensorHandler) Create(c *fiber.Ctx) error {
	var in dto.SensorRequest
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
// @Summary      Actualizar sensor
// @Tags         sensores
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string             true  "ID del sensor"
// @Param        body  body  dto.SensorRequest  true  "datos del sensor"
// @Success      200   {object}  dto.SensorResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/sensores/{id} [put]
func (h *SensorHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.SensorRequest
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
// @Summary      Eliminar sensor
// @Tags         sensores
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del sensor"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sensores/{id} [delete]
func (h *SensorHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Readings godoc
// @Summary      Ventana de lecturas del sensor
// @Tags         sensores
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del sensor"
// @Success      200  {object}  dto.ReadingsResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sensores/{id}/lecturas [get]
func (h *SensorHandler) Readings(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Readings(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Realtime godoc
// @Summary      Último valor de cada sensor activo
// @Tags         sensores
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.RealtimeSensorDTO
// @Router       /api/sensores/tiempo-real [get]
func (h *SensorHandler) Realtime(c *fiber.Ctx) error {
	out, err := h.uc.Realtime(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Ingest godoc
// @Summary      Publicar lecturas por HTTP
// @Description  Mismo payload que el tópico MQTT, ej. {"temperatura":24.5,"humedad":61}.
// @Tags         sensores
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      202  {object}  map[string]int
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sensores/lecturas [post]
func (h *SensorHandler) Ingest(c *fiber.Ctx) error {
	n, err := h.ingester.Ingest(c.UserContext(), c.Body())
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"lecturas": n})
}

// ListAlerts godoc
// @Summary      Listar alertas
// @Tags         alertas
// @Produce      json
// @Security     BearerAuth
// @Param        no_leidas  query  bool  false  "solo no leídas"
// @Param        limit      query  int   false  "máximo 100"
// @Param        offset     query  int   false  "desplazamiento"
// @Success      200  {object}  dto.ListResponse[dto.AlertResponse]
// @Router       /api/alertas [get]
func (h *SensorHandler) ListAlerts(c *fiber.Ctx) error {
	var q dto.AlertQuery
	if err := bindQuery(c, &q); err != nil {
		return writeError(c, err)
	}
	q.DefaultPage()
	out, err := h.alertUC.List(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// MarkAlertRead godoc
// @Summary      Marcar alerta como leída
// @Tags         alertas
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la alerta"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/alertas/{id}/leida [put]
func (h *SensorHandler) MarkAlertRead(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.alertUC.MarkRead(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteAlert godoc
// @Summary      Eliminar alerta
// @Tags         alertas
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la alerta"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/alertas/{id} [delete]
func (h *SensorHandler) DeleteAlert(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.alertUC.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
