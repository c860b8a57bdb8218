package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/domain"
)

var validate = validator.New()

func init() {
	// decimal.Decimal se valida como número para que min/gt funcionen.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
}

// requestError error de entrada detectado antes de llegar al caso de uso.
type requestError struct {
	code    string
	message string
	fields  map[string]string
}

func (e *requestError) Error() string { return e.message }

func invalidBody(msg string) error {
	return &requestError{code: "INVALID_BODY", message: msg}
}

func invalidParam(msg string) error {
	return &requestError{code: "VALIDATION", message: msg}
}

// bindAndValidate decodifica el JSON del body y aplica las reglas `validate`.
func bindAndValidate(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return invalidBody("cuerpo inválido: " + err.Error())
	}
	return validateStruct(req)
}

// bindQuery decodifica los parámetros de query y los valida.
func bindQuery(c *fiber.Ctx, req interface{}) error {
	if err := c.QueryParser(req); err != nil {
		return invalidParam("parámetros inválidos: " + err.Error())
	}
	return validateStruct(req)
}

func validateStruct(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return invalidBody(err.Error())
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return &requestError{code: "VALIDATION", message: "datos inválidos", fields: fields}
}

// writeError traduce errores de entrada y de dominio a la respuesta HTTP.
func writeError(c *fiber.Ctx, err error) error {
	var rerr *requestError
	if errors.As(err, &rerr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: rerr.code, Message: rerr.message, Fields: rerr.fields})
	}
	status, code := domainStatus(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error no controlado")
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func domainStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidGeometry):
		return fiber.StatusBadRequest, "INVALID_GEOMETRY"
	case errors.Is(err, domain.ErrOutsideParent):
		return fiber.StatusBadRequest, "OUTSIDE_PARENT"
	case errors.Is(err, domain.ErrInvalidToken):
		return fiber.StatusBadRequest, "INVALID_TOKEN"
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return fiber.StatusConflict, "EMAIL_EXISTS"
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

// ErrorHandler manejador de errores de la app Fiber: rutas inexistentes, body demasiado grande
// y cualquier error que un handler devuelva sin escribir respuesta.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		code := "INTERNAL"
		switch ferr.Code {
		case fiber.StatusNotFound:
			code = "NOT_FOUND"
		case fiber.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		case fiber.StatusRequestEntityTooLarge:
			code = "PAYLOAD_TOO_LARGE"
		case fiber.StatusBadRequest:
			code = "INVALID_BODY"
		}
		return c.Status(ferr.Code).JSON(dto.ErrorResponse{Code: code, Message: ferr.Message})
	}
	return writeError(c, err)
}

// idParam lee un parámetro de ruta que debe ser UUID.
func idParam(c *fiber.Ctx, name string) (string, error) {
	id := c.Params(name)
	if err := uuid.Validate(id); err != nil {
		return "", invalidParam(name + " debe ser un UUID")
	}
	return id, nil
}

// pageQuery lee limit/offset con sus valores por defecto.
func pageQuery(c *fiber.Ctx) (dto.PageRequest, error) {
	var page dto.PageRequest
	if err := bindQuery(c, &page); err != nil {
		return page, err
	}
	page.DefaultPage()
	return page, nil
}
