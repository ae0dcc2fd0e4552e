package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jhoicas/sanse-api/internal/application/dto"
	"github.com/jhoicas/sanse-api/internal/domain"
	"github.com/rs/zerolog/log"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// bind parsea el cuerpo JSON y valida las etiquetas validate del DTO.
// Si falla ya escribió la respuesta 400 y devuelve false.
func bind(c *fiber.Ctx, dest any) (bool, error) {
	if err := c.BodyParser(dest); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(dest); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(validationResponse(err))
	}
	return true, nil
}

// pathID lee el parámetro :id en forma canónica de UUID.
// Si no lo es ya escribió la respuesta 400 y devuelve false.
func pathID(c *fiber.Ctx) (string, bool, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil || len(id) != 36 {
		return "", false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    string(domain.CodeInvalidRequest),
			Message: "id inválido",
			Details: map[string]string{"id": "debe ser un UUID"},
		})
	}
	return id, true, nil
}

func validationResponse(err error) dto.ErrorResponse {
	out := dto.ErrorResponse{Code: string(domain.CodeInvalidRequest), Message: "validación fallida"}
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		out.Details = make(map[string]string, len(errs))
		for _, fe := range errs {
			field := fe.Namespace()
			if i := strings.Index(field, "."); i >= 0 {
				field = field[i+1:]
			}
			out.Details[field] = validationMessage(fe)
		}
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "min":
		return fmt.Sprintf("mínimo %s", fe.Param())
	case "max":
		return fmt.Sprintf("máximo %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("debe ser uno de: %s", fe.Param())
	case "uuid":
		return "debe ser un UUID"
	}
	return "inválido"
}

// statusFor traduce la etiqueta de taxonomía a código HTTP.
func statusFor(code domain.Code) int {
	switch code {
	case domain.CodeNotFound:
		return fiber.StatusNotFound
	case domain.CodeInvalidRequest, domain.CodeParse:
		return fiber.StatusBadRequest
	case domain.CodeReferentialConflict, domain.CodeSyncInProgress:
		return fiber.StatusConflict
	case domain.CodeMissingDependency:
		return fiber.StatusUnprocessableEntity
	case domain.CodeUpstream:
		return fiber.StatusBadGateway
	case domain.CodeTransactionFailure:
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// writeError responde con {code, message}. Los errores no etiquetados nunca exponen su texto.
func writeError(c *fiber.Ctx, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		if de.Code == domain.CodeTransactionFailure || de.Code == domain.CodeUpstream {
			log.Error().Err(err).Str("path", c.Path()).Msg("petición fallida")
		}
		return c.Status(statusFor(de.Code)).JSON(dto.ErrorResponse{
			Code:      string(de.Code),
			Message:   de.Message,
			Retryable: de.Retryable(),
		})
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: string(domain.CodeNotFound), Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "ya existe un recurso con ese nombre"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: string(domain.CodeInvalidRequest), Message: "datos inválidos"})
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}
