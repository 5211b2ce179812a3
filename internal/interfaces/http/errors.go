package http

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/domain"
)

// ErrorHandler centraliza la traducción de errores de dominio a respuestas JSON.
// Los mensajes de dominio se devuelven tal cual; los errores internos se registran y se ocultan.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, body := errorResponse(err)
		if status >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
		}
		return c.Status(status).JSON(body)
	}
}

func errorResponse(err error) (int, dto.ErrorResponse) {
	var (
		fe    *fiber.Error
		ve    validator.ValidationErrors
		stock *domain.InsufficientStockError
		dup   *domain.DuplicateKeyError
		deps  *domain.DependentRowsError
		hdr   *domain.InvalidHeaderError
		st    *domain.StateTransitionError
		inv   *domain.ValidationError
	)
	switch {
	case errors.As(err, &fe):
		return fe.Code, dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message}

	case errors.As(err, &ve):
		details := make(map[string]string, len(ve))
		for _, f := range ve {
			details[f.Field()] = f.Tag()
		}
		return fiber.StatusUnprocessableEntity, dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Details: details}

	case errors.As(err, &stock):
		return fiber.StatusConflict, dto.ErrorResponse{
			Code: "INSUFFICIENT_STOCK", Message: stock.Error(),
			Details: map[string]string{
				"entity": stock.Entity, "name": stock.Name,
				"requested": stock.Requested.String(), "available": stock.Available.String(),
			},
		}

	case errors.As(err, &dup):
		return fiber.StatusConflict, dto.ErrorResponse{
			Code: "DUPLICATE", Message: dup.Error(),
			Details: map[string]string{"entity": dup.Entity, "key": dup.Key, "value": dup.Value},
		}

	case errors.As(err, &deps):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "DEPENDENT_ROWS", Message: deps.Error()}

	case errors.As(err, &hdr):
		return fiber.StatusUnprocessableEntity, dto.ErrorResponse{
			Code: "INVALID_HEADER", Message: hdr.Error(),
			Details: map[string]string{"expected": hdr.Expected},
		}

	case errors.As(err, &st):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "STATE_TRANSITION", Message: st.Error()}

	case errors.As(err, &inv):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: sentinelCode(inv.Err), Message: inv.Err.Error(), Details: inv.Details}
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()}
	case errors.Is(err, domain.ErrImportInProgress):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "IMPORT_IN_PROGRESS", Message: err.Error()}
	case errors.Is(err, domain.ErrInvoiceAllocationExhausted):
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{Code: "INVOICE_ALLOCATION", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidReference):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: sentinelCode(err), Message: err.Error()}
	}
	return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
}

func sentinelCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "INVALID_QUANTITY"
	case errors.Is(err, domain.ErrInvalidReference):
		return "INVALID_REFERENCE"
	case errors.Is(err, domain.ErrInvalidHeader):
		return "INVALID_HEADER"
	default:
		return "VALIDATION"
	}
}
