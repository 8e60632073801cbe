package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Catalogo-api/internal/application/dto"
	"github.com/jhoicas/Catalogo-api/internal/domain"
)

// writeError traduce los errores de dominio a dto.ErrorResponse con su status HTTP.
func writeError(c *fiber.Ctx, err error) error {
	status, code, msg := fiber.StatusInternalServerError, "INTERNAL", err.Error()

	var blocked *domain.DeleteBlockedError
	switch {
	case errors.As(err, &blocked):
		status, code = fiber.StatusConflict, string(blocked.Reason)
	case errors.Is(err, domain.ErrNotFound):
		status, code, msg = fiber.StatusNotFound, "NOT_FOUND", "categoría no encontrada"
	case errors.Is(err, domain.ErrValidation):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrSelfParent):
		status, code = fiber.StatusBadRequest, "SELF_PARENT"
	case errors.Is(err, domain.ErrCycleDetected):
		status, code = fiber.StatusBadRequest, "CYCLE_DETECTED"
	case errors.Is(err, domain.ErrInvalidParent):
		status, code = fiber.StatusBadRequest, "INVALID_PARENT"
	case errors.Is(err, domain.ErrDuplicateSibling):
		status, code = fiber.StatusConflict, "DUPLICATE_SIBLING"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
