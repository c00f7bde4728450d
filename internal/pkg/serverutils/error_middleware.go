package serverutils

import (
	"errors"

	"docuchat-be/internal/pkg/logger"
	"docuchat-be/pkg/retrieval"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ErrorHandlerMiddleware maps domain errors onto HTTP statuses so services
// and controllers can return plain errors.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var (
			validationErr   *ValidationError
			collaboratorErr *retrieval.CollaboratorError
			fiberErr        *fiber.Error
		)

		switch {
		case errors.As(err, &validationErr):
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(validationErr.Error()))

		case errors.Is(err, retrieval.ErrNoCandidates):
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse("no documents uploaded yet"))

		case errors.Is(err, retrieval.ErrEmptySelection):
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse("no relevant fragments found"))

		case errors.Is(err, gorm.ErrRecordNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse("resource not found"))

		case errors.As(err, &collaboratorErr):
			log.Error("serverutils", "collaborator failure", map[string]interface{}{
				"op":    collaboratorErr.Op,
				"error": collaboratorErr.Err.Error(),
			})
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse("a dependent service is unavailable, try again later"))

		case errors.As(err, &fiberErr):
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		log.Error("serverutils", "unhandled error", map[string]interface{}{
			"path":  ctx.Path(),
			"error": err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("internal server error"))
	}
}
