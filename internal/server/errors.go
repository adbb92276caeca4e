package server

import (
	"murmur/internal/models"

	"github.com/gofiber/fiber/v2"
)

// mapServiceError maps an AppError code to its HTTP status. Errors that
// are not AppErrors are internal.
func mapServiceError(err error) int {
	switch models.ErrorCode(err) {
	case models.CodeValidation, models.CodeInvalidOperation:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized, models.CodeInvalidCredentials:
		return fiber.StatusUnauthorized
	case models.CodeForbidden:
		return fiber.StatusForbidden
	case models.CodeNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// respondServiceError writes err with its mapped status, logging internal
// failures since their cause is not returned to the client.
func respondServiceError(c *fiber.Ctx, err error) error {
	status := mapServiceError(err)
	if status >= fiber.StatusInternalServerError {
		logInternal(c, err)
	}
	return models.RespondWithError(c, status, err)
}
