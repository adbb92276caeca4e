package server

import (
	"errors"

	"murmur/internal/middleware"
	"murmur/internal/models"
	"murmur/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const (
	localUserID  = "userID"
	localSession = "session"
)

// parseID extracts a route parameter as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func (s *Server) parseID(c *fiber.Ctx, param, resource string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+resource+" ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// currentUserID returns the authenticated user set by AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(localUserID).(uint)
	return id
}

func currentSession(c *fiber.Ctx) *service.Session {
	session, _ := c.Locals(localSession).(*service.Session)
	return session
}

func badBody(c *fiber.Ctx) error {
	return models.RespondWithError(c, fiber.StatusBadRequest,
		models.NewValidationError("Invalid request body"))
}

func logInternal(c *fiber.Ctx, err error) {
	middleware.Logger.ErrorContext(c.UserContext(), "request failed",
		"method", c.Method(), "path", c.Path(), "error", err.Error())
}
