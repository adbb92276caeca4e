package server

import (
	"context"

	"murmur/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// AuthRequired resolves the bearer token to a session and stores the user id
// in locals and the request context. WebSocket upgrades may pass the token
// as a "token" query parameter.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := middleware.BearerToken(c, websocket.IsWebSocketUpgrade(c))

		session, err := s.authService.Authenticate(c.UserContext(), token)
		if err != nil {
			return respondServiceError(c, err)
		}

		c.Locals(localUserID, session.UserID)
		c.Locals(localSession, session)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, session.UserID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// RequireUpgrade rejects plain HTTP requests to websocket routes.
func (s *Server) RequireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}
