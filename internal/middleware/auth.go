package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
// WebSocket upgrades cannot set headers from browsers, so allowQuery also
// accepts a "token" query parameter.
func BearerToken(c *fiber.Ctx, allowQuery bool) string {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if allowQuery {
		return c.Query("token")
	}
	return ""
}
