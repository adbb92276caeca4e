package server

import (
	"errors"

	"murmur/internal/middleware"
	"murmur/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler streams realtime events to the authenticated user.
// @Summary Realtime event stream
// @Description Upgrade to a websocket; the token may be sent as ?token= when headers are unavailable
// @Tags realtime
// @Security BearerAuth
// @Param token query string false "JWT access token"
// @Success 101
// @Failure 401 {object} models.ErrorResponse
// @Router /ws [get]
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals(localUserID).(uint)
		if !ok {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			reason := "server connection limit reached"
			if errors.Is(err, notifications.ErrUserConnLimit) {
				reason = "too many connections"
			}
			middleware.Logger.Warn("websocket registration rejected", "user_id", userID, "error", err.Error())
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason))
			_ = conn.Close()
			return
		}

		middleware.Logger.Debug("websocket connected", "user_id", userID)

		go client.WritePump()
		// ReadPump blocks until the peer disconnects. The connection is
		// recycled once this handler returns, so the writer must be gone too.
		client.ReadPump()
		client.Wait()

		middleware.Logger.Debug("websocket disconnected", "user_id", userID)
	})
}
