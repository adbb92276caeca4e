package notifications

import (
	"sync"
	"time"

	"murmur/internal/middleware"
	"murmur/internal/observability"

	"github.com/gofiber/websocket/v2"
)

// Timing knobs; tests shorten them.
var (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

const (
	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	sendBuffer = 256
)

var dropNotice = []byte(`{"type":"` + EventMessagesDropped + `","payload":{"reason":"buffer_full"}}`)

// Client is a middleman between one websocket connection and the hub.
// WritePump is the only writer on Conn once it has started.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// Buffered channel of outbound messages. Never closed; stop the client
	// with Close instead.
	Send chan []byte

	UserID uint

	done       chan struct{}
	finished   chan struct{}
	stopOnce   sync.Once
	closeFrame []byte
}

// NewClient creates a new Client instance
func NewClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		Hub:      hub,
		Conn:     conn,
		UserID:   userID,
		Send:     make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// stop signals WritePump to exit, sending closeFrame first when non-nil.
func (c *Client) stop(closeFrame []byte) {
	c.stopOnce.Do(func() {
		c.closeFrame = closeFrame
		close(c.done)
	})
}

// Close asks WritePump to send a close frame with code and text, then exit.
func (c *Client) Close(code int, text string) {
	c.stop(websocket.FormatCloseMessage(code, text))
}

// Wait blocks until WritePump has returned. The connection must not be
// released before then.
func (c *Client) Wait() {
	<-c.finished
}

// ReadPump drains the connection until it closes. The stream is one-way, so
// inbound messages are discarded; reading keeps pong handling alive.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.UnregisterClient(c)
		c.stop(nil)
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { _ = c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				middleware.Logger.Debug("websocket read error", "user_id", c.UserID, "error", err.Error())
			}
			return
		}
	}
}

// WritePump pumps messages from the hub to the websocket connection until
// the client is stopped or a write fails. Closing the connection on exit
// unblocks ReadPump.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
		close(c.finished)
	}()

	for {
		select {
		case <-c.done:
			if c.closeFrame != nil {
				_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.Conn.WriteMessage(websocket.CloseMessage, c.closeFrame)
			}
			return

		case message := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TrySend queues message without blocking. When the buffer is full the
// message is dropped and the client is told so it can re-fetch.
func (c *Client) TrySend(message []byte) {
	select {
	case <-c.done:
		observability.WebSocketBackpressureDrops.WithLabelValues("closed").Inc()
		return
	default:
	}

	select {
	case c.Send <- message:
	default:
		observability.WebSocketBackpressureDrops.WithLabelValues("full").Inc()
		middleware.Logger.Warn("websocket buffer full, dropped message", "user_id", c.UserID)

		select {
		case c.Send <- dropNotice:
		default:
		}
	}
}
