package notifications

import (
	"context"
	"errors"
	"sync"

	"murmur/internal/middleware"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections per user
	maxConnsPerUser = 12
	// Max total connections
	maxTotalConns = 10000
)

var (
	ErrServerConnLimit = errors.New("server connection limit reached")
	ErrUserConnLimit   = errors.New("user connection limit reached")
)

// Hub maps userID -> set of websocket clients on this instance.
type Hub struct {
	mu         sync.RWMutex
	conns      map[uint]map[*Client]struct{}
	totalConns int
	closed     bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		conns: make(map[uint]map[*Client]struct{}),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "notification hub" }

// Register a connection for a given userID. Returns the Client or an error
// if limits are exceeded or the hub is shutting down.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || h.totalConns >= maxTotalConns {
		return nil, ErrServerConnLimit
	}

	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		return nil, ErrUserConnLimit
	}

	client := NewClient(h, conn, userID)
	m[client] = struct{}{}
	h.totalConns++
	middleware.ActiveWebSockets.Inc()

	return client, nil
}

// UnregisterClient removes client; calling it twice is harmless.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.UserID]
	if !ok {
		return
	}
	if _, exists := m[client]; exists {
		delete(m, client)
		h.totalConns--
		middleware.ActiveWebSockets.Dec()
	}
	if len(m) == 0 {
		delete(h.conns, client.UserID)
	}
}

// Broadcast sends message to all connections for userID
func (h *Hub) Broadcast(userID uint, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.conns[userID]; ok {
		data := []byte(message)
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// BroadcastAll sends message to every connected websocket client.
func (h *Hub) BroadcastAll(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for _, clients := range h.conns {
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// IsOnline reports whether userID has a connection on this instance.
func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID]) > 0
}

// ConnectionCount returns the number of registered clients.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalConns
}

// StartWiring subscribes the hub to the notifier's channels so events
// published on any instance reach local connections.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, func(channel, payload string) {
		if channel == broadcastChannel {
			h.BroadcastAll(payload)
			return
		}
		userID, ok := parseUserChannel(channel)
		if !ok {
			middleware.Logger.Warn("invalid notification channel", "channel", channel)
			return
		}
		h.Broadcast(userID, payload)
	})
}

// Shutdown asks every client to send a going-away close frame and rejects
// new registrations. The write pumps perform the actual close.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for _, userConns := range h.conns {
		for client := range userConns {
			client.Close(websocket.CloseGoingAway, "Server shutting down")
		}
	}
	middleware.ActiveWebSockets.Sub(float64(h.totalConns))
	h.conns = make(map[uint]map[*Client]struct{})
	h.totalConns = 0

	return nil
}
