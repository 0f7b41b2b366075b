package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// Event types pushed to connected clients
const (
	EventMoveAssigned          = "move_assigned"
	EventUrgentMoveInserted    = "urgent_move_inserted"
	EventRelocationPlanUpdated = "relocation_plan_updated"
	EventBulkMoveCompleted     = "bulk_move_completed"
)

// Event is the envelope every server push uses
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub maintains active WebSocket connections and broadcasts messages
type Hub struct {
	// Registered clients (userID -> Client)
	clients map[string]*Client

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client

	// closed once Run returns; sends after that are dropped
	done chan struct{}

	mu sync.RWMutex
}

// Message represents a message to broadcast to a specific user
type Message struct {
	UserID string
	Data   interface{}
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop. It returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				close(client.send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[client.UserID]; ok && old != client {
				close(old.send)
			}
			h.clients[client.UserID] = client
			total := len(h.clients)
			h.mu.Unlock()
			log.Info().Str("user_id", client.UserID).Str("role", client.UserRole).Int("clients", total).
				Msg("✅ [WEBSOCKET] Client CONNECTED")

		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.UserID]; ok && current == client {
				delete(h.clients, client.UserID)
				close(client.send)
				log.Info().Str("user_id", client.UserID).Str("role", client.UserRole).Int("clients", len(h.clients)).
					Msg("🔴 [WEBSOCKET] Client DISCONNECTED")
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

func (h *Hub) deliver(message *Message) {
	data, err := json.Marshal(message.Data)
	if err != nil {
		log.Error().Err(err).Msg("❌ Failed to marshal message")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[message.UserID]
	if !ok {
		return
	}
	select {
	case client.send <- data:
	default:
		// Client buffer full, disconnect
		close(client.send)
		delete(h.clients, client.UserID)
		log.Warn().Str("user_id", message.UserID).Msg("⚠️ Client buffer full, disconnecting")
	}
}

// BroadcastToUser sends a message to a specific user
func (h *Hub) BroadcastToUser(userID string, data interface{}) {
	select {
	case h.broadcast <- &Message{UserID: userID, Data: data}:
	case <-h.done:
		log.Debug().Str("user_id", userID).Msg("📭 Hub stopped, dropping message")
	}
}

// BroadcastToRole sends a message to all users with a specific role
func (h *Hub) BroadcastToRole(role string, data interface{}) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("❌ Failed to marshal broadcast message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for _, client := range h.clients {
		if client.UserRole != role {
			continue
		}
		select {
		case client.send <- dataBytes:
			sent++
		default:
			log.Warn().Str("user_id", client.UserID).Msg("⚠️ Client buffer full, skipping")
		}
	}
	log.Debug().Str("role", role).Int("sent", sent).Msg("📤 Broadcast to role")
}

// Notify sends a typed event to one user
func (h *Hub) Notify(userID, eventType string, data interface{}) {
	h.BroadcastToUser(userID, Event{Type: eventType, Data: data})
}

// NotifyRole sends a typed event to every connected user with the role
func (h *Hub) NotifyRole(role, eventType string, data interface{}) {
	h.BroadcastToRole(role, Event{Type: eventType, Data: data})
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// IsUserConnected checks if a user is currently connected
func (h *Hub) IsUserConnected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}
