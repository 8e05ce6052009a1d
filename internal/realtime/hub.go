package realtime

import (
	"encoding/json"
	"sync"
)

// Client is one live dashboard window. The network connection is owned by
// the implementation.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Event announces a change to platform data. Dashboard windows refresh the
// widgets bound to Entity.
type Event struct {
	Type    string `json:"type"`
	Entity  string `json:"entity"`
	ID      string `json:"id,omitempty"`
	UserID  string `json:"userId,omitempty"`
	Version int    `json:"version"`
}

// NewEvent builds the "<entity>_created" style event.
func NewEvent(entity, action, id, userID string) Event {
	return Event{
		Type:    entity + "_" + action,
		Entity:  entity,
		ID:      id,
		UserID:  userID,
		Version: 1,
	}
}

// Hub maintains active user connections and broadcasts events to them.
type Hub struct {
	mu              sync.RWMutex
	userIdToClients map[string]map[Client]struct{}
}

var hubInstance *Hub
var once sync.Once

// GetHub returns a singleton hub instance.
func GetHub() *Hub {
	once.Do(func() {
		hubInstance = NewHub()
	})
	return hubInstance
}

func NewHub() *Hub {
	return &Hub{userIdToClients: make(map[string]map[Client]struct{})}
}

// Register adds a client under a user ID.
func (h *Hub) Register(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.userIdToClients[userID]; !ok {
		h.userIdToClients[userID] = make(map[Client]struct{})
	}
	h.userIdToClients[userID][client] = struct{}{}
}

// Unregister removes a client; if user has no more clients, cleans up map.
func (h *Hub) Unregister(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.userIdToClients[userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.userIdToClients, userID)
		}
	}
}

// Broadcast sends a message to all clients of a user and returns how many
// accepted it.
func (h *Hub) Broadcast(userID string, message []byte) int {
	return deliver(h.snapshot(userID), message)
}

// BroadcastAll sends a message to every connected client.
func (h *Hub) BroadcastAll(message []byte) int {
	return deliver(h.snapshot(""), message)
}

// Publish marshals evt and delivers it to every client, or only to
// evt.UserID's clients when private is set.
func (h *Hub) Publish(evt Event, private bool) (int, error) {
	msg, err := json.Marshal(evt)
	if err != nil {
		return 0, err
	}
	if private {
		return h.Broadcast(evt.UserID, msg), nil
	}
	return h.BroadcastAll(msg), nil
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.userIdToClients {
		n += len(clients)
	}
	return n
}

// snapshot copies the targeted clients so Send runs without the lock.
// An empty userID selects everyone.
func (h *Hub) snapshot(userID string) []Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []Client
	for uid, clients := range h.userIdToClients {
		if userID != "" && uid != userID {
			continue
		}
		for c := range clients {
			out = append(out, c)
		}
	}
	return out
}

func deliver(clients []Client, message []byte) int {
	sent := 0
	for _, c := range clients {
		// a failed write is cleaned up by the client's own handler
		if c.Send(message) {
			sent++
		}
	}
	return sent
}
