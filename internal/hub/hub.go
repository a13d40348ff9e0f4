package hub

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/aniparty/server/internal/config"
	"github.com/aniparty/server/pkg/log"
)

// Hub fans events out to the websocket clients subscribed to each room
// topic. Delivery is best-effort: a client whose send buffer is full is
// dropped rather than applying backpressure.
type Hub struct {
	clients    map[string]*Client            // clientID -> client
	rooms      map[string]map[string]*Client // room code -> clientID -> client
	unregister chan *Client
	broadcast  chan *roomMessage
	mu         sync.RWMutex
	config     config.WebSocketConfig
}

type roomMessage struct {
	RoomCode string
	Message  []byte
	Exclude  string // client ID to exclude
}

func NewHub(cfg config.WebSocketConfig) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *roomMessage, 256),
		config:     cfg,
	}
}

// Run processes registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				for code, members := range h.rooms {
					delete(members, client.ID)
					if len(members) == 0 {
						delete(h.rooms, code)
					}
				}
				delete(h.clients, client.ID)
				client.closeSend()
			}
			h.mu.Unlock()
			l := log.L()
			l.Debug().Str(log.FieldConnID, client.ID).Msg("client unregistered")

		case msg := <-h.broadcast:
			h.mu.RLock()
			if members, ok := h.rooms[msg.RoomCode]; ok {
				for clientID, client := range members {
					if clientID == msg.Exclude {
						continue
					}
					select {
					case client.Send <- msg.Message:
					default:
						go h.removeClient(client)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register makes a client visible to Subscribe and SendTo. The insert is
// synchronous so a subscribe issued right after registration cannot miss
// the client.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()
	l := log.L()
	l.Debug().Str(log.FieldConnID, client.ID).Msg("client registered")
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Subscribe adds a connection to a room topic.
func (h *Hub) Subscribe(connID, roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[connID]
	if !ok {
		return
	}
	if _, ok := h.rooms[roomCode]; !ok {
		h.rooms[roomCode] = make(map[string]*Client)
	}
	h.rooms[roomCode][connID] = client
}

// Unsubscribe removes a connection from a room topic.
func (h *Hub) Unsubscribe(connID, roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[roomCode]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, roomCode)
		}
	}
}

// Publish sends a message to every subscriber of a room topic.
func (h *Hub) Publish(roomCode string, message interface{}) error {
	return h.publish(roomCode, message, "")
}

// PublishExcept sends a message to every subscriber of a room topic
// except the originating connection.
func (h *Hub) PublishExcept(roomCode string, message interface{}, exceptConnID string) error {
	return h.publish(roomCode, message, exceptConnID)
}

// SendTo sends a message to a single connection.
func (h *Hub) SendTo(connID string, message interface{}) error {
	h.mu.RLock()
	client, ok := h.clients[connID]
	h.mu.RUnlock()
	if !ok {
		return nil
	}
	return client.SendMessage(message)
}

func (h *Hub) publish(roomCode string, message interface{}, exclude string) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.broadcast <- &roomMessage{
		RoomCode: roomCode,
		Message:  data,
		Exclude:  exclude,
	}
	return nil
}

func (h *Hub) removeClient(client *Client) {
	h.unregister <- client
}
