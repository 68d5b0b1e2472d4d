package ws

import (
	"context"
	"encoding/json"
	"sync"

	"go-pos-ws/internal/metrics"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one realtime subscription, tagged with the member it belongs to.
type Client struct {
	Conn        Conn
	WorkspaceID uuid.UUID
	UserID      uuid.UUID
}

type op struct {
	workspaceID uuid.UUID
	payload     []byte
	disconnect  uuid.UUID
}

// Hub fans events out to the clients of one workspace. Publish and
// DisconnectUser go through a single queue, so a client always receives the
// events published before it is dropped.
type Hub struct {
	Clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	ops        chan op
	mutex      sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		ops:        make(chan op, 256),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for c := range h.Clients {
				c.Conn.Close()
				delete(h.Clients, c)
			}
			h.mutex.Unlock()
			metrics.RealtimeClients.Set(0)
			return

		case c := <-h.Register:
			h.mutex.Lock()
			h.Clients[c] = true
			n := len(h.Clients)
			h.mutex.Unlock()
			metrics.RealtimeClients.Set(float64(n))
			log.Debug().Str("user_id", c.UserID.String()).Msg("realtime client connected")

		case c := <-h.Unregister:
			h.mutex.Lock()
			h.drop(c)
			n := len(h.Clients)
			h.mutex.Unlock()
			metrics.RealtimeClients.Set(float64(n))

		case o := <-h.ops:
			h.mutex.Lock()
			if o.payload != nil {
				for c := range h.Clients {
					if c.WorkspaceID != o.workspaceID {
						continue
					}
					if err := c.Conn.WriteMessage(websocket.TextMessage, o.payload); err != nil {
						h.drop(c)
					}
				}
			} else {
				for c := range h.Clients {
					if c.UserID == o.disconnect {
						h.drop(c)
					}
				}
			}
			n := len(h.Clients)
			h.mutex.Unlock()
			metrics.RealtimeClients.Set(float64(n))
		}
	}
}

// drop must be called with mutex held.
func (h *Hub) drop(c *Client) {
	if _, ok := h.Clients[c]; ok {
		delete(h.Clients, c)
		c.Conn.Close()
	}
}

// Publish queues event for every client of workspaceID.
func (h *Hub) Publish(workspaceID uuid.UUID, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("type", event.Type).Msg("realtime: marshal event")
		return
	}
	h.ops <- op{workspaceID: workspaceID, payload: payload}
}

// DisconnectUser closes every socket of userID once earlier events are flushed.
func (h *Hub) DisconnectUser(userID uuid.UUID) {
	h.ops <- op{disconnect: userID}
}

// Count returns the number of registered clients.
func (h *Hub) Count() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients)
}
