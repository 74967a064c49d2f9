package feedws

import (
	"context"
	"log"

	"github.com/bytedance/sonic"
	websocket "github.com/gofiber/contrib/websocket"

	"github.com/DTyss/GymApp-sub000/internal/events"
	"github.com/DTyss/GymApp-sub000/internal/models"
)

const RoleStaff = "staff"

// Hub pushes committed domain events to connected clients. Staff clients see
// every event; members only see events about themselves.
type Hub struct {
	clients    map[models.ID]map[*Client]struct{}
	staff      map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan events.Event
	done       chan struct{}
}

type Client struct {
	hub    *Hub
	conn   conn
	userID models.ID
	role   string
	send   chan []byte
}

type conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[models.ID]map[*Client]struct{}),
		staff:      make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan events.Event, 64),
		done:       make(chan struct{}),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID models.ID, role string) *Client {
	return newClient(hub, conn, userID, role)
}

func newClient(hub *Hub, c conn, userID models.ID, role string) *Client {
	return &Client{
		hub:    hub,
		conn:   c,
		userID: userID,
		role:   role,
		send:   make(chan []byte, 32),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			if client.role == RoleStaff {
				h.staff[client] = struct{}{}
				continue
			}
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userID] = set
			}
			set[client] = struct{}{}
		case client := <-h.unregister:
			h.remove(client)
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

// Register adds client to the feed. It reports false once the hub stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues event for delivery. A full queue drops the event rather than
// stall the request that produced it.
func (h *Hub) Publish(ctx context.Context, event events.Event) error {
	select {
	case h.broadcast <- event:
	case <-ctx.Done():
		return ctx.Err()
	default:
		log.Printf("[feed] queue full, dropping %s", event.Type)
	}
	return nil
}

func (h *Hub) deliver(event events.Event) {
	encoded, err := sonic.Marshal(event)
	if err != nil {
		log.Printf("[feed] encode event: %v", err)
		return
	}

	for client := range h.staff {
		h.push(client, encoded)
	}
	for client := range h.clients[event.UserID] {
		h.push(client, encoded)
	}
}

func (h *Hub) push(client *Client, payload []byte) {
	select {
	case client.send <- payload:
	default:
		h.remove(client)
	}
}

func (h *Hub) remove(client *Client) {
	if client.role == RoleStaff {
		if _, ok := h.staff[client]; ok {
			delete(h.staff, client)
			close(client.send)
		}
		return
	}
	set, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, exists := set[client]; exists {
		delete(set, client)
		close(client.send)
	}
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
}

func (h *Hub) closeAll() {
	for client := range h.staff {
		h.remove(client)
	}
	for _, set := range h.clients {
		for client := range set {
			h.remove(client)
		}
	}
}

// ReadPump drains the connection until the peer goes away. The feed is
// one-way, so incoming frames are ignored.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
