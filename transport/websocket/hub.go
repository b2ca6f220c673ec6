package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/marsrover/mission/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// DefaultChannel receives every report.
	DefaultChannel = "missions"

	// EventReport is the event name of report messages.
	EventReport = "mission_report"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message represents a WebSocket message
type Message struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Report  *service.Report `json:"report,omitempty"`
	Data    interface{}     `json:"data,omitempty"`
}

// Client represents a WebSocket client
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	channel string
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by channel
	channels map[string]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	count      chan chan int

	// done is closed when Run returns
	done chan struct{}
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		channels:   make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan chan int),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop and returns when ctx is done, closing
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case reply := <-h.count:
			n := 0
			for _, clients := range h.channels {
				n += len(clients)
			}
			reply <- n

		case <-ctx.Done():
			for _, clients := range h.channels {
				for client := range clients {
					h.unregisterClient(client)
				}
			}
			return
		}
	}
}

// ServeWS upgrades the request and subscribes the connection to channel.
// An empty channel subscribes to DefaultChannel.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, channel string) {
	if channel == "" {
		channel = DefaultChannel
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 256),
		channel: channel,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// BroadcastReport sends report to every client subscribed to channel
func (h *Hub) BroadcastReport(channel string, report *service.Report) {
	h.send(&Message{
		Channel: channel,
		Event:   EventReport,
		Report:  report,
	})
}

// BroadcastEvent sends a custom event to every client subscribed to channel
func (h *Hub) BroadcastEvent(channel string, event string, data interface{}) {
	h.send(&Message{
		Channel: channel,
		Event:   event,
		Data:    data,
	})
}

// send queues message for the event loop. Messages are dropped once the
// hub has stopped.
func (h *Hub) send(message *Message) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients, or 0 once the hub
// has stopped.
func (h *Hub) ClientCount() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

// registerClient adds a client to its channel
func (h *Hub) registerClient(client *Client) {
	if h.channels[client.channel] == nil {
		h.channels[client.channel] = make(map[*Client]bool)
	}
	h.channels[client.channel][client] = true

	log.Printf("Client registered for channel %s (total clients: %d)",
		client.channel, len(h.channels[client.channel]))
}

// unregisterClient removes a client from its channel
func (h *Hub) unregisterClient(client *Client) {
	if clients, ok := h.channels[client.channel]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			if len(clients) == 0 {
				delete(h.channels, client.channel)
			}

			log.Printf("Client unregistered from channel %s (remaining clients: %d)",
				client.channel, len(clients))
		}
	}
}

// broadcastMessage sends a message to all clients of its channel
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal broadcast message: %v", err)
		return
	}

	if clients, ok := h.channels[message.Channel]; ok {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				// Client's send channel is full
				h.unregisterClient(client)
			}
		}
	}
}

// readPump keeps the connection alive and detects disconnects. Incoming
// messages are discarded.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
