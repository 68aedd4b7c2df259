// Package chat implements the live chat shown next to the stream.  A single
// in-process hub fans messages out to every connected WebSocket client and
// mirrors the most recent messages into a capped Redis list so late joiners
// can backfill history.
package chat

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

// Message is one chat line as sent over the wire and stored in history.
type Message struct {
	ID     string    `json:"id"`
	Author string    `json:"author"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sent_at"`
}

const (
	historyKey = "chat:history"
	historyCap = 100

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second // must be less than pongWait

	maxMessageBytes = 1024
)

// Hub tracks connected clients and broadcasts messages.  All client map
// mutation happens on the run loop goroutine; handlers only send on the
// channels.
type Hub struct {
	rdb *redis.Client // may be nil; history is then disabled

	register   chan *client
	unregister chan *client
	broadcast  chan Message

	mu      sync.RWMutex
	clients map[*client]bool
}

type client struct {
	hub    *Hub
	conn   *websocket.Conn
	author string
	send   chan []byte
}

func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		rdb:        rdb,
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan Message, 64),
		clients:    make(map[*client]bool),
	}
}

// Run processes registration and broadcast events until ctx is cancelled.
// Start it once from main in its own goroutine.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			payload, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			h.appendHistory(msg)
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- payload:
				default:
					// Slow consumer; drop it rather than stall the room.
					go func(c *client) { h.unregister <- c }(c)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Publish queues a message for broadcast.  Used by the HTTP layer for system
// announcements (e.g. "stream started").
func (h *Hub) Publish(msg Message) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}
	select {
	case h.broadcast <- msg:
	default:
		log.Printf("chat: broadcast queue full, dropping message from %s", msg.Author)
	}
}

// History returns up to limit recent messages, oldest first.  Returns an
// empty slice when Redis is unavailable.
func (h *Hub) History(ctx context.Context, limit int) []Message {
	if h.rdb == nil {
		return []Message{}
	}
	if limit <= 0 || limit > historyCap {
		limit = historyCap
	}
	raw, err := h.rdb.LRange(ctx, historyKey, 0, int64(limit-1)).Result()
	if err != nil {
		return []Message{}
	}
	// Stored newest-first; reverse for chronological display.
	msgs := make([]Message, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var m Message
		if err := json.Unmarshal([]byte(raw[i]), &m); err == nil {
			msgs = append(msgs, m)
		}
	}
	return msgs
}

func (h *Hub) appendHistory(msg Message) {
	if h.rdb == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	pipe := h.rdb.Pipeline()
	pipe.LPush(ctx, historyKey, payload)
	pipe.LTrim(ctx, historyKey, 0, historyCap-1)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("chat: history append failed: %v", err)
	}
}

// ClientCount reports the number of connected chat clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve attaches an upgraded WebSocket connection to the hub under the given
// author name and blocks until the connection closes.
func (h *Hub) Serve(conn *websocket.Conn, author string) {
	c := &client{hub: h, conn: conn, author: author, send: make(chan []byte, 16)}
	h.register <- c

	go c.writeLoop()
	c.readLoop()
}

// readLoop consumes inbound frames.  Each text frame body becomes one chat
// message attributed to the connection's author.
func (c *client) readLoop() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var in struct {
			Body string `json:"body"`
		}
		if err := c.conn.ReadJSON(&in); err != nil {
			return
		}
		if in.Body == "" {
			continue
		}
		c.hub.Publish(Message{Author: c.author, Body: in.Body})
	}
}

func (c *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
