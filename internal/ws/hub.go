// Package ws pushes live table snapshots to websocket clients. Each table has
// one store subscription shared by every client watching it.
package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/store"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 8
)

// Message is one snapshot of a table.
type Message struct {
	Table string           `json:"table"`
	Rows  []map[string]any `json:"rows"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

type topic struct {
	sub     *store.Subscription
	clients map[*client]struct{}
	last    []byte
}

type Hub struct {
	st *store.Store

	mu     sync.Mutex
	topics map[string]*topic
}

func NewHub(st *store.Store) *Hub {
	return &Hub{st: st, topics: make(map[string]*topic)}
}

// Serve streams table snapshots to conn until the client goes away.
// It blocks for the life of the connection.
func (h *Hub) Serve(table string, conn *websocket.Conn) error {
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	if err := h.register(table, c); err != nil {
		conn.Close()
		return err
	}
	log.Debug().Str("table", table).Msg("ws client connected")

	go h.writePump(c)
	h.readPump(c)
	h.unregister(table, c)
	log.Debug().Str("table", table).Msg("ws client disconnected")
	return nil
}

func (h *Hub) register(table string, c *client) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	t, ok := h.topics[table]
	if ok {
		t.clients[c] = struct{}{}
		if t.last != nil {
			c.send <- t.last
		}
		return nil
	}

	t = &topic{clients: map[*client]struct{}{c: {}}}
	h.topics[table] = t
	sub, err := h.st.ObserveRaw(table, func(rows []map[string]any) { h.broadcast(table, rows) })
	if err != nil {
		delete(h.topics, table)
		return err
	}
	t.sub = sub
	return nil
}

func (h *Hub) unregister(table string, c *client) {
	h.mu.Lock()
	t, ok := h.topics[table]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := t.clients[c]; ok {
		delete(t.clients, c)
		close(c.send)
	}
	var sub *store.Subscription
	if len(t.clients) == 0 {
		delete(h.topics, table)
		sub = t.sub
	}
	h.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}

// broadcast runs on the store's dispatcher goroutine, so it never blocks on
// a client: one whose buffer is full is dropped.
func (h *Hub) broadcast(table string, rows []map[string]any) {
	data, err := json.Marshal(Message{Table: table, Rows: rows})
	if err != nil {
		log.Error().Err(err).Str("table", table).Msg("ws encode snapshot")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	t, ok := h.topics[table]
	if !ok {
		return
	}
	t.last = data
	for c := range t.clients {
		select {
		case c.send <- data:
		default:
			log.Warn().Str("table", table).Msg("ws client too slow, dropping")
			delete(t.clients, c)
			close(c.send)
		}
	}
}

// Clients reports how many connections watch table.
func (h *Hub) Clients(table string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if t, ok := h.topics[table]; ok {
		return len(t.clients)
	}
	return 0
}

// readPump only handles control frames; the feed is one-way.
func (h *Hub) readPump(c *client) {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
