// Package live pushes tally changes to admin dashboards over websockets.
package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Message types.
const (
	TypeTallyUpdate    = "tally.update"
	TypeReactionUpdate = "reaction.update"
	TypeBallotsReset   = "ballots.reset"
	TypeResultsToggled = "results.toggled"
)

// Message is one event sent to every client watching a contest year.
type Message struct {
	Type      string          `json:"type"`
	Year      int             `json:"year"`
	ImageID   string          `json:"imageId,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Hub fans messages out to clients grouped by contest year.
type Hub struct {
	clients    map[int]map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	now        func() time.Time
}

// NewHub creates a Hub. Call Run to start delivery.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int]map[*Client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		now:        time.Now,
	}
}

// Run delivers messages until ctx is cancelled. It must be called once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for year, clients := range h.clients {
				for c := range clients {
					close(c.send)
				}
				delete(h.clients, year)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			if h.clients[c.year] == nil {
				h.clients[c.year] = make(map[*Client]bool)
			}
			h.clients[c.year][c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			h.drop(c)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			payload, err := json.Marshal(msg)
			if err != nil {
				slog.Error("live_event", "event", "marshal_failed", "error", err)
				continue
			}
			h.mu.Lock()
			for c := range h.clients[msg.Year] {
				select {
				case c.send <- payload:
				default:
					h.drop(c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop removes c and closes its send channel. Caller holds mu.
func (h *Hub) drop(c *Client) {
	clients, ok := h.clients[c.year]
	if !ok || !clients[c] {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.clients, c.year)
	}
}

// Publish queues msg without blocking. A full queue drops the message.
func (h *Hub) Publish(msg Message) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = h.now()
	}
	select {
	case h.broadcast <- msg:
	default:
		slog.Warn("live_event", "event", "queue_full", "type", msg.Type, "year", msg.Year)
	}
}

func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ClientCount returns the number of clients watching year.
func (h *Hub) ClientCount(year int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[year])
}
