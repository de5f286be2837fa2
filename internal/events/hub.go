// Package events pushes ledger changes to connected admin dashboards over
// websockets so review queues update without polling.
package events

import (
	"encoding/json"
	"sync"
	"time"

	"rtr_earnings/internal/logger"
)

// Event names published by the services.
const (
	RequestCreated   = "request_created"
	RequestProcessed = "request_processed"
	BalanceChanged   = "balance_changed"
	ProfitAccrued    = "profit_accrued"
)

type Event struct {
	Type      string         `json:"type"`
	UserID    int64          `json:"user_id,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Publish fans an event out to every connected client. Slow clients are
// dropped rather than blocking the publisher.
func (h *Hub) Publish(eventType string, userID int64, payload map[string]any) {
	evt := Event{
		Type:      eventType,
		UserID:    userID,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}

	data, err := json.Marshal(evt)
	if err != nil {
		logger.Error("failed to marshal event", "error", err, "type", eventType)
		return
	}

	h.mu.RLock()
	var stale []*Client
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			stale = append(stale, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stale {
		h.unregister(c)
	}
}

// ClientCount returns the number of connected dashboards.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
