// Package stream fans the debt collection out to connected clients. It
// replaces the hosted database's push listener: every successful mutation
// publishes a full snapshot and every subscriber receives it.
package stream

import (
	"sync"

	"go.uber.org/zap"

	"github.com/haekalr/kasbon/internal/domain/entity"
)

// subscriberBuffer bounds how many snapshots a slow client may lag
// behind before it starts missing intermediate ones.
const subscriberBuffer = 4

// Hub manages snapshot subscribers.
type Hub struct {
	logger *zap.Logger

	mu     sync.Mutex
	nextID int
	subs   map[int]chan []entity.Debt
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger: logger,
		subs:   make(map[int]chan []entity.Debt),
	}
}

// Subscribe registers a subscriber and returns its channel plus an
// unsubscribe handle. Exactly one subscription exists per connected
// client; the handle must be called when the client goes away.
func (h *Hub) Subscribe() (<-chan []entity.Debt, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan []entity.Debt, subscriberBuffer)
	h.subs[id] = ch

	h.logger.Debug("Stream subscriber added", zap.Int("id", id), zap.Int("total", len(h.subs)))

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(ch)
		}
	}
}

// Publish delivers the snapshot to every subscriber. Sends never block:
// a subscriber whose buffer is full misses this snapshot rather than
// stalling the mutation that produced it.
func (h *Hub) Publish(debts []entity.Debt) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subs {
		select {
		case ch <- debts:
		default:
			h.logger.Warn("Stream subscriber lagging, snapshot dropped", zap.Int("id", id))
		}
	}
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
