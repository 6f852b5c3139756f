// Package events fans game events out to live subscribers.
package events

import (
	"sync"
	"time"

	"foodgame/internal/models"

	"github.com/sirupsen/logrus"
)

// Event types
const (
	OrderCreated = "order_created"
	OrderServed  = "order_served"
	OrderFailed  = "order_failed"
)

// DefaultBuffer is the per-subscriber queue length
const DefaultBuffer = 64

// Event is a single notification for one game
type Event struct {
	Type      string           `json:"type"`
	GameID    string           `json:"game_id"`
	OrderID   string           `json:"order_id,omitempty"`
	Payload   interface{}      `json:"payload,omitempty"`
	Timestamp models.Timestamp `json:"timestamp"`
}

// NewEvent builds an event stamped at the given time
func NewEvent(eventType, gameID, orderID string, payload interface{}, at time.Time) Event {
	return Event{
		Type:      eventType,
		GameID:    gameID,
		OrderID:   orderID,
		Payload:   payload,
		Timestamp: models.NewTimestamp(at),
	}
}

// Subscription receives the events of one game until it is cancelled
type Subscription struct {
	GameID string
	C      <-chan Event

	ch chan Event
}

// Hub routes events to the subscribers of each game
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{}
	buffer int
	log    logrus.FieldLogger
}

// NewHub creates an empty hub
func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		subs:   make(map[string]map[*Subscription]struct{}),
		buffer: DefaultBuffer,
		log:    log,
	}
}

// Subscribe registers a new subscriber for gameID
func (h *Hub) Subscribe(gameID string) *Subscription {
	ch := make(chan Event, h.buffer)
	sub := &Subscription{GameID: gameID, C: ch, ch: ch}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[gameID] == nil {
		h.subs[gameID] = make(map[*Subscription]struct{})
	}
	h.subs[gameID][sub] = struct{}{}
	return sub
}

// Unsubscribe removes the subscriber and closes its channel. It is safe to call twice.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.subs[sub.GameID]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	close(sub.ch)
	if len(subs) == 0 {
		delete(h.subs, sub.GameID)
	}
}

// Subscribers returns the number of subscribers for gameID
func (h *Hub) Subscribers(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[gameID])
}

// Publish delivers ev to every subscriber of its game. Slow subscribers miss events.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[ev.GameID] {
		select {
		case sub.ch <- ev:
		default:
			h.log.WithFields(logrus.Fields{
				"game_id": ev.GameID,
				"event":   ev.Type,
			}).Warn("event buffer full, dropping event")
		}
	}
}
