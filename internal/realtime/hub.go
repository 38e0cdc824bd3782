// Package realtime pushes catalog invalidation events to connected
// browsing clients over WebSocket, with Redis pub/sub fanning events out
// across server instances.
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait (seconds) drive the heartbeat.
	PingInterval = 30
	PongWait     = 60

	// EventVideosInvalidated tells clients to drop cached video lists and
	// refetch. Sent after every successful record creation.
	EventVideosInvalidated = "videos.invalidated"
)

// Publisher fans an event out to peer instances.
type Publisher interface {
	PublishCatalogEvent(event string, payload []byte) error
}

// Subscriber receives events published by peer instances.
type Subscriber interface {
	SubscribeCatalog(handler func(event string, payload []byte)) (cancel func(), err error)
}

// Hub maintains the set of connected clients and broadcasts catalog
// events. Local broadcast plus Redis publish keeps horizontally scaled
// instances consistent.
type Hub struct {
	mu        sync.RWMutex
	clients   map[string]*Client
	logger    *zap.Logger
	pub       Publisher
	sub       Subscriber
	cancelSub func()
}

// NewHub creates a hub and, when a subscriber is given, starts listening
// for peer events.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	h := &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
		pub:     pub,
		sub:     sub,
	}
	if sub != nil {
		cancel, err := sub.SubscribeCatalog(func(event string, payload []byte) {
			h.broadcast(event, json.RawMessage(payload))
		})
		if err != nil {
			logger.Warn("catalog subscription unavailable", zap.Error(err))
		} else {
			h.cancelSub = cancel
		}
	}
	return h
}

// Register adds a connected client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client connected", zap.String("client_id", c.ID))
}

// Unregister removes a client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.ID)
	h.mu.Unlock()
	h.logger.Debug("client disconnected", zap.String("client_id", c.ID))
}

// VideosInvalidated announces that cached video lists are stale. With a
// publisher attached the event goes through Redis only, so the subscriber
// callback broadcasts exactly once per instance, this one included;
// without Redis it is delivered to local clients directly.
func (h *Hub) VideosInvalidated() {
	payload, _ := json.Marshal(map[string]int64{"at": time.Now().Unix()})
	if h.pub != nil {
		err := h.pub.PublishCatalogEvent(EventVideosInvalidated, payload)
		if err == nil {
			return
		}
		h.logger.Warn("publish invalidation, falling back to local broadcast", zap.Error(err))
	}
	h.broadcast(EventVideosInvalidated, json.RawMessage(payload))
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops the peer subscription. Clients disconnect when their
// connections close.
func (h *Hub) Close() {
	if h.cancelSub != nil {
		h.cancelSub()
	}
}

func (h *Hub) broadcast(event string, data json.RawMessage) {
	msg := WSMessage{Event: event, Data: data}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}
