package realtime

import (
	"errors"
	"sync"

	"github.com/anonto42/nano-midea/interactions/internal/metrics"
	"github.com/sirupsen/logrus"
)

var (
	ErrNotAuthenticated = errors.New("connection is not authenticated")
	ErrUnknownClient    = errors.New("connection is not registered")
)

// Hub owns the connection table and the room index.
// A room exists only while at least one connection is subscribed to it.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	rooms   map[string]map[string]*Client

	metrics *metrics.Metrics
	logger  logrus.FieldLogger
}

func NewHub(m *metrics.Metrics, logger logrus.FieldLogger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
		metrics: m,
		logger:  logger.WithField("component", "hub"),
	}
}

// Attach authenticates c as userID, registers it and subscribes it to the
// user's personal and messaging rooms in one step.
func (h *Hub) Attach(c *Client, userID uint) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !c.authenticate(userID) {
		return ErrNotAuthenticated
	}
	h.clients[c.id] = c
	h.join(c, PersonalRoom(userID))
	h.join(c, MessagingRoom(userID))
	h.metrics.ActiveConnections.Inc()

	h.logger.WithFields(logrus.Fields{"conn_id": c.id, "user_id": userID}).Debug("connection attached")
	return nil
}

// Join subscribes c to room. Any authenticated connection may join any room.
func (h *Hub) Join(c *Client, room string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.State() != StateAuthenticated {
		return ErrNotAuthenticated
	}
	if _, ok := h.clients[c.id]; !ok {
		return ErrUnknownClient
	}
	h.join(c, room)
	return nil
}

// Leave drops c from room. No live event maps to it; operators and tests use it
// to detach a connection from a room it joined with join_room.
func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leave(c, room)
}

// Unregister removes c from every room and the connection table, then closes
// its outbound queue. Safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; !ok {
		c.Reject()
		return
	}
	for room := range c.rooms {
		h.leave(c, room)
	}
	delete(h.clients, c.id)
	c.Reject()
	close(c.send)
	h.metrics.ActiveConnections.Dec()

	h.logger.WithFields(logrus.Fields{"conn_id": c.id, "user_id": c.userID}).Debug("connection unregistered")
}

// Broadcast queues frame on every connection in room and returns how many
// accepted it. Connections whose queue is full miss the frame.
func (h *Hub) Broadcast(room, event string, frame []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for _, c := range h.rooms[room] {
		if h.offer(c, event, frame) {
			delivered++
		}
	}
	return delivered
}

// SendTo queues frame on a single connection.
func (h *Hub) SendTo(c *Client, event string, frame []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c.id]; !ok {
		return false
	}
	return h.offer(c, event, frame)
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Rooms returns the rooms c is subscribed to.
func (h *Hub) Rooms(c *Client) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(c.rooms))
	for room := range c.rooms {
		out = append(out, room)
	}
	return out
}

// offer must be called with h.mu held.
func (h *Hub) offer(c *Client, event string, frame []byte) bool {
	select {
	case c.send <- frame:
		h.metrics.EventsDelivered.WithLabelValues(event).Inc()
		return true
	default:
		h.metrics.EventsDropped.WithLabelValues("buffer_full").Inc()
		h.logger.WithFields(logrus.Fields{"conn_id": c.id, "event": event}).Warn("outbound queue full, frame dropped")
		return false
	}
}

// join and leave must be called with h.mu write-locked.
func (h *Hub) join(c *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[room] = members
		h.metrics.ActiveRooms.Inc()
	}
	members[c.id] = c
	c.rooms[room] = struct{}{}
}

func (h *Hub) leave(c *Client, room string) {
	delete(c.rooms, room)
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, c.id)
	if len(members) == 0 {
		delete(h.rooms, room)
		h.metrics.ActiveRooms.Dec()
	}
}
