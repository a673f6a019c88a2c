package realtime

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/appforge/backend/internal/infrastructure/config"
	"github.com/appforge/backend/internal/infrastructure/ratelimit"
	"go.uber.org/zap"
)

// ErrRoomFull is returned when a room reached its member limit
var ErrRoomFull = errors.New("realtime: room is full")

// ErrHubClosed is returned after Close
var ErrHubClosed = errors.New("realtime: hub closed")

// Observer is told the number of rooms and clients after every change
type Observer func(rooms, clients int)

// Hub tracks rooms and relays messages between their members.
// All sends to a client channel and its close happen under mu.
type Hub struct {
	mu      sync.Mutex
	rooms   map[string]map[string]*Client
	clients int
	closed  bool

	cfg      config.CollabConfig
	limiter  *ratelimit.TokenBucket
	observer Observer
	now      func() time.Time
	logger   *zap.Logger
}

// HubOption configures a Hub
type HubOption func(*Hub)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) HubOption {
	return func(h *Hub) {
		h.logger = l
	}
}

// WithObserver installs a size observer, typically a metrics gauge
func WithObserver(o Observer) HubOption {
	return func(h *Hub) {
		h.observer = o
	}
}

// NewHub creates a hub with the given limits
func NewHub(cfg config.CollabConfig, opts ...HubOption) *Hub {
	if cfg.MaxRoomMembers <= 0 {
		cfg.MaxRoomMembers = 20
	}
	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = 64
	}
	if cfg.MessagesPerSec <= 0 {
		cfg.MessagesPerSec = 20
	}
	if cfg.MessageBurst <= 0 {
		cfg.MessageBurst = 40
	}
	h := &Hub{
		rooms:   make(map[string]map[string]*Client),
		cfg:     cfg,
		limiter: ratelimit.NewTokenBucket(cfg.MessagesPerSec, cfg.MessageBurst),
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// join adds c to its room, sends it the welcome and announces it to the others
func (h *Hub) join(c *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHubClosed
	}
	members := h.rooms[c.room]
	if len(members) >= h.cfg.MaxRoomMembers {
		return ErrRoomFull
	}
	if members == nil {
		members = make(map[string]*Client)
		h.rooms[c.room] = members
	}
	members[c.id] = c
	h.clients++

	now := h.now().UTC()
	h.sendLocked(c, Outbound{
		Type:     TypeWelcome,
		Room:     c.room,
		ClientID: c.id,
		Name:     c.name,
		Members:  snapshot(members),
		SentAt:   now,
	})
	dropped := h.broadcastLocked(c, Outbound{
		Type:     TypePresence,
		Room:     c.room,
		ClientID: c.id,
		Name:     c.name,
		Action:   ActionJoin,
		SentAt:   now,
	})
	h.observeLocked()
	h.logger.Debug("Client joined room",
		zap.String("room", c.room),
		zap.String("client_id", c.id),
		zap.Int("members", len(members)))

	h.dropLocked(dropped)
	return nil
}

// leave removes c and announces it. Calling it twice is harmless.
func (h *Hub) leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// relay stamps msg with the sender and delivers it to every other member
func (h *Hub) relay(from *Client, in Inbound) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[from.room][from.id]; !ok {
		return
	}
	dropped := h.broadcastLocked(from, Outbound{
		Type:     in.Type,
		Room:     from.room,
		ClientID: from.id,
		Name:     from.name,
		Payload:  in.Payload,
		SentAt:   h.now().UTC(),
	})
	h.dropLocked(dropped)
}

// reply sends an error message to c only
func (h *Hub) reply(c *Client, msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[c.room][c.id]; !ok {
		return
	}
	if !h.sendLocked(c, Outbound{Type: TypeError, Room: c.room, Error: msg, SentAt: h.now().UTC()}) {
		h.dropLocked([]*Client{c})
	}
}

func (h *Hub) removeLocked(c *Client) {
	members, ok := h.rooms[c.room]
	if !ok {
		return
	}
	if _, ok := members[c.id]; !ok {
		return
	}
	delete(members, c.id)
	h.clients--
	close(c.send)
	h.limiter.Forget(c.id)

	if len(members) == 0 {
		delete(h.rooms, c.room)
	} else {
		dropped := h.broadcastLocked(c, Outbound{
			Type:     TypePresence,
			Room:     c.room,
			ClientID: c.id,
			Name:     c.name,
			Action:   ActionLeave,
			SentAt:   h.now().UTC(),
		})
		h.dropLocked(dropped)
	}
	h.observeLocked()
	h.logger.Debug("Client left room", zap.String("room", c.room), zap.String("client_id", c.id))
}

func (h *Hub) dropLocked(clients []*Client) {
	for _, c := range clients {
		h.logger.Warn("Dropping slow collaboration client",
			zap.String("room", c.room),
			zap.String("client_id", c.id))
		h.removeLocked(c)
	}
}

// broadcastLocked returns the members whose buffer was full
func (h *Hub) broadcastLocked(from *Client, msg Outbound) []*Client {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode collaboration message", zap.Error(err))
		return nil
	}
	var slow []*Client
	for id, member := range h.rooms[from.room] {
		if id == from.id {
			continue
		}
		select {
		case member.send <- data:
		default:
			slow = append(slow, member)
		}
	}
	return slow
}

func (h *Hub) sendLocked(c *Client, msg Outbound) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode collaboration message", zap.Error(err))
		return true
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (h *Hub) observeLocked() {
	if h.observer != nil {
		h.observer(len(h.rooms), h.clients)
	}
}

// Members returns the members of room sorted by join time
func (h *Hub) Members(room string) []Member {
	h.mu.Lock()
	defer h.mu.Unlock()
	return snapshot(h.rooms[room])
}

// Stats returns the number of rooms and connected clients
func (h *Hub) Stats() (rooms, clients int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms), h.clients
}

// Close disconnects every client and rejects new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for room, members := range h.rooms {
		for id, c := range members {
			delete(members, id)
			close(c.send)
			h.limiter.Forget(id)
		}
		delete(h.rooms, room)
	}
	h.clients = 0
	h.observeLocked()
}

func snapshot(members map[string]*Client) []Member {
	out := make([]Member, 0, len(members))
	for _, c := range members {
		out = append(out, Member{ClientID: c.id, Name: c.name, JoinedAt: c.joinedAt})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].ClientID < out[j].ClientID
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out
}
