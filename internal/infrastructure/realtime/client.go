package realtime

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client is one websocket connection in a room
type Client struct {
	id       string
	name     string
	room     string
	joinedAt time.Time
	conn     *websocket.Conn
	send     chan []byte
	hub      *Hub
}

// ID returns the hub-assigned client id
func (c *Client) ID() string {
	return c.id
}

// NewUpgrader accepts websocket handshakes from the allowed origins.
// "*" allows any origin; requests without an Origin header are accepted.
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}
	return &websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowAll {
				return true
			}
			_, ok := allowed[origin]
			return ok
		},
	}
}

// Serve joins conn to room and relays its messages until it disconnects.
// It blocks for the lifetime of the connection and closes conn.
func (h *Hub) Serve(conn *websocket.Conn, room, name string) {
	c := &Client{
		id:       uuid.New().String(),
		name:     name,
		room:     room,
		joinedAt: h.now().UTC(),
		conn:     conn,
		send:     make(chan []byte, h.cfg.SendBufferSize),
		hub:      h,
	}
	if c.name == "" {
		c.name = "guest-" + c.id[:8]
	}

	if err := h.join(c); err != nil {
		h.reject(conn, room, err)
		return
	}

	done := make(chan struct{})
	go func() {
		c.writePump()
		close(done)
	}()
	c.readPump()
	h.leave(c)
	<-done
}

func (h *Hub) reject(conn *websocket.Conn, room string, err error) {
	msg := "collaboration is unavailable"
	code := websocket.CloseGoingAway
	if errors.Is(err, ErrRoomFull) {
		msg = "room is full"
		code = websocket.CloseTryAgainLater
	}
	h.logger.Info("Collaboration join rejected", zap.String("room", room), zap.Error(err))

	deadline := time.Now().Add(h.writeWait())
	_ = conn.SetWriteDeadline(deadline)
	_ = conn.WriteJSON(Outbound{Type: TypeError, Room: room, Error: msg, SentAt: h.now().UTC()})
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, msg), deadline)
	_ = conn.Close()
}

func (h *Hub) writeWait() time.Duration {
	if h.cfg.WriteWaitTimeout > 0 {
		return h.cfg.WriteWaitTimeout
	}
	return 10 * time.Second
}

func (h *Hub) pongWait() time.Duration {
	if h.cfg.PingInterval > 0 {
		return h.cfg.PingInterval * 2
	}
	return 60 * time.Second
}

func (c *Client) readPump() {
	if c.hub.cfg.MaxMessageBytes > 0 {
		c.conn.SetReadLimit(c.hub.cfg.MaxMessageBytes)
	}
	pongWait := c.hub.pongWait()
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("Collaboration client read failed",
					zap.String("client_id", c.id),
					zap.Error(err))
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		if !c.hub.limiter.Allow(c.id) {
			c.hub.reply(c, "rate limited")
			continue
		}

		var in Inbound
		if err := json.Unmarshal(data, &in); err != nil {
			c.hub.reply(c, "invalid message")
			continue
		}
		if !relayable(in.Type) {
			c.hub.reply(c, "unknown message type")
			continue
		}
		c.hub.relay(c, in)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.pingInterval())
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	writeWait := c.hub.writeWait()
	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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

func (h *Hub) pingInterval() time.Duration {
	if h.cfg.PingInterval > 0 {
		return h.cfg.PingInterval
	}
	return 30 * time.Second
}
