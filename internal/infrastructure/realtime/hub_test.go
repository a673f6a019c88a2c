package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/appforge/backend/internal/infrastructure/config"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, cfg config.CollabConfig) (*Hub, string) {
	t.Helper()
	hub := NewHub(cfg)
	upgrader := NewUpgrader([]string{"https://app.example.com"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(conn, strings.TrimPrefix(r.URL.Path, "/"), r.URL.Query().Get("name"))
	}))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Outbound {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Outbound
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHub_JoinRelayLeave(t *testing.T) {
	hub, base := newTestServer(t, config.CollabConfig{})

	alice := dial(t, base+"/room-1?name=alice")
	welcome := read(t, alice)
	assert.Equal(t, TypeWelcome, welcome.Type)
	assert.Equal(t, "room-1", welcome.Room)
	require.Len(t, welcome.Members, 1)
	aliceID := welcome.ClientID

	bob := dial(t, base+"/room-1?name=bob")
	bobWelcome := read(t, bob)
	assert.Len(t, bobWelcome.Members, 2)

	joined := read(t, alice)
	assert.Equal(t, TypePresence, joined.Type)
	assert.Equal(t, ActionJoin, joined.Action)
	assert.Equal(t, "bob", joined.Name)

	require.NoError(t, alice.WriteJSON(Inbound{Type: TypeEdit, Payload: []byte(`{"pos":3,"text":"x"}`)}))
	edit := read(t, bob)
	assert.Equal(t, TypeEdit, edit.Type)
	assert.Equal(t, aliceID, edit.ClientID)
	assert.Equal(t, "alice", edit.Name)
	assert.JSONEq(t, `{"pos":3,"text":"x"}`, string(edit.Payload))
	assert.False(t, edit.SentAt.IsZero())

	rooms, clients := hub.Stats()
	assert.Equal(t, 1, rooms)
	assert.Equal(t, 2, clients)

	require.NoError(t, bob.Close())
	left := read(t, alice)
	assert.Equal(t, TypePresence, left.Type)
	assert.Equal(t, ActionLeave, left.Action)
	assert.Len(t, hub.Members("room-1"), 1)

	require.NoError(t, alice.Close())
	assert.Eventually(t, func() bool {
		rooms, _ := hub.Stats()
		return rooms == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHub_RoomsAreIsolated(t *testing.T) {
	_, base := newTestServer(t, config.CollabConfig{})

	a := dial(t, base+"/a")
	read(t, a)
	b := dial(t, base+"/b")
	read(t, b)

	require.NoError(t, a.WriteJSON(Inbound{Type: TypeChat, Payload: []byte(`"hi"`)}))
	require.NoError(t, b.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := b.ReadMessage()
	assert.Error(t, err)
}

func TestHub_InvalidMessages(t *testing.T) {
	_, base := newTestServer(t, config.CollabConfig{})
	c := dial(t, base+"/r")
	read(t, c)

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("not json")))
	assert.Equal(t, "invalid message", read(t, c).Error)

	require.NoError(t, c.WriteJSON(Inbound{Type: TypeWelcome}))
	assert.Equal(t, "unknown message type", read(t, c).Error)
}

func TestHub_RoomFull(t *testing.T) {
	_, base := newTestServer(t, config.CollabConfig{MaxRoomMembers: 1})
	first := dial(t, base+"/r")
	read(t, first)

	second := dial(t, base+"/r")
	msg := read(t, second)
	assert.Equal(t, TypeError, msg.Type)
	assert.Equal(t, "room is full", msg.Error)

	require.NoError(t, second.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := second.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseTryAgainLater), "got %v", err)
}

func TestHub_RateLimit(t *testing.T) {
	_, base := newTestServer(t, config.CollabConfig{MessagesPerSec: 0.001, MessageBurst: 1})
	a := dial(t, base+"/r")
	read(t, a)
	b := dial(t, base+"/r")
	read(t, b)
	read(t, a)

	require.NoError(t, a.WriteJSON(Inbound{Type: TypeCursor}))
	require.NoError(t, a.WriteJSON(Inbound{Type: TypeCursor}))

	assert.Equal(t, TypeCursor, read(t, b).Type)
	assert.Equal(t, "rate limited", read(t, a).Error)
}

func TestUpgrader_CheckOrigin(t *testing.T) {
	u := NewUpgrader([]string{"https://app.example.com/"})
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, u.CheckOrigin(req))

	req.Header.Set("Origin", "https://app.example.com")
	assert.True(t, u.CheckOrigin(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, u.CheckOrigin(req))

	assert.True(t, NewUpgrader([]string{"*"}).CheckOrigin(req))
}

func TestHub_SlowClientDropped(t *testing.T) {
	hub := NewHub(config.CollabConfig{SendBufferSize: 1})
	fast := &Client{id: "fast", room: "r", send: make(chan []byte, 16)}
	slow := &Client{id: "slow", room: "r", send: make(chan []byte, 1)}

	require.NoError(t, hub.join(fast))
	require.NoError(t, hub.join(slow))
	// slow holds its welcome; the next relay overflows its buffer
	hub.relay(fast, Inbound{Type: TypeEdit})

	_, clients := hub.Stats()
	assert.Equal(t, 1, clients)
	_, open := <-drain(slow.send)
	assert.False(t, open)
}

func TestHub_Observer(t *testing.T) {
	var rooms, clients int
	hub := NewHub(config.CollabConfig{}, WithObserver(func(r, c int) { rooms, clients = r, c }))
	c := &Client{id: "c1", room: "r", send: make(chan []byte, 4)}

	require.NoError(t, hub.join(c))
	assert.Equal(t, 1, rooms)
	assert.Equal(t, 1, clients)

	hub.leave(c)
	hub.leave(c)
	assert.Equal(t, 0, rooms)
	assert.Equal(t, 0, clients)

	hub.Close()
	assert.ErrorIs(t, hub.join(&Client{id: "c2", room: "r", send: make(chan []byte, 1)}), ErrHubClosed)
}

// drain empties ch and returns it once closed
func drain(ch chan []byte) chan []byte {
	for range ch {
	}
	return ch
}
