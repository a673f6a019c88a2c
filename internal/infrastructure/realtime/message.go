// Package realtime broadcasts collaboration messages between members of a room.
// Messages are relayed as received: there is no persistence, no conflict
// resolution and no ordering guarantee across senders.
package realtime

import (
	"encoding/json"
	"time"
)

// Message types
const (
	TypeCursor   = "cursor"
	TypeEdit     = "edit"
	TypeChat     = "chat"
	TypePresence = "presence"
	TypeWelcome  = "welcome"
	TypeError    = "error"
)

// Presence actions
const (
	ActionJoin  = "join"
	ActionLeave = "leave"
)

// Inbound is what a client sends
type Inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Member identifies a connected client
type Member struct {
	ClientID string    `json:"client_id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joined_at"`
}

// Outbound is what the hub sends
type Outbound struct {
	Type     string          `json:"type"`
	Room     string          `json:"room"`
	ClientID string          `json:"client_id,omitempty"`
	Name     string          `json:"name,omitempty"`
	Action   string          `json:"action,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	Members  []Member        `json:"members,omitempty"`
	Error    string          `json:"error,omitempty"`
	SentAt   time.Time       `json:"sent_at"`
}

func relayable(t string) bool {
	switch t {
	case TypeCursor, TypeEdit, TypeChat:
		return true
	}
	return false
}
