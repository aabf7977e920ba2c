package api

import "time"

// Session event types
const (
	EventCommitted = "committed"
	EventHello     = "hello"
)

// SessionEvent is pushed to clients over the session WebSocket
type SessionEvent struct {
	At       time.Time `json:"at"`
	Type     string    `json:"type"`
	EntityID string    `json:"entity_id,omitempty"`
	Actor    string    `json:"actor,omitempty"`
	Version  int64     `json:"version,omitempty"`
}
