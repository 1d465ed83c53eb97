package hub

import (
	"time"

	"github.com/soar/simrx/internal/loop"
)

// WSMessage represents a WebSocket message sent from server to client.
type WSMessage struct {
	Type      string             `json:"type"`              // Message type: "full", "delta"
	Seq       int64              `json:"seq"`               // Sequence number for ordering
	Timestamp int64              `json:"timestamp"`         // Unix timestamp in milliseconds
	Data      *loop.FrameState   `json:"data,omitempty"`    // Full frame state for type "full"
	Changes   *loop.DeltaChanges `json:"changes,omitempty"` // Delta changes for type "delta"
}

// NewFullMessage creates a "full" type message containing the complete frame state.
func NewFullMessage(seq int64, state *loop.FrameState) *WSMessage {
	return &WSMessage{
		Type:      "full",
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Data:      state,
	}
}

// NewDeltaMessage creates a "delta" type message containing only changed fields.
func NewDeltaMessage(seq int64, changes *loop.DeltaChanges) *WSMessage {
	return &WSMessage{
		Type:      "delta",
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Changes:   changes,
	}
}

// ClientMessage represents a message sent from the client to the server.
// The only command is "sync", which asks for a full message.
type ClientMessage struct {
	Type string `json:"type"`
}
