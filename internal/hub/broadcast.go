package hub

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/soar/simrx/internal/loop"
)

const (
	fullSyncInterval = 5 * time.Second
	deltaCountSync   = 100
)

// Broadcaster listens for frame states and broadcasts them to the hub.
type Broadcaster struct {
	hub     *Hub
	changes <-chan loop.FrameState

	mu        sync.Mutex
	lastState loop.FrameState
	seq       int64
}

func NewBroadcaster(h *Hub, changes <-chan loop.FrameState) *Broadcaster {
	return &Broadcaster{
		hub:     h,
		changes: changes,
	}
}

// Run starts the broadcaster loop. It returns when the changes channel is
// closed. Should be run in a goroutine.
func (b *Broadcaster) Run() {
	ticker := time.NewTicker(fullSyncInterval)
	defer ticker.Stop()

	var deltaCount int64

	for {
		select {
		case state, ok := <-b.changes:
			if !ok {
				return
			}

			b.mu.Lock()
			delta := loop.ComputeDelta(b.lastState, state)
			b.lastState = state
			if delta.IsEmpty() {
				b.mu.Unlock()
				continue
			}
			b.seq++
			seq := b.seq
			b.mu.Unlock()

			deltaCount++

			// Send full sync periodically
			if deltaCount >= deltaCountSync {
				b.sendFull(seq, state)
				deltaCount = 0
			} else {
				b.sendDelta(seq, delta)
			}

		case <-ticker.C:
			b.mu.Lock()
			state := b.lastState
			b.seq++
			seq := b.seq
			b.mu.Unlock()
			b.sendFull(seq, state)
		}
	}
}

// LastState returns the most recent frame state seen.
func (b *Broadcaster) LastState() loop.FrameState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastState
}

// SendInitialState sends the current full state to a newly connected client.
func (b *Broadcaster) SendInitialState(c *Client) {
	b.mu.Lock()
	b.seq++
	msg := NewFullMessage(b.seq, &b.lastState)
	data, err := json.Marshal(msg)
	b.mu.Unlock()
	if err != nil {
		log.Printf("Error marshaling initial state: %v", err)
		return
	}
	if !b.hub.Send(c, data) {
		log.Println("Initial state not delivered, client gone or busy")
	}
}

func (b *Broadcaster) sendFull(seq int64, state loop.FrameState) {
	msg := NewFullMessage(seq, &state)
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling full message: %v", err)
		return
	}
	b.hub.Broadcast(data)
}

func (b *Broadcaster) sendDelta(seq int64, delta *loop.DeltaChanges) {
	msg := NewDeltaMessage(seq, delta)
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling delta message: %v", err)
		return
	}
	b.hub.Broadcast(data)
}
