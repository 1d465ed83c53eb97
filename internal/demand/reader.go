package demand

import (
	"log"
	"sync"
)

// Stats counts poll outcomes.
type Stats struct {
	Frames   uint64 `json:"frames"`
	Failures uint64 `json:"failures"`
}

// ChannelReader serves a frame one channel at a time. Reading channel 0
// starts a new frame; channels 1..4 return values from the frame computed by
// the most recent channel 0 read. When acquisition fails the previous frame
// is held.
//
// All methods are safe for concurrent use.
type ChannelReader struct {
	mu      sync.Mutex
	norm    *Normalizer
	frame   Frame
	stats   Stats
	failing bool
}

// NewChannelReader wraps n. Until the first frame, channels 1..4 read 0 and
// throttle reads the normalizer's seed state.
func NewChannelReader(n *Normalizer) *ChannelReader {
	r := &ChannelReader{norm: n}
	r.frame[Throttle] = n.Throttle()
	return r
}

// ReadChannel returns the demand for channel index. Index 0 polls the
// source first. Indexes outside 0..4 read 0.
func (r *ChannelReader) ReadChannel(index int) float64 {
	if index < 0 || index >= NumChannels {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if index == int(Throttle) {
		// a failed poll holds the cached frame and is counted in Stats
		_ = r.poll()
	}
	return r.frame[index]
}

// PollFrame computes and caches a new frame and returns it. On error the
// held frame is returned together with the error.
func (r *ChannelReader) PollFrame() (Frame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.poll()
	return r.frame, err
}

// Snapshot returns the cached frame without polling.
func (r *ChannelReader) Snapshot() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frame
}

// Stats returns the poll counters.
func (r *ChannelReader) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *ChannelReader) poll() error {
	f, err := r.norm.NormalizeFrame()
	if err != nil {
		r.stats.Failures++
		if !r.failing {
			log.Printf("Axis acquisition failed, holding last frame: %v", err)
			r.failing = true
		}
		return err
	}
	if r.failing {
		log.Printf("Axis acquisition recovered after %d failed polls", r.stats.Failures)
		r.failing = false
	}
	r.frame = f
	r.stats.Frames++
	return nil
}
