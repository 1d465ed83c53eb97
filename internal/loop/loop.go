// Package loop is the polling side of the receiver: it reads every channel
// once per frame, channel 0 first, the way a flight controller's receiver
// task does, and publishes the result for the monitor.
package loop

import (
	"context"
	"log"
	"time"

	"github.com/soar/simrx/internal/axis"
	"github.com/soar/simrx/internal/demand"
)

// Receiver is the channel-at-a-time surface polled each frame.
type Receiver interface {
	UseSerial() bool
	ReadChannel(index uint8) float64
	Stats() demand.Stats
	Device() axis.Device
	Config() demand.Config
}

// Runner polls a Receiver at a fixed rate.
type Runner struct {
	rx       Receiver
	interval time.Duration
	changes  chan FrameState
}

func New(rx Receiver, interval time.Duration) *Runner {
	return &Runner{
		rx:       rx,
		interval: interval,
		changes:  make(chan FrameState, 64),
	}
}

// Changes returns the channel on which frame states are sent. It is closed
// when Run returns.
func (r *Runner) Changes() <-chan FrameState {
	return r.changes
}

// Run polls until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	defer close(r.changes)

	if !r.rx.UseSerial() {
		log.Println("Receiver does not ask for continuous polling, polling anyway")
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	log.Printf("Polling receiver every %v", r.interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.emit(r.Step())
		}
	}
}

// Step runs one frame: channel 0 starts the frame, 1..4 follow.
func (r *Runner) Step() FrameState {
	before := r.rx.Stats()

	var f demand.Frame
	for ch := 0; ch < demand.NumChannels; ch++ {
		f[ch] = r.rx.ReadChannel(uint8(ch))
	}

	stats := r.rx.Stats()
	cfg := r.rx.Config()
	return FrameState{
		Connected: stats.Failures == before.Failures,
		Device:    r.rx.Device().Name,
		Settings: Settings{
			AxisMap:           cfg.AxisMap,
			ReversedVerticals: cfg.ReversedVerticals,
			SpringyThrottle:   cfg.SpringyThrottle,
			UseButtonForAux:   cfg.UseButtonForAux,
		},
		Demands: DemandsFrom(f),
		Stats:   stats,
	}
}

func (r *Runner) emit(s FrameState) {
	select {
	case r.changes <- s:
	default:
		// Drop if nobody keeps up, the control loop must not block
	}
}
