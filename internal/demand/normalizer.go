package demand

import (
	"github.com/soar/simrx/internal/axis"
	"github.com/soar/simrx/internal/filter"
)

const (
	// AxisScale maps the centered signed 16-bit raw range onto [-1, +1].
	AxisScale = 32767.0

	// ThrottleDeadband is the half-width around center that a springy
	// throttle stick ignores.
	ThrottleDeadband = 0.15

	// ThrottleStep is the per-frame integration gain of a springy throttle.
	// It is not scaled by the time between frames.
	ThrottleStep = 0.01

	// ThrottleSeed is the throttle state before the first frame, just below
	// the valid range so a springy throttle starts at minimum.
	ThrottleSeed = -1.0
)

// Normalizer computes frames from an axis source. It owns the throttle
// state and is not safe for concurrent use; ChannelReader serialises it.
type Normalizer struct {
	src      axis.Source
	cfg      Config
	throttle float64
}

// NewNormalizer validates cfg and returns a normalizer with the throttle
// state at ThrottleSeed.
func NewNormalizer(src axis.Source, cfg Config) (*Normalizer, error) {
	if err := cfg.AxisMap.Validate(); err != nil {
		return nil, err
	}
	return &Normalizer{src: src, cfg: cfg, throttle: ThrottleSeed}, nil
}

// Config returns the settings the normalizer was built with.
func (n *Normalizer) Config() Config {
	return n.cfg
}

// Throttle returns the current throttle state.
func (n *Normalizer) Throttle() float64 {
	return n.throttle
}

// NormalizeFrame acquires one sample and converts it. On acquisition error
// the throttle state is left untouched.
func (n *Normalizer) NormalizeFrame() (Frame, error) {
	raw, err := n.src.Acquire()
	if err != nil {
		return Frame{}, err
	}
	baseline, err := n.src.Baseline()
	if err != nil {
		return Frame{}, err
	}

	var f Frame
	for ch, slot := range n.cfg.AxisMap {
		f[ch] = float64(int64(raw[slot])-int64(baseline)) / AxisScale
	}

	if n.cfg.ReversedVerticals {
		f[Throttle] = -f[Throttle]
		f[Elevator] = -f[Elevator]
	}

	if n.cfg.UseButtonForAux {
		f[Aux] = -1
	}

	if n.cfg.SpringyThrottle {
		step := filter.Deadband(f[Throttle], ThrottleDeadband)
		n.throttle = filter.ConstrainAbs(n.throttle+step*ThrottleStep, 1)
	} else {
		n.throttle = f[Throttle]
	}

	f[Throttle] = n.throttle
	return f, nil
}
