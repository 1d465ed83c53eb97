package demand

import (
	"log"
	"sync"

	"github.com/pkg/errors"

	"github.com/soar/simrx/internal/axis"
)

// ErrNotStarted is returned by Controller methods called before Begin.
var ErrNotStarted = errors.New("controller not started")

// Resolver picks the demand settings for a device.
type Resolver interface {
	Resolve(dev axis.Device) (Config, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(dev axis.Device) (Config, error)

func (f ResolverFunc) Resolve(dev axis.Device) (Config, error) {
	return f(dev)
}

// Fixed resolves every device to cfg.
func Fixed(cfg Config) Resolver {
	return ResolverFunc(func(axis.Device) (Config, error) {
		return cfg, nil
	})
}

// Controller is the receiver a flight-control loop polls. It is used from a
// single control loop, with Snapshot and Stats available to other goroutines.
type Controller struct {
	src     axis.Source
	resolve Resolver

	mu     sync.RWMutex
	device axis.Device
	cfg    Config
	reader *ChannelReader
}

// NewController returns a controller reading src. Settings are resolved
// when Begin is called.
func NewController(src axis.Source, resolve Resolver) *Controller {
	return &Controller{src: src, resolve: resolve}
}

// Begin identifies the device, resolves its settings and resets the
// throttle state to ThrottleSeed.
func (c *Controller) Begin() error {
	var dev axis.Device
	if d, ok := c.src.(axis.Describer); ok {
		dev = d.Device()
	}

	cfg, err := c.resolve.Resolve(dev)
	if err != nil {
		return errors.Wrapf(err, "resolving settings for %q", dev.Name)
	}
	norm, err := NewNormalizer(c.src, cfg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.device = dev
	c.cfg = cfg
	c.reader = NewChannelReader(norm)
	c.mu.Unlock()

	log.Printf("Controller ready: device=%q axis_map=%v reversed_verticals=%v springy_throttle=%v use_button_for_aux=%v",
		dev.Name, cfg.AxisMap, cfg.ReversedVerticals, cfg.SpringyThrottle, cfg.UseButtonForAux)
	return nil
}

func (c *Controller) channelReader() *ChannelReader {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reader
}

// UseSerial reports that this receiver must be polled continuously rather
// than driven by events.
func (c *Controller) UseSerial() bool {
	return true
}

// ReadChannel returns the demand for channel index, polling the device when
// index is 0. Before Begin it reads 0.
func (c *Controller) ReadChannel(index uint8) float64 {
	r := c.channelReader()
	if r == nil {
		return 0
	}
	return r.ReadChannel(int(index))
}

// PollFrame acquires and returns a complete frame.
func (c *Controller) PollFrame() (Frame, error) {
	r := c.channelReader()
	if r == nil {
		return Frame{}, ErrNotStarted
	}
	return r.PollFrame()
}

// Snapshot returns the last frame without polling.
func (c *Controller) Snapshot() (Frame, error) {
	r := c.channelReader()
	if r == nil {
		return Frame{}, ErrNotStarted
	}
	return r.Snapshot(), nil
}

// Stats returns the poll counters.
func (c *Controller) Stats() Stats {
	r := c.channelReader()
	if r == nil {
		return Stats{}
	}
	return r.Stats()
}

// Device returns the device identified at Begin.
func (c *Controller) Device() axis.Device {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.device
}

// Config returns the settings resolved at Begin.
func (c *Controller) Config() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

// Halt releases the source.
func (c *Controller) Halt() error {
	return c.src.Close()
}
