//go:build linux

package gamepad

import (
	"context"
	"log"
	"sync"
	"time"

	evdev "github.com/gvalkov/golang-evdev"
	"github.com/pkg/errors"

	"github.com/soar/simrx/internal/axis"
	"github.com/soar/simrx/internal/config"
)

const closeTimeout = time.Second

func init() {
	axis.Register("evdev", func(cfg config.Backend) (axis.Source, error) {
		return OpenEvdev(cfg.Device, cfg.AxisMin, cfg.AxisMax)
	})
}

// EvdevSource reads ABS_X..ABS_RZ from a Linux event device. A goroutine
// drains the device and keeps the latest value of every axis.
type EvdevSource struct {
	dev    *evdev.InputDevice
	scale  Rescaler
	device axis.Device

	mu    sync.RWMutex
	raw   axis.Raw
	have  bool
	err   error
	ready chan struct{}
	once  sync.Once
	done  chan struct{}
}

// OpenEvdev opens path, whose axes report values in [min, max].
func OpenEvdev(path string, min, max int32) (*EvdevSource, error) {
	if path == "" {
		return nil, errors.New("evdev backend needs a device path")
	}
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}

	s := &EvdevSource{
		dev:   dev,
		scale: NewRescaler(min, max),
		device: axis.Device{
			Name:      dev.Name,
			VendorID:  dev.Vendor,
			ProductID: dev.Product,
		},
		ready: make(chan struct{}),
		done:  make(chan struct{}),
	}
	log.Printf("Evdev device opened: %s (VID=%04X PID=%04X) at %s", dev.Name, dev.Vendor, dev.Product, path)

	go s.readLoop()
	return s, nil
}

func (s *EvdevSource) readLoop() {
	defer close(s.done)
	for {
		events, err := s.dev.Read()
		if err != nil {
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
			log.Printf("Evdev read stopped: %v", err)
			return
		}

		s.apply(events)
	}
}

// apply stores the absolute axis events of one read.
func (s *EvdevSource) apply(events []evdev.InputEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range events {
		if ev.Type == evdev.EV_ABS && applyAbs(&s.raw, s.scale, ev.Code, ev.Value) {
			s.have = true
			s.once.Do(func() { close(s.ready) })
		}
	}
}

func (s *EvdevSource) Acquire() (axis.Raw, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return axis.Raw{}, axis.Unavailable("evdev %s: %v", s.device.Name, s.err)
	}
	// A resting stick sends no events, so there is no sample until one moves.
	if !s.have {
		return axis.Raw{}, axis.Unavailable("evdev %s: no axis event yet", s.device.Name)
	}
	return s.raw, nil
}

func (s *EvdevSource) Baseline() (int32, error) {
	return 0, nil
}

func (s *EvdevSource) Device() axis.Device {
	return s.device
}

// WaitReady blocks until the first axis event arrives.
func (s *EvdevSource) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-s.done:
		return axis.Unavailable("evdev %s closed before reporting axes", s.device.Name)
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for evdev axes")
	}
}

func (s *EvdevSource) Close() error {
	err := s.dev.File.Close()
	select {
	case <-s.done:
	case <-time.After(closeTimeout):
		log.Printf("Evdev reader for %s did not stop within %v", s.device.Name, closeTimeout)
	}
	return err
}
