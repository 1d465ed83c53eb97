//go:build linux

package gamepad

import (
	"context"
	"testing"
	"time"

	evdev "github.com/gvalkov/golang-evdev"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/soar/simrx/internal/axis"
	"github.com/soar/simrx/internal/demand"
)

func newTestEvdev() *EvdevSource {
	return &EvdevSource{
		scale:  NewRescaler(0, 255),
		device: axis.Device{Name: "FrSky Taranis Joystick"},
		ready:  make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func TestEvdevNoSampleBeforeFirstEvent(t *testing.T) {
	s := newTestEvdev()

	_, err := s.Acquire()
	test.That(t, errors.Is(err, axis.ErrAcquire), test.ShouldBeTrue)

	// events of other types do not count as a sample
	s.apply([]evdev.InputEvent{{Type: evdev.EV_KEY, Code: 0x130, Value: 1}})
	_, err = s.Acquire()
	test.That(t, errors.Is(err, axis.ErrAcquire), test.ShouldBeTrue)

	s.apply([]evdev.InputEvent{{Type: evdev.EV_ABS, Code: 0x02, Value: 255}})
	raw, err := s.Acquire()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, raw[2], test.ShouldEqual, int32(32767))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	test.That(t, s.WaitReady(ctx), test.ShouldBeNil)
}

func TestEvdevDirectThrottleHoldsSeed(t *testing.T) {
	s := newTestEvdev()
	n, err := demand.NewNormalizer(s, taranisProfile.Config())
	test.That(t, err, test.ShouldBeNil)
	r := demand.NewChannelReader(n)

	test.That(t, r.ReadChannel(0), test.ShouldEqual, -1.0)
	test.That(t, r.Stats().Failures, test.ShouldEqual, uint64(1))
	test.That(t, r.Stats().Frames, test.ShouldEqual, uint64(0))

	s.apply([]evdev.InputEvent{{Type: evdev.EV_ABS, Code: 0x02, Value: 255}})
	test.That(t, r.ReadChannel(0), test.ShouldEqual, 1.0)
	test.That(t, r.Stats().Frames, test.ShouldEqual, uint64(1))
}
