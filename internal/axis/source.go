// Package axis defines the boundary between platform-specific joystick
// acquisition and demand normalization.
//
// A Source reports the most recent raw sample of up to NumAxes signed axes on
// a centered 16-bit scale, together with the baseline (center/trim) reading
// that is subtracted before scaling. Backends that need a different native
// range must rescale into this one.
package axis

import (
	"context"

	"github.com/pkg/errors"
)

// NumAxes is the number of raw axis slots a source reports. Only five are
// consumed by the channel map, the last slot is spare.
const NumAxes = 6

// Raw is one sample of every axis slot.
type Raw [NumAxes]int32

// ErrAcquire is wrapped by every source when no sample could be obtained.
var ErrAcquire = errors.New("axis acquisition failed")

// Source is the platform backend.
type Source interface {
	// Acquire returns the most recent raw sample.
	Acquire() (Raw, error)
	// Baseline returns the device center reading.
	Baseline() (int32, error)
	Close() error
}

// Device identifies the physical controller behind a source.
type Device struct {
	Name      string
	VendorID  uint16
	ProductID uint16
}

// Describer is implemented by sources that can identify their device.
type Describer interface {
	Device() Device
}

// Waiter is implemented by sources that become usable asynchronously, such
// as after a hotplug event.
type Waiter interface {
	WaitReady(ctx context.Context) error
}

// Unavailable returns an error wrapping ErrAcquire.
func Unavailable(format string, args ...any) error {
	return errors.Wrapf(ErrAcquire, format, args...)
}
