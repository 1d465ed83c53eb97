// Package demand turns raw joystick axes into the five normalized control
// demands a flight controller polls: throttle, aileron, elevator, rudder and
// auxiliary.
package demand

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/soar/simrx/internal/axis"
)

// Channel is a logical receiver channel.
type Channel int

const (
	Throttle Channel = iota
	Aileron
	Elevator
	Rudder
	Aux

	NumChannels = 5
)

var channelNames = [NumChannels]string{"throttle", "aileron", "elevator", "rudder", "aux"}

func (c Channel) String() string {
	if c < 0 || int(c) >= NumChannels {
		return fmt.Sprintf("channel(%d)", int(c))
	}
	return channelNames[c]
}

// Frame is one complete set of demands, indexed by Channel.
type Frame [NumChannels]float64

// Get returns the demand for c.
func (f Frame) Get(c Channel) float64 {
	return f[c]
}

// ErrInvalidAxisMap is returned for maps that point outside the raw sample.
var ErrInvalidAxisMap = errors.New("invalid axis map")

// AxisMap gives the backend axis slot feeding each channel.
type AxisMap [NumChannels]int

// IdentityMap routes axis k to channel k.
var IdentityMap = AxisMap{0, 1, 2, 3, 4}

// Validate reports an error wrapping ErrInvalidAxisMap if any entry is not a
// valid raw slot.
func (m AxisMap) Validate() error {
	for ch, slot := range m {
		if slot < 0 || slot >= axis.NumAxes {
			return errors.Wrapf(ErrInvalidAxisMap, "%s mapped to axis %d", Channel(ch), slot)
		}
	}
	return nil
}

// AxisMapFrom converts a configured slice into an AxisMap.
func AxisMapFrom(s []int) (AxisMap, error) {
	var m AxisMap
	if len(s) != NumChannels {
		return m, errors.Wrapf(ErrInvalidAxisMap, "need %d entries, got %d", NumChannels, len(s))
	}
	copy(m[:], s)
	return m, m.Validate()
}

// Config fixes how a device's axes become demands. It does not change once a
// Controller has begun.
type Config struct {
	AxisMap AxisMap
	// ReversedVerticals negates throttle and elevator.
	ReversedVerticals bool
	// SpringyThrottle integrates a spring-return stick into the throttle.
	SpringyThrottle bool
	// UseButtonForAux holds aux at -1 regardless of the mapped axis.
	UseButtonForAux bool
}
