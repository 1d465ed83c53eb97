package gamepad

import (
	"math"

	"github.com/soar/simrx/internal/axis"
)

// Rescaler maps a native axis range onto the centered signed 16-bit scale
// every axis.Source reports.
type Rescaler struct {
	center float64
	half   float64
}

// NewRescaler returns a rescaler for the native range [min, max].
func NewRescaler(min, max int32) Rescaler {
	return Rescaler{
		center: (float64(min) + float64(max)) / 2,
		half:   (float64(max) - float64(min)) / 2,
	}
}

// Scale converts v. Values beyond the native range map beyond the 16-bit
// range rather than being clipped, saturating only at the int32 limits.
func (r Rescaler) Scale(v int32) int32 {
	if r.half == 0 {
		return 0
	}
	f := math.Round((float64(v) - r.center) / r.half * 32767)
	switch {
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int32(f)
}

// absSlots routes evdev ABS codes to raw slots.
var absSlots = map[uint16]int{
	0x00: 0, // ABS_X
	0x01: 1, // ABS_Y
	0x02: 2, // ABS_Z
	0x03: 3, // ABS_RX
	0x04: 4, // ABS_RY
	0x05: 5, // ABS_RZ
}

// applyAbs stores an absolute axis event into raw. It reports whether code
// is one of the sampled axes.
func applyAbs(raw *axis.Raw, scale Rescaler, code uint16, value int32) bool {
	slot, ok := absSlots[code]
	if !ok {
		return false
	}
	raw[slot] = scale.Scale(value)
	return true
}
