package loop

import (
	"math"

	"github.com/soar/simrx/internal/demand"
)

type Demands struct {
	Throttle float64 `json:"throttle"`
	Aileron  float64 `json:"aileron"`
	Elevator float64 `json:"elevator"`
	Rudder   float64 `json:"rudder"`
	Aux      float64 `json:"aux"`
}

// DemandsFrom converts a frame to its named form.
func DemandsFrom(f demand.Frame) Demands {
	return Demands{
		Throttle: f.Get(demand.Throttle),
		Aileron:  f.Get(demand.Aileron),
		Elevator: f.Get(demand.Elevator),
		Rudder:   f.Get(demand.Rudder),
		Aux:      f.Get(demand.Aux),
	}
}

type Settings struct {
	AxisMap           demand.AxisMap `json:"axisMap"`
	ReversedVerticals bool           `json:"reversedVerticals"`
	SpringyThrottle   bool           `json:"springyThrottle"`
	UseButtonForAux   bool           `json:"useButtonForAux"`
}

// FrameState is what the monitor shows about the receiver after a frame.
// Connected is false while the source fails and the demands are held.
type FrameState struct {
	Connected bool         `json:"connected"`
	Device    string       `json:"device"`
	Settings  Settings     `json:"settings"`
	Demands   Demands      `json:"demands"`
	Stats     demand.Stats `json:"stats"`
}

type DeltaChanges struct {
	Connected *bool     `json:"connected,omitempty"`
	Device    *string   `json:"device,omitempty"`
	Settings  *Settings `json:"settings,omitempty"`
	Demands   *Demands  `json:"demands,omitempty"`
}

func (d *DeltaChanges) IsEmpty() bool {
	return d.Connected == nil &&
		d.Device == nil &&
		d.Settings == nil &&
		d.Demands == nil
}

// Smaller than one springy-throttle step so integration shows up.
const analogThreshold = 0.001

func floatEqual(a, b float64) bool {
	return math.Abs(a-b) < analogThreshold
}

// ComputeDelta reports the fields of new_ that differ from old. Stats are
// left out: they change every frame and travel in full messages only.
func ComputeDelta(old, new_ FrameState) *DeltaChanges {
	d := &DeltaChanges{}

	if old.Connected != new_.Connected {
		d.Connected = &new_.Connected
	}
	if old.Device != new_.Device {
		d.Device = &new_.Device
	}
	if old.Settings != new_.Settings {
		d.Settings = &new_.Settings
	}

	if !floatEqual(old.Demands.Throttle, new_.Demands.Throttle) ||
		!floatEqual(old.Demands.Aileron, new_.Demands.Aileron) ||
		!floatEqual(old.Demands.Elevator, new_.Demands.Elevator) ||
		!floatEqual(old.Demands.Rudder, new_.Demands.Rudder) ||
		!floatEqual(old.Demands.Aux, new_.Demands.Aux) {
		d.Demands = &new_.Demands
	}

	return d
}
