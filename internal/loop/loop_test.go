package loop

import (
	"context"
	"testing"
	"time"

	"go.viam.com/test"

	"github.com/soar/simrx/internal/axis"
	"github.com/soar/simrx/internal/demand"
)

type recordingReceiver struct {
	*demand.Controller
	calls []uint8
}

func (r *recordingReceiver) ReadChannel(index uint8) float64 {
	r.calls = append(r.calls, index)
	return r.Controller.ReadChannel(index)
}

func newReceiver(t *testing.T, src axis.Source) *recordingReceiver {
	t.Helper()
	c := demand.NewController(src, demand.Fixed(demand.Config{AxisMap: demand.IdentityMap, UseButtonForAux: true}))
	test.That(t, c.Begin(), test.ShouldBeNil)
	return &recordingReceiver{Controller: c}
}

func TestStepReadsChannelZeroFirst(t *testing.T) {
	src := axis.NewStatic(axis.Raw{100, 200, 300, 400, 500, 600}, 0)
	rx := newReceiver(t, src)
	r := New(rx, time.Millisecond)

	s := r.Step()
	test.That(t, rx.calls, test.ShouldResemble, []uint8{0, 1, 2, 3, 4})
	test.That(t, src.Acquires(), test.ShouldEqual, 1)

	test.That(t, s.Connected, test.ShouldBeTrue)
	test.That(t, s.Device, test.ShouldEqual, "static")
	test.That(t, s.Settings.UseButtonForAux, test.ShouldBeTrue)
	test.That(t, s.Demands, test.ShouldResemble, Demands{
		Throttle: 100 / demand.AxisScale,
		Aileron:  200 / demand.AxisScale,
		Elevator: 300 / demand.AxisScale,
		Rudder:   400 / demand.AxisScale,
		Aux:      -1,
	})
	test.That(t, s.Stats.Frames, test.ShouldEqual, uint64(1))
}

func TestStepReportsHeldFrame(t *testing.T) {
	src := axis.NewStatic(axis.Raw{100, 200, 300, 400, 500, 600}, 0)
	r := New(newReceiver(t, src), time.Millisecond)
	first := r.Step()

	src.Fail(axis.Unavailable("unplugged"))
	held := r.Step()
	test.That(t, held.Connected, test.ShouldBeFalse)
	test.That(t, held.Demands, test.ShouldResemble, first.Demands)
	test.That(t, held.Stats.Failures, test.ShouldEqual, uint64(1))

	src.Fail(nil)
	test.That(t, r.Step().Connected, test.ShouldBeTrue)
}

func TestRunPublishesUntilCancelled(t *testing.T) {
	src := axis.NewStatic(axis.Raw{100, 200, 300, 400, 500, 600}, 0)
	r := New(newReceiver(t, src), time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	select {
	case s := <-r.Changes():
		test.That(t, s.Connected, test.ShouldBeTrue)
	case <-time.After(5 * time.Second):
		t.Fatal("no frame published")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}

	// drain, then the channel is closed
	for range r.Changes() {
	}
}

func TestComputeDelta(t *testing.T) {
	base := FrameState{Connected: true, Device: "pad", Demands: Demands{Throttle: -1}}

	d := ComputeDelta(base, base)
	test.That(t, d.IsEmpty(), test.ShouldBeTrue)

	next := base
	next.Stats = demand.Stats{Frames: 10}
	test.That(t, ComputeDelta(base, next).IsEmpty(), test.ShouldBeTrue)

	next.Demands.Throttle = -0.99
	d = ComputeDelta(base, next)
	test.That(t, d.Demands, test.ShouldNotBeNil)
	test.That(t, d.Demands.Throttle, test.ShouldEqual, -0.99)
	test.That(t, d.Connected, test.ShouldBeNil)

	next = base
	next.Demands.Rudder = 0.0005
	test.That(t, ComputeDelta(base, next).IsEmpty(), test.ShouldBeTrue)

	next.Connected = false
	next.Settings.SpringyThrottle = true
	d = ComputeDelta(base, next)
	test.That(t, *d.Connected, test.ShouldBeFalse)
	test.That(t, d.Settings.SpringyThrottle, test.ShouldBeTrue)
}
