package axis

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/soar/simrx/internal/config"
)

func TestStatic(t *testing.T) {
	s := NewStatic(Raw{1, 2, 3, 4, 5, 6}, 7)

	raw, err := s.Acquire()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, raw, test.ShouldResemble, Raw{1, 2, 3, 4, 5, 6})
	base, err := s.Baseline()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, base, test.ShouldEqual, int32(7))

	s.SetAxis(2, -30)
	raw, _ = s.Acquire()
	test.That(t, raw[2], test.ShouldEqual, int32(-30))
	test.That(t, s.Acquires(), test.ShouldEqual, 2)

	s.Fail(Unavailable("unplugged"))
	_, err = s.Acquire()
	test.That(t, errors.Is(err, ErrAcquire), test.ShouldBeTrue)
	_, err = s.Baseline()
	test.That(t, errors.Is(err, ErrAcquire), test.ShouldBeTrue)

	s.Fail(nil)
	_, err = s.Acquire()
	test.That(t, err, test.ShouldBeNil)

	test.That(t, s.Close(), test.ShouldBeNil)
	_, err = s.Acquire()
	test.That(t, errors.Is(err, ErrAcquire), test.ShouldBeTrue)
}

func TestOpenStatic(t *testing.T) {
	src, err := Open(config.Backend{
		Name:           "static",
		StaticAxes:     []int32{100, 200, 300},
		StaticBaseline: 5,
	})
	test.That(t, err, test.ShouldBeNil)
	raw, err := src.Acquire()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, raw, test.ShouldResemble, Raw{100, 200, 300, 0, 0, 0})

	_, err = Open(config.Backend{Name: "static", StaticAxes: make([]int32, 7)})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestOpenUnknown(t *testing.T) {
	_, err := Open(config.Backend{Name: "carrier-pigeon"})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "carrier-pigeon")
	test.That(t, Backends(), test.ShouldContain, "static")
}
