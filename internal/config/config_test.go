package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.viam.com/test"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Listen, test.ShouldEqual, ":8080")
	test.That(t, cfg.PollHz, test.ShouldEqual, 60.0)
	test.That(t, cfg.Backend.Name, test.ShouldEqual, "sdl")
	test.That(t, cfg.Backend.AxisMin, test.ShouldEqual, int32(-32768))
	test.That(t, cfg.Backend.AxisMax, test.ShouldEqual, int32(32767))
	test.That(t, cfg.Backend.WaitTimeout, test.ShouldEqual, 10*time.Second)
	test.That(t, cfg.Controller.Profile, test.ShouldEqual, "")
	test.That(t, cfg.Controller.AxisMap, test.ShouldBeEmpty)

	// unset flags must not override a device profile
	test.That(t, cfg.Controller.ReversedVerticals, test.ShouldBeNil)
	test.That(t, cfg.Controller.SpringyThrottle, test.ShouldBeNil)
	test.That(t, cfg.Controller.UseButtonForAux, test.ShouldBeNil)
}

func TestLoadFlags(t *testing.T) {
	cfg, err := Load([]string{
		"--backend", "static",
		"--poll-hz", "100",
		"--axis-map", "1,3,4,0,2",
		"--springy-throttle",
		"--reversed-verticals=false",
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Backend.Name, test.ShouldEqual, "static")
	test.That(t, cfg.PollHz, test.ShouldEqual, 100.0)
	test.That(t, cfg.PollInterval(), test.ShouldEqual, 10*time.Millisecond)
	test.That(t, cfg.Controller.AxisMap, test.ShouldResemble, []int{1, 3, 4, 0, 2})

	test.That(t, cfg.Controller.SpringyThrottle, test.ShouldNotBeNil)
	test.That(t, *cfg.Controller.SpringyThrottle, test.ShouldBeTrue)
	test.That(t, cfg.Controller.ReversedVerticals, test.ShouldNotBeNil)
	test.That(t, *cfg.Controller.ReversedVerticals, test.ShouldBeFalse)
	test.That(t, cfg.Controller.UseButtonForAux, test.ShouldBeNil)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simrx.yaml")
	data := []byte(`
listen: ":9090"
backend:
  name: static
  static_axes: [100, 200, 300, 400, 500, 600]
  static_baseline: 16383
controller:
  profile: xbox
  use_button_for_aux: true
`)
	test.That(t, os.WriteFile(path, data, 0o644), test.ShouldBeNil)

	cfg, err := Load([]string{"--config", path, "--listen", ":7070"})
	test.That(t, err, test.ShouldBeNil)

	// flags win over the file
	test.That(t, cfg.Listen, test.ShouldEqual, ":7070")
	test.That(t, cfg.Backend.Name, test.ShouldEqual, "static")
	test.That(t, cfg.Backend.StaticAxes, test.ShouldResemble, []int32{100, 200, 300, 400, 500, 600})
	test.That(t, cfg.Backend.StaticBaseline, test.ShouldEqual, int32(16383))
	test.That(t, cfg.Controller.Profile, test.ShouldEqual, "xbox")
	test.That(t, cfg.Controller.UseButtonForAux, test.ShouldNotBeNil)
	test.That(t, *cfg.Controller.UseButtonForAux, test.ShouldBeTrue)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("SIMRX_BACKEND_NAME", "remote")
	t.Setenv("SIMRX_BACKEND_URL", "ws://127.0.0.1:9000/axes")

	cfg, err := Load(nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Backend.Name, test.ShouldEqual, "remote")
	test.That(t, cfg.Backend.URL, test.ShouldEqual, "ws://127.0.0.1:9000/axes")
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load([]string{"--poll-hz", "0"})
	test.That(t, err, test.ShouldNotBeNil)

	_, err = Load([]string{"--axis-map", "0,1,2"})
	test.That(t, err, test.ShouldNotBeNil)

	_, err = Load([]string{"--axis-min", "100", "--axis-max", "100"})
	test.That(t, err, test.ShouldNotBeNil)

	_, err = Load([]string{"--no-such-flag"})
	test.That(t, err, test.ShouldNotBeNil)
}
