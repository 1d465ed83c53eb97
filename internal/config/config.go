// Package config loads runtime settings from flags, environment and an
// optional config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// SIMRX_BACKEND_NAME=evdev.
const EnvPrefix = "SIMRX"

// Config is the complete runtime configuration.
type Config struct {
	Listen     string     `mapstructure:"listen"`
	PollHz     float64    `mapstructure:"poll_hz"`
	Tray       bool       `mapstructure:"tray"`
	Backend    Backend    `mapstructure:"backend"`
	Controller Controller `mapstructure:"controller"`
}

// Backend selects and parameterises the axis source.
type Backend struct {
	// Name is one of the registered backends: sdl, evdev, remote, static.
	Name string `mapstructure:"name"`
	// Device is the evdev node, e.g. /dev/input/event5.
	Device string `mapstructure:"device"`
	// AxisMin and AxisMax are the native evdev range rescaled to 16 bits.
	AxisMin int32 `mapstructure:"axis_min"`
	AxisMax int32 `mapstructure:"axis_max"`
	// URL is the websocket address of a remote axis publisher.
	URL string `mapstructure:"url"`
	// StaticAxes and StaticBaseline feed the static backend.
	StaticAxes     []int32 `mapstructure:"static_axes"`
	StaticBaseline int32   `mapstructure:"static_baseline"`
	// WaitTimeout bounds how long startup waits for a device to appear.
	WaitTimeout time.Duration `mapstructure:"wait_timeout"`
}

// Controller carries the demand settings. Profile names a device profile,
// empty means detect from the device. AxisMap and the flags, when set,
// override whatever the profile says.
type Controller struct {
	Profile string `mapstructure:"profile"`
	AxisMap []int  `mapstructure:"axis_map"`

	ReversedVerticals *bool `mapstructure:"-"`
	SpringyThrottle   *bool `mapstructure:"-"`
	UseButtonForAux   *bool `mapstructure:"-"`
}

var flagKeys = map[string]string{
	"listen":             "listen",
	"poll-hz":            "poll_hz",
	"tray":               "tray",
	"backend":            "backend.name",
	"device":             "backend.device",
	"axis-min":           "backend.axis_min",
	"axis-max":           "backend.axis_max",
	"url":                "backend.url",
	"wait-timeout":       "backend.wait_timeout",
	"profile":            "controller.profile",
	"axis-map":           "controller.axis_map",
	"reversed-verticals": "controller.reversed_verticals",
	"springy-throttle":   "controller.springy_throttle",
	"use-button-for-aux": "controller.use_button_for_aux",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", ":8080")
	v.SetDefault("poll_hz", 60.0)
	v.SetDefault("tray", true)
	v.SetDefault("backend.name", "sdl")
	v.SetDefault("backend.axis_min", -32768)
	v.SetDefault("backend.axis_max", 32767)
	v.SetDefault("backend.wait_timeout", 10*time.Second)
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("simrx", pflag.ContinueOnError)
	fs.String("config", "", "path to a config file (yaml, toml or json)")
	fs.String("listen", ":8080", "address of the demand monitor")
	fs.Float64("poll-hz", 60, "frame poll rate")
	fs.Bool("tray", true, "show the system tray icon (windows only)")
	fs.String("backend", "sdl", "axis backend: sdl, evdev, remote or static")
	fs.String("device", "", "evdev device node")
	fs.Int32("axis-min", -32768, "native minimum of evdev axes")
	fs.Int32("axis-max", 32767, "native maximum of evdev axes")
	fs.String("url", "", "websocket url of a remote axis publisher")
	fs.Duration("wait-timeout", 10*time.Second, "how long to wait for a device at startup")
	fs.String("profile", "", "device profile, empty to detect")
	fs.IntSlice("axis-map", nil, "backend axis for throttle,aileron,elevator,rudder,aux")
	fs.Bool("reversed-verticals", false, "invert throttle and elevator")
	fs.Bool("springy-throttle", false, "integrate a spring-return throttle stick")
	fs.Bool("use-button-for-aux", false, "suppress the aux axis")
	return fs
}

// Load parses args (without the program name) and merges them over the
// environment, the config file and the defaults.
func Load(args []string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, errors.Wrapf(err, "binding flag %s", name)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	cfg.Controller.ReversedVerticals = optionalBool(v, "controller.reversed_verticals")
	cfg.Controller.SpringyThrottle = optionalBool(v, "controller.springy_throttle")
	cfg.Controller.UseButtonForAux = optionalBool(v, "controller.use_button_for_aux")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// optionalBool reports nil unless key was set somewhere other than a flag
// default.
func optionalBool(v *viper.Viper, key string) *bool {
	if !v.IsSet(key) {
		return nil
	}
	b := v.GetBool(key)
	return &b
}

// Validate checks the settings that do not depend on the chosen backend.
func (c *Config) Validate() error {
	if c.PollHz <= 0 {
		return fmt.Errorf("poll_hz must be positive, got %v", c.PollHz)
	}
	if c.Backend.Name == "" {
		return errors.New("backend.name is required")
	}
	if c.Backend.AxisMax <= c.Backend.AxisMin {
		return fmt.Errorf("backend axis range [%d, %d] is empty", c.Backend.AxisMin, c.Backend.AxisMax)
	}
	if n := len(c.Controller.AxisMap); n != 0 && n != 5 {
		return fmt.Errorf("controller.axis_map needs 5 entries, got %d", n)
	}
	return nil
}

// PollInterval is the period between frames.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.PollHz)
}
