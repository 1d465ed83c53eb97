//go:build !linux

package gamepad

import (
	"github.com/pkg/errors"

	"github.com/soar/simrx/internal/axis"
	"github.com/soar/simrx/internal/config"
)

func init() {
	axis.Register("evdev", func(config.Backend) (axis.Source, error) {
		return nil, errors.New("evdev backend is only available on linux")
	})
}
