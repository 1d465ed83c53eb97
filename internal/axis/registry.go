package axis

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/soar/simrx/internal/config"
)

// Factory opens a source from its backend settings.
type Factory func(cfg config.Backend) (Source, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a backend available under name. Backends call it from init.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("axis: backend %q registered twice", name))
	}
	registry[name] = f
}

// Backends lists the registered backend names.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open selects the backend named by cfg.Name.
func Open(cfg config.Backend) (Source, error) {
	registryMu.RLock()
	f, ok := registry[cfg.Name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown axis backend %q (have %v)", cfg.Name, Backends())
	}
	src, err := f(cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s backend", cfg.Name)
	}
	return src, nil
}

func init() {
	Register("static", func(cfg config.Backend) (Source, error) {
		if len(cfg.StaticAxes) > NumAxes {
			return nil, fmt.Errorf("static_axes has %d entries, at most %d allowed", len(cfg.StaticAxes), NumAxes)
		}
		var raw Raw
		copy(raw[:], cfg.StaticAxes)
		return NewStatic(raw, cfg.StaticBaseline), nil
	})
}
