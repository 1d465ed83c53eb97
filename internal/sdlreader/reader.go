// Package sdlreader is the SDL3 joystick axis backend.
//
// SDL is pumped on a dedicated locked OS thread. The most recent axis sample
// of the active joystick is kept behind a mutex so Acquire never touches SDL.
package sdlreader

import (
	"context"
	"log"
	"runtime"
	"sync"

	"github.com/jupiterrider/purego-sdl3/sdl"
	"github.com/pkg/errors"

	"github.com/soar/simrx/internal/axis"
	"github.com/soar/simrx/internal/config"
)

const pollDelayNS = 4_000_000 // ~250Hz, well above the frame rate

type joystickInfo struct {
	joystick *sdl.Joystick
	device   axis.Device
	id       sdl.JoystickID
}

// Reader samples the first connected joystick through the SDL3 Joystick API.
// SDL already reports axes on the signed 16-bit scale, so the baseline is 0.
type Reader struct {
	joysticks map[sdl.JoystickID]*joystickInfo
	activeID  sdl.JoystickID // the first connected joystick
	hasActive bool

	mu     sync.RWMutex
	raw    axis.Raw
	device axis.Device
	live   bool

	ready     chan struct{}
	readyOnce sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

func init() {
	axis.Register("sdl", func(config.Backend) (axis.Source, error) {
		return Open()
	})
}

// Open initializes SDL on its own thread and starts sampling.
func Open() (*Reader, error) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Reader{
		joysticks: make(map[sdl.JoystickID]*joystickInfo),
		ready:     make(chan struct{}),
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	initErr := make(chan error, 1)
	go r.run(ctx, initErr)
	if err := <-initErr; err != nil {
		cancel()
		return nil, err
	}
	return r, nil
}

func (r *Reader) run(ctx context.Context, initErr chan<- error) {
	defer close(r.done)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if !sdl.Init(sdl.InitJoystick) {
		initErr <- errors.Errorf("SDL init failed: %s", sdl.GetError())
		return
	}
	defer sdl.Quit()

	log.Println("SDL3 Joystick subsystem initialized")
	initErr <- nil

	// Check for already-connected joysticks
	for _, id := range sdl.GetJoysticks() {
		r.openJoystick(id)
	}

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		default:
		}

		r.processEvents()
		r.pollAxes()
		sdl.DelayNS(pollDelayNS)
	}
}

// Acquire returns the latest sample of the active joystick.
func (r *Reader) Acquire() (axis.Raw, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.live {
		return axis.Raw{}, axis.Unavailable("no joystick connected")
	}
	return r.raw, nil
}

// Baseline is always 0 for SDL.
func (r *Reader) Baseline() (int32, error) {
	return 0, nil
}

// Device identifies the active joystick.
func (r *Reader) Device() axis.Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.device
}

// WaitReady blocks until a joystick has been connected.
func (r *Reader) WaitReady(ctx context.Context) error {
	select {
	case <-r.ready:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for a joystick")
	}
}

// Close stops sampling and shuts SDL down.
func (r *Reader) Close() error {
	r.cancel()
	<-r.done
	return nil
}

func (r *Reader) processEvents() {
	var event sdl.Event
	for sdl.PollEvent(&event) {
		switch event.Type() {
		case sdl.EventJoystickAdded:
			r.openJoystick(event.JDevice().Which)

		case sdl.EventJoystickRemoved:
			r.removeJoystick(event.JDevice().Which)
		}
	}
}

func (r *Reader) openJoystick(instanceID sdl.JoystickID) {
	if _, exists := r.joysticks[instanceID]; exists {
		return
	}

	js := sdl.OpenJoystick(instanceID)
	if js == nil {
		log.Printf("Failed to open joystick %d: %s", instanceID, sdl.GetError())
		return
	}

	info := &joystickInfo{
		joystick: js,
		id:       sdl.GetJoystickID(js),
		device: axis.Device{
			Name:      sdl.GetJoystickName(js),
			VendorID:  sdl.GetJoystickVendor(js),
			ProductID: sdl.GetJoystickProduct(js),
		},
	}
	r.joysticks[info.id] = info

	log.Printf("Joystick connected: %s (VID=%04X PID=%04X) axes=%d",
		info.device.Name, info.device.VendorID, info.device.ProductID, sdl.GetNumJoystickAxes(js))

	// Use the first connected joystick as active
	if !r.hasActive {
		r.activate(info)
	}
}

func (r *Reader) activate(info *joystickInfo) {
	r.activeID = info.id
	r.hasActive = true
	log.Printf("Active joystick set: %s (ID=%d)", info.device.Name, info.id)

	r.mu.Lock()
	r.device = info.device
	r.mu.Unlock()

	r.readyOnce.Do(func() { close(r.ready) })
}

func (r *Reader) removeJoystick(instanceID sdl.JoystickID) {
	info, exists := r.joysticks[instanceID]
	if !exists {
		return
	}

	log.Printf("Joystick disconnected: %s", info.device.Name)
	sdl.CloseJoystick(info.joystick)
	delete(r.joysticks, instanceID)

	if !r.hasActive || r.activeID != instanceID {
		return
	}
	r.hasActive = false
	r.mu.Lock()
	r.live = false
	r.mu.Unlock()

	// Promote the next available joystick. Its profile may differ from the
	// one resolved at startup, so the switch is logged.
	for _, js := range r.joysticks {
		if sdl.JoystickConnected(js.joystick) {
			log.Printf("Active joystick switched to: %s, restart to re-detect its profile", js.device.Name)
			r.activate(js)
			break
		}
	}
}

func (r *Reader) closeAll() {
	for id, info := range r.joysticks {
		sdl.CloseJoystick(info.joystick)
		delete(r.joysticks, id)
	}
	r.mu.Lock()
	r.live = false
	r.mu.Unlock()
}

func (r *Reader) pollAxes() {
	if !r.hasActive {
		return
	}

	info, exists := r.joysticks[r.activeID]
	if !exists || !sdl.JoystickConnected(info.joystick) {
		return
	}

	var raw axis.Raw
	n := sdl.GetNumJoystickAxes(info.joystick)
	for i := int32(0); i < n && i < axis.NumAxes; i++ {
		raw[i] = int32(sdl.GetJoystickAxis(info.joystick, i))
	}

	r.mu.Lock()
	r.raw = raw
	r.live = true
	r.mu.Unlock()
}
