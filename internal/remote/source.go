// Package remote is an axis backend fed over a websocket, for running the
// receiver on a different host than the one the joystick is plugged into.
//
// The publisher sends one text message per sample:
//
//	{"axes":[0,-32767,32767,0,0,0],"baseline":0,"device":"Xbox 360 Controller"}
//
// Baseline and device may be omitted, missing axes read 0.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lxzan/gws"
	"github.com/pkg/errors"

	"github.com/soar/simrx/internal/axis"
	"github.com/soar/simrx/internal/config"
)

const closeTimeout = 2 * time.Second

func init() {
	axis.Register("remote", func(cfg config.Backend) (axis.Source, error) {
		return Dial(cfg.URL)
	})
}

// Sample is the message a publisher sends.
type Sample struct {
	Axes     []int32 `json:"axes"`
	Baseline int32   `json:"baseline"`
	Device   string  `json:"device,omitempty"`
}

// Decode parses and checks one sample message.
func Decode(data []byte) (Sample, error) {
	var s Sample
	if err := json.Unmarshal(data, &s); err != nil {
		return s, errors.Wrap(err, "decoding axis sample")
	}
	if len(s.Axes) == 0 {
		return s, errors.New("axis sample has no axes")
	}
	if len(s.Axes) > axis.NumAxes {
		return s, fmt.Errorf("axis sample has %d axes, at most %d allowed", len(s.Axes), axis.NumAxes)
	}
	return s, nil
}

// Source holds the latest sample received from the publisher.
type Source struct {
	gws.BuiltinEventHandler

	url  string
	conn *gws.Conn

	mu        sync.RWMutex
	raw       axis.Raw
	baseline  int32
	device    axis.Device
	have      bool
	connected bool
	rejected  uint64

	ready chan struct{}
	once  sync.Once
	done  chan struct{}
}

func newSource(url string) *Source {
	return &Source{
		url:    url,
		device: axis.Device{Name: url},
		ready:  make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Dial connects to a publisher at url.
func Dial(url string) (*Source, error) {
	if url == "" {
		return nil, errors.New("remote backend needs a url")
	}
	s := newSource(url)
	conn, _, err := gws.NewClient(s, &gws.ClientOption{Addr: url})
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", url)
	}
	s.conn = conn
	s.connected = true

	go func() {
		conn.ReadLoop()
		close(s.done)
	}()
	log.Printf("Remote axis publisher connected: %s", url)
	return s, nil
}

func (s *Source) OnClose(socket *gws.Conn, err error) {
	s.mu.Lock()
	s.connected = false
	s.mu.Unlock()
	log.Printf("Remote axis publisher %s disconnected: %v", s.url, err)
}

func (s *Source) OnPing(socket *gws.Conn, payload []byte) {
	_ = socket.WritePong(payload)
}

func (s *Source) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()
	s.handle(message.Bytes())
}

func (s *Source) handle(data []byte) {
	sample, err := Decode(data)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.rejected++
		if s.rejected == 1 || s.rejected%100 == 0 {
			log.Printf("Rejected %d samples from %s: %v", s.rejected, s.url, err)
		}
		return
	}

	var raw axis.Raw
	copy(raw[:], sample.Axes)
	s.raw = raw
	s.baseline = sample.Baseline
	if sample.Device != "" {
		s.device.Name = sample.Device
	}
	s.have = true
	s.once.Do(func() { close(s.ready) })
}

func (s *Source) Acquire() (axis.Raw, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.connected {
		return axis.Raw{}, axis.Unavailable("remote publisher %s disconnected", s.url)
	}
	if !s.have {
		return axis.Raw{}, axis.Unavailable("no sample from %s yet", s.url)
	}
	return s.raw, nil
}

func (s *Source) Baseline() (int32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.have {
		return 0, axis.Unavailable("no sample from %s yet", s.url)
	}
	return s.baseline, nil
}

func (s *Source) Device() axis.Device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.device
}

// WaitReady blocks until the first valid sample arrives.
func (s *Source) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-s.done:
		return axis.Unavailable("remote publisher %s closed before sending a sample", s.url)
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for a remote sample")
	}
}

func (s *Source) Close() error {
	if s.conn == nil {
		return nil
	}
	s.conn.WriteClose(1000, nil)
	select {
	case <-s.done:
	case <-time.After(closeTimeout):
		log.Printf("Remote axis connection to %s did not close within %v", s.url, closeTimeout)
	}
	return nil
}
