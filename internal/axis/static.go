package axis

import "sync"

// Static is a source whose sample is set directly. It backs the "static"
// backend and doubles as the bench source in tests.
type Static struct {
	mu       sync.Mutex
	raw      Raw
	baseline int32
	err      error
	device   Device
	acquires int
	closed   bool
}

// NewStatic returns a source that always reports raw and baseline.
func NewStatic(raw Raw, baseline int32) *Static {
	return &Static{raw: raw, baseline: baseline, device: Device{Name: "static"}}
}

func (s *Static) Acquire() (Raw, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acquires++
	if s.closed {
		return Raw{}, Unavailable("static source closed")
	}
	if s.err != nil {
		return Raw{}, s.err
	}
	return s.raw, nil
}

func (s *Static) Baseline() (int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	return s.baseline, nil
}

func (s *Static) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *Static) Device() Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.device
}

// Set replaces the reported sample.
func (s *Static) Set(raw Raw) {
	s.mu.Lock()
	s.raw = raw
	s.mu.Unlock()
}

// SetAxis replaces a single slot of the reported sample.
func (s *Static) SetAxis(index int, value int32) {
	s.mu.Lock()
	s.raw[index] = value
	s.mu.Unlock()
}

// SetBaseline replaces the reported baseline.
func (s *Static) SetBaseline(baseline int32) {
	s.mu.Lock()
	s.baseline = baseline
	s.mu.Unlock()
}

// SetDevice replaces the reported device identity.
func (s *Static) SetDevice(d Device) {
	s.mu.Lock()
	s.device = d
	s.mu.Unlock()
}

// Fail makes every following call return err. A nil err clears the failure.
func (s *Static) Fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Acquires returns how many times Acquire has been called.
func (s *Static) Acquires() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acquires
}
