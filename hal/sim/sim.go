// Package sim provides an in-memory hal.GPIODriver / hal.PWMDriver /
// hal.ADCDriver backend for host tests and the axissim CLI harness.
// Grounded on the teacher's host-side testing posture: core/gpio_hal.go's
// driver interface kept minimal and a test double substituted for real
// hardware, the same way the teacher swaps core.GPIODriver implementations
// between target and test builds.
package sim

import (
	"sync"

	"axisctl/hal"
)

type pinState struct {
	configured bool
	output     bool
	level      bool
	pull       hal.PullMode
	edge       hal.Edge
	cb         hal.EdgeCallback
}

// Backend is a software model of GPIO/PWM/ADC peripherals. It is safe for
// concurrent use: Drive* methods simulate interrupt-context edges exactly
// the way a real GPIO ISR would invoke a subscribed callback.
type Backend struct {
	mu   sync.Mutex
	pins map[hal.Pin]*pinState

	pwmMax  uint32
	duty    map[hal.PWMChannel]hal.PWMValue
	enabled map[hal.PWMChannel]bool

	adc map[hal.ADCChannel]hal.ADCValue
}

// New creates a Backend and wires it into the hal package as the active
// driver for all three peripheral kinds.
func New() *Backend {
	b := &Backend{
		pins:    make(map[hal.Pin]*pinState),
		pwmMax:  0xFFFF,
		duty:    make(map[hal.PWMChannel]hal.PWMValue),
		enabled: make(map[hal.PWMChannel]bool),
		adc:     make(map[hal.ADCChannel]hal.ADCValue),
	}
	hal.SetGPIODriver(b)
	hal.SetPWMDriver(b)
	hal.SetADCDriver(b)
	return b
}

func (b *Backend) pin(p hal.Pin) *pinState {
	s, ok := b.pins[p]
	if !ok {
		s = &pinState{}
		b.pins[p] = s
	}
	return s
}

// --- hal.GPIODriver ---

func (b *Backend) ConfigureInput(p hal.Pin, pull hal.PullMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.pin(p)
	s.configured = true
	s.output = false
	s.pull = pull
	s.level = pull == hal.PullUp
	return nil
}

func (b *Backend) ConfigureOutput(p hal.Pin) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.pin(p)
	s.configured = true
	s.output = true
	return nil
}

func (b *Backend) Deinit(p hal.Pin) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pins, p)
	return nil
}

func (b *Backend) Read(p hal.Pin) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.pins[p]
	if !ok || !s.configured {
		return false, hal.ErrPinNotConfigured
	}
	return s.level, nil
}

func (b *Backend) Write(p hal.Pin, level bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.pins[p]
	if !ok || !s.configured {
		return hal.ErrPinNotConfigured
	}
	s.level = level
	return nil
}

func (b *Backend) Subscribe(p hal.Pin, edge hal.Edge, cb hal.EdgeCallback) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.pins[p]
	if !ok || !s.configured {
		return hal.ErrPinNotConfigured
	}
	s.edge = edge
	s.cb = cb
	return nil
}

// DriveEdge simulates a hardware edge on pin, invoking any subscribed
// callback synchronously — exactly as a real GPIO ISR would, so callers
// exercise the same "only while active" race the real callback is
// written to tolerate.
func (b *Backend) DriveEdge(p hal.Pin, level bool) {
	b.mu.Lock()
	s, ok := b.pins[p]
	if !ok {
		b.mu.Unlock()
		return
	}
	prev := s.level
	s.level = level
	cb := s.cb
	edge := s.edge
	b.mu.Unlock()

	if cb == nil || prev == level {
		return
	}
	fires := edge == hal.EdgeBoth ||
		(edge == hal.EdgeRising && level) ||
		(edge == hal.EdgeFalling && !level)
	if fires {
		cb(p, level)
	}
}

// --- hal.PWMDriver ---

func (b *Backend) Configure(ch hal.PWMChannel, periodTicks uint32) (uint32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled[ch] = true
	return periodTicks, nil
}

func (b *Backend) SetDutyCycle(ch hal.PWMChannel, value hal.PWMValue) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.duty[ch] = value
	return nil
}

func (b *Backend) MaxValue() uint32 { return b.pwmMax }

func (b *Backend) Disable(ch hal.PWMChannel) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled[ch] = false
	b.duty[ch] = 0
	return nil
}

// DutyCycle reports the last commanded duty cycle, for assertions in tests.
func (b *Backend) DutyCycle(ch hal.PWMChannel) hal.PWMValue {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.duty[ch]
}

// Enabled reports whether a PWM channel is currently enabled.
func (b *Backend) Enabled(ch hal.PWMChannel) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enabled[ch]
}

// --- hal.ADCDriver ---

func (b *Backend) ConfigureChannel(ch hal.ADCChannel) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.adc[ch]; !ok {
		b.adc[ch] = 0
	}
	return nil
}

func (b *Backend) ReadRaw(ch hal.ADCChannel) (hal.ADCValue, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.adc[ch], nil
}

// SetChannel lets a test or the CLI harness drive a simulated analog
// reading (e.g. bus voltage).
func (b *Backend) SetChannel(ch hal.ADCChannel, v hal.ADCValue) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.adc[ch] = v
}
