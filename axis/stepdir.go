package axis

import (
	"math"
	"sync/atomic"

	"axisctl/hal"
)

// StepDir binds the STEP/DIR GPIO pair and accumulates a position-setpoint
// delta from STEP edges, matching spec.md §4.3. It is active only while
// the axis runs CLOSED_LOOP_CONTROL or OPEN_LOOP_CONTROL; SetActive(true)
// is called on entry and SetActive(false) on exit, including on error.
type StepDir struct {
	stepPin       hal.Pin
	dirPin        hal.Pin
	countsPerStep float32

	active atomic.Bool
	// delta accumulates ±countsPerStep per STEP edge as float32 bits,
	// mirroring axis.cpp's lock-free read-modify-write on
	// controller.pos_setpoint_ from ISR context.
	delta atomic.Uint32
}

// NewStepDir constructs an unconfigured StepDir.
func NewStepDir() *StepDir { return &StepDir{} }

// Configure records the pin assignment and step scale; call before the
// first SetActive(true).
func (s *StepDir) Configure(stepPin, dirPin hal.Pin, countsPerStep float32) {
	s.stepPin = stepPin
	s.dirPin = dirPin
	s.countsPerStep = countsPerStep
}

// SetActive(true) configures DIR as a pull-disabled input and STEP as a
// pull-down input, then subscribes the step edge callback. SetActive(false)
// clears the active flag first — so any in-flight callback becomes a
// no-op — before deinitializing both GPIOs.
func (s *StepDir) SetActive(active bool) error {
	gpio := hal.MustGPIO()
	if !active {
		s.active.Store(false)
		if err := gpio.Deinit(s.stepPin); err != nil {
			return err
		}
		return gpio.Deinit(s.dirPin)
	}
	if err := gpio.ConfigureInput(s.dirPin, hal.PullNone); err != nil {
		return err
	}
	if err := gpio.ConfigureInput(s.stepPin, hal.PullDown); err != nil {
		return err
	}
	if err := gpio.Subscribe(s.stepPin, hal.EdgeRising, s.onStep); err != nil {
		return err
	}
	s.active.Store(true)
	return nil
}

// Active reports whether step/dir input is currently live.
func (s *StepDir) Active() bool { return s.active.Load() }

// onStep runs from GPIO edge-callback context. Only when active does it
// read DIR and accumulate ±countsPerStep.
func (s *StepDir) onStep(pin hal.Pin, level bool) {
	if !s.active.Load() {
		return
	}
	dir, err := hal.MustGPIO().Read(s.dirPin)
	if err != nil {
		return
	}
	d := s.countsPerStep
	if !dir {
		d = -d
	}
	s.addDelta(d)
}

func (s *StepDir) addDelta(d float32) {
	for {
		old := s.delta.Load()
		next := math.Float32bits(math.Float32frombits(old) + d)
		if s.delta.CompareAndSwap(old, next) {
			return
		}
	}
}

// Drain returns the position delta accumulated since the last Drain call
// and resets the accumulator to zero. The control thread calls this once
// per tick and adds the result to the controller's position setpoint.
func (s *StepDir) Drain() float32 {
	for {
		old := s.delta.Load()
		if s.delta.CompareAndSwap(old, 0) {
			return math.Float32frombits(old)
		}
	}
}
