// Package motor models the driven BLDC stage the axis supervisor commands:
// arming/disarming the PWM bridge, running the fixed pwm_test task, and
// reporting the disarmed/fault state do_checks polls every tick. Grounded
// on the teacher's driver-registry pattern (core/driver_commands.go's
// Config{ConfigureFunc,...}/State{Configured,...} split) generalized from a
// generic polled peripheral to a three-phase bridge.
package motor

import (
	"errors"
	"math"
	"sync"

	"axisctl/hal"
)

// ErrNotArmed is returned by operations that require the bridge to be armed.
var ErrNotArmed = errors.New("motor: not armed")

// Direction flips the sign of the commanded electrical phase, mirroring
// axis.cpp's motor_config.direction for wiring-polarity compensation.
type Direction int8

const (
	Forward Direction = 1
	Reverse Direction = -1
)

// Config mirrors axis.cpp's Motor::Config_t fields relevant to this
// repository's scope: wiring polarity, pole count, and whether this motor
// is phase-locked to a sibling axis (spec.md §4.7).
type Config struct {
	Direction    Direction
	PolePairs    uint32
	PhaseLocked  bool
	PWMChannelA  hal.PWMChannel
	PWMChannelB  hal.PWMChannel
	PWMChannelC  hal.PWMChannel
	PWMFrequency uint32 // Hz

	// PhaseResistance and BackEMFConstant parameterize the voltage equation
	// Update uses to turn a current command into a modulation depth:
	// v = i_cmd*PhaseResistance + vel*BackEMFConstant, normalized by
	// BusVoltage and clamped to [-1,1].
	PhaseResistance  float32 // ohms
	BackEMFConstant  float32 // volts per rad/s, electrical
	BusVoltage       float32 // volts, nominal DC bus
}

// Motor is the interface the axis package programs against; spec.md §1
// treats the motor as an opaque sub-component, so only this surface is
// load-bearing for the axis state machine.
type Motor interface {
	// Init configures the PWM channels and leaves the bridge disarmed.
	Init(cfg Config) error
	// Arm enables PWM output. Returns an error if Init was never called.
	Arm() error
	// Disarm disables PWM output immediately; always safe to call.
	Disarm()
	// IsArmed reports whether the bridge currently drives PWM.
	IsArmed() bool
	// UpdatePhase commands a new electrical phase (radians) and
	// normalized modulation depth in [-1,1] (a negative depth reverses the
	// commanded vector) for the current control tick.
	UpdatePhase(phaseRad float32, modulation float32) error
	// Update commands a current setpoint, electrical phase, and electrical
	// velocity for the current control tick: the phase-voltage equation
	// converts current and back-EMF feedforward into a modulation depth,
	// then delegates to UpdatePhase. Returns false (as a non-nil error) on
	// modulation failure.
	Update(currentCmd, phaseRad, vel float32) error
	// PWMTest drives a fixed test duty cycle on phase A only, matching
	// axis.cpp's PWM_TEST task — a bench check, never used as a control mode.
	PWMTest(duty float32) error
	// RunCalibration measures phase resistance/inductance; returns an
	// error if the bridge was not armed first.
	RunCalibration() error
	// DoChecks reports a bridge-level fault (overcurrent, desaturation, ...).
	// The axis's own do_checks aggregates this with voltage/brake checks.
	DoChecks() error
	// Config returns the motor's current configuration.
	Config() Config
}

// Bridge is the default Motor implementation: a three-phase PWM bridge
// driven via hal.PWMDriver, with no current-loop hardware of its own — the
// controller computes the modulation, UpdatePhase only maps it to duty
// cycles.
type Bridge struct {
	mu      sync.Mutex
	cfg     Config
	armed   bool
	lastErr error
}

// New constructs an unconfigured Bridge.
func New() *Bridge { return &Bridge{} }

func (m *Bridge) Init(cfg Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	pwm := hal.MustPWM()
	periodTicks := uint32(0)
	if cfg.PWMFrequency > 0 {
		periodTicks = 1000000000 / cfg.PWMFrequency
	}
	for _, ch := range []hal.PWMChannel{cfg.PWMChannelA, cfg.PWMChannelB, cfg.PWMChannelC} {
		if _, err := pwm.Configure(ch, periodTicks); err != nil {
			return err
		}
	}
	m.cfg = cfg
	m.armed = false
	m.lastErr = nil
	return nil
}

func (m *Bridge) Arm() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfg.PolePairs == 0 {
		return errors.New("motor: not initialized")
	}
	m.armed = true
	return nil
}

func (m *Bridge) Disarm() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.armed = false
	pwm := hal.MustPWM()
	pwm.Disable(m.cfg.PWMChannelA)
	pwm.Disable(m.cfg.PWMChannelB)
	pwm.Disable(m.cfg.PWMChannelC)
}

func (m *Bridge) IsArmed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.armed
}

func (m *Bridge) UpdatePhase(phaseRad float32, modulation float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.armed {
		return ErrNotArmed
	}
	da, db, dc := sinCommDuty(phaseRad, modulation, m.cfg.Direction)
	pwm := hal.MustPWM()
	max := pwm.MaxValue()
	if err := pwm.SetDutyCycle(m.cfg.PWMChannelA, hal.PWMValue(da*float32(max))); err != nil {
		return err
	}
	if err := pwm.SetDutyCycle(m.cfg.PWMChannelB, hal.PWMValue(db*float32(max))); err != nil {
		return err
	}
	return pwm.SetDutyCycle(m.cfg.PWMChannelC, hal.PWMValue(dc*float32(max)))
}

func (m *Bridge) Update(currentCmd, phaseRad, vel float32) error {
	bus := m.cfg.BusVoltage
	if bus <= 0 {
		bus = 24
	}
	voltage := currentCmd*m.cfg.PhaseResistance + vel*m.cfg.BackEMFConstant
	modulation := voltage / bus
	if modulation > 1 {
		modulation = 1
	} else if modulation < -1 {
		modulation = -1
	}
	return m.UpdatePhase(phaseRad, modulation)
}

func (m *Bridge) PWMTest(duty float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.armed {
		return ErrNotArmed
	}
	pwm := hal.MustPWM()
	max := pwm.MaxValue()
	return pwm.SetDutyCycle(m.cfg.PWMChannelA, hal.PWMValue(duty*float32(max)))
}

func (m *Bridge) RunCalibration() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.armed {
		return ErrNotArmed
	}
	// A real bridge would inject a current step and measure R/L here;
	// the bench model accepts calibration unconditionally once armed.
	return nil
}

func (m *Bridge) DoChecks() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Bridge) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// sinCommDuty maps an electrical phase and modulation depth to three
// sinusoidal per-phase duty cycles centered at 0.5, 120 degrees apart.
func sinCommDuty(phaseRad, modulation float32, dir Direction) (a, b, c float32) {
	const twoPiOver3 = 2.0943951
	p := phaseRad * float32(dir)
	a = 0.5 + 0.5*modulation*float32(math.Sin(float64(p)))
	b = 0.5 + 0.5*modulation*float32(math.Sin(float64(p-twoPiOver3)))
	c = 0.5 + 0.5*modulation*float32(math.Sin(float64(p+twoPiOver3)))
	return
}
