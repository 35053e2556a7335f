package axis

import (
	"context"
	"math"
	"sync/atomic"

	"axisctl/config"
	"axisctl/controller"
	"axisctl/encoder"
	"axisctl/estimator"
	"axisctl/hal"
	"axisctl/motor"
	"axisctl/telemetry"
	"axisctl/trajectory"
)

// Axis is the per-motor supervisor: it owns one each of the sub-components
// below, the task chain, the sticky error bitset and the control-loop
// scaffold, and runs as a single goroutine started by Run. Fields reached
// from ISR/hardware-callback context (errors, signal, the step/dir
// accumulator inside stepdir, currentState/requestedState) use atomics;
// everything else is only ever touched by the Run goroutine.
type Axis struct {
	config config.Config

	motor      motor.Motor
	encoder    encoder.Encoder
	estimator  *estimator.SensorlessEstimator
	controller controller.Controller
	trajectory *trajectory.TrapezoidalTrajectory
	stepdir    *StepDir
	watchdog   Watchdog

	errors errorState
	signal *tickSignal

	logger Logger
	timing timingRing

	currentMeasHz float32
	phaseSetpoint float32
	lockinState   LockinState

	currentState   atomic.Uint32
	requestedState atomic.Uint32
	threadIDValid  atomic.Bool

	// sibling is a non-owning reference to the other axis in a phase-locked
	// pair, injected by SetSibling rather than looked up through a global
	// registry (spec.md §9's "sibling lookup as injected reference").
	sibling *Axis

	chain taskChain

	// vbusReader samples the bus voltage in volts. Defaults to a function
	// returning NaN, matching an axis with no ADC channel configured for
	// VBus — do_checks's comparisons then fail both bounds, never tripping.
	vbusReader func() float32

	brakeResistorArmed atomic.Bool

	// moveProfile is the trapezoidal profile CLOSED_LOOP_CONTROL evaluates
	// once per tick when a position move is in flight, installed by MoveTo
	// from any goroutine and consumed only by the control goroutine.
	moveProfile atomic.Pointer[trajectory.Profile]
}

// New constructs an unconfigured Axis. Call Init before Run.
func New() *Axis {
	ax := &Axis{
		motor:      motor.New(),
		encoder:    encoder.New(),
		estimator:  estimator.New(),
		controller: controller.New(),
		stepdir:    NewStepDir(),
		signal:     newTickSignal(),
		logger:     noopLogger{},
		vbusReader: func() float32 { return float32(math.NaN()) },
	}
	ax.brakeResistorArmed.Store(true)
	return ax
}

// SetLogger installs the diagnostic sink; passing nil restores the no-op
// default.
func (ax *Axis) SetLogger(l Logger) {
	if l == nil {
		l = noopLogger{}
	}
	ax.logger = l
}

// SetSibling registers the other axis of a phase-locked pair. A nil sibling
// is valid and is what OPEN_LOOP_CONTROL's phase-lock branch checks for.
func (ax *Axis) SetSibling(sibling *Axis) { ax.sibling = sibling }

// Init wires every sub-component in a fixed order — motor, encoder,
// sensorless estimator, controller, trajectory, step/dir, watchdog, VBus
// sensing — short-circuiting on the first failure, mirroring axis.cpp's
// Axis::Init sequencing of its owned objects.
func (ax *Axis) Init(cfg config.Config) error {
	ax.config = cfg

	if err := ax.motor.Init(motor.Config{
		Direction:       motor.Direction(cfg.Motor.Direction),
		PolePairs:       cfg.Motor.PolePairs,
		PhaseLocked:     cfg.Motor.PhaseLocked,
		PWMChannelA:     hal.PWMChannel(cfg.Motor.PWMChannelA),
		PWMChannelB:     hal.PWMChannel(cfg.Motor.PWMChannelB),
		PWMChannelC:     hal.PWMChannel(cfg.Motor.PWMChannelC),
		PWMFrequency:    cfg.Motor.PWMFrequency,
		PhaseResistance: cfg.Motor.PhaseResistance,
		BackEMFConstant: cfg.Motor.BackEMFConstant,
		BusVoltage:      cfg.Motor.BusVoltage,
	}); err != nil {
		return err
	}

	if err := ax.encoder.Init(encoder.Config{
		CPR:                     cfg.Encoder.CPR,
		PolePairs:               cfg.Motor.PolePairs,
		UseIndex:                cfg.Encoder.UseIndex,
		IdxSearchUnidirectional: cfg.Encoder.IdxSearchUnidirectional,
		IndexPin:                hal.Pin(cfg.Encoder.IndexPin),
		APin:                    hal.Pin(cfg.Encoder.APin),
		BPin:                    hal.Pin(cfg.Encoder.BPin),
	}); err != nil {
		return err
	}

	if err := ax.estimator.Init(estimator.Config{
		PLLBandwidth: 2 * pi32 * 1000,
		PolePairs:    cfg.Motor.PolePairs,
	}); err != nil {
		return err
	}

	if err := ax.controller.Init(controller.Config{
		ControlMode:  controller.Mode(cfg.Controller.ControlMode),
		PosGain:      cfg.Controller.PosGain,
		VelGain:      cfg.Controller.VelGain,
		VelIntegGain: cfg.Controller.VelIntegGain,
		VelLimit:     cfg.Controller.VelLimit,
		CurrentLimit: cfg.Controller.CurrentLimit,
	}); err != nil {
		return err
	}

	ax.trajectory = trajectory.New(trajectory.Config{
		VelLimit:   cfg.Trajectory.VelLimit,
		AccelLimit: cfg.Trajectory.AccelLimit,
		DecelLimit: cfg.Trajectory.DecelLimit,
	})

	if cfg.StepDir.Enabled {
		ax.stepdir.Configure(hal.Pin(cfg.StepDir.StepPin), hal.Pin(cfg.StepDir.DirPin), cfg.StepDir.CountsPerStep)
	}

	ax.currentMeasHz = cfg.CurrentMeasHz
	if cfg.Watchdog.Enabled {
		ax.watchdog.Configure(cfg.Watchdog.TimeoutSec, cfg.CurrentMeasHz)
	} else {
		ax.watchdog.Disable()
	}

	if cfg.VBus.ADCChannel != 0 || cfg.VBus.Scale != 0 {
		ch := hal.ADCChannel(cfg.VBus.ADCChannel)
		scale := cfg.VBus.Scale
		adc := hal.MustADC()
		if err := adc.ConfigureChannel(ch); err != nil {
			return err
		}
		ax.vbusReader = func() float32 {
			raw, err := adc.ReadRaw(ch)
			if err != nil {
				return float32(math.NaN())
			}
			return float32(raw) * scale
		}
	}

	ax.brakeResistorArmed.Store(true)
	ax.errors.clearAll()
	ax.currentState.Store(uint32(StateUndefined))
	ax.requestedState.Store(uint32(StateUndefined))
	return nil
}

// Run starts the axis's control goroutine: it installs the cogging-map
// compensation table exactly once, matching axis.cpp's allocate-on-thread-
// start lifecycle, attempts an initial arm, and then dispatches states
// until ctx is cancelled.
func (ax *Axis) Run(ctx context.Context) {
	ax.threadIDValid.Store(true)
	defer ax.threadIDValid.Store(false)

	ax.controller.SetCoggingMap(ax.config.Controller.CoggingMap)
	_ = ax.motor.Arm()
	ax.setCurrentState(StateIdle)

	for ctx.Err() == nil {
		if !ax.dispatchOnce() {
			return
		}
	}
}

// CurrentState returns the state the dispatcher is actively running.
func (ax *Axis) CurrentState() State { return State(ax.currentState.Load()) }

func (ax *Axis) setCurrentState(s State) {
	ax.currentState.Store(uint32(s))
	ax.timing.record(EventStateEnter, uint32(s), 0)
}

// RequestedState returns the pending state request, or StateUndefined if
// none is outstanding.
func (ax *Axis) RequestedState() State { return State(ax.requestedState.Load()) }

// RequestState asks the dispatcher to switch to s once the current task
// finishes (or immediately, if idle). Safe to call from any goroutine: it
// only touches the atomically-stored requestedState and the atomic error
// bitset, never the timing ring, which is single-writer (the control
// goroutine records the acceptance once it observes the request).
// Accepting a new request clears ErrorInvalidState, mirroring axis.cpp's
// rule that a fresh state request supersedes a stale INVALID_STATE fault.
func (ax *Axis) RequestState(s State) {
	ax.requestedState.Store(uint32(s))
	ax.errors.clear(ErrorInvalidState)
}

// SignalCurrentMeas is the ISR entry point: the current-measurement
// interrupt calls this once per sample to wake the control goroutine.
func (ax *Axis) SignalCurrentMeas() { ax.signal.raise() }

// PhaseSetpoint returns the electrical phase OPEN_LOOP_CONTROL last
// commanded, for a phase-locked sibling to read.
func (ax *Axis) PhaseSetpoint() float32 { return ax.phaseSetpoint }

// Errors returns the current sticky error bitset.
func (ax *Axis) Errors() ErrorFlags { return ax.errors.get() }

// ClearErrors clears every fault flag, allowing a subsequent state request
// to proceed past a latched fault.
func (ax *Axis) ClearErrors() { ax.errors.clearAll() }

// SetBrakeResistorArmed updates the brake-resistor-armed latch a hardware
// fault callback would otherwise drive. Only meaningful when the axis's
// brake resistor is enabled in configuration.
func (ax *Axis) SetBrakeResistorArmed(armed bool) { ax.brakeResistorArmed.Store(armed) }

// doChecks runs the axis-level fault checks every tick's post-tick phase
// performs (spec.md §4.7): brake resistor armed, motor armed while not
// idle, bus voltage within bounds, and the motor/encoder sub-component
// checks. Bus-voltage comparisons are plain float comparisons against a
// possibly-NaN reading; Go's comparison operators report false against NaN
// on either side, so an unconfigured VBus sensor never trips a fault.
func (ax *Axis) doChecks() {
	if ax.config.BrakeResistor.Enabled && !ax.brakeResistorArmed.Load() {
		ax.errors.set(ErrorBrakeResistorDisarmed)
	}
	if ax.CurrentState() != StateIdle && !ax.motor.IsArmed() {
		ax.errors.set(ErrorMotorDisarmed)
	}

	vbus := ax.vbusReader()
	if vbus < ax.config.VBus.UndervoltageTrip {
		ax.errors.set(ErrorUnderVoltage)
	}
	if vbus > ax.config.VBus.OvervoltageTrip {
		ax.errors.set(ErrorOverVoltage)
	}

	if err := ax.motor.DoChecks(); err != nil {
		ax.errors.set(ErrorMotorFailed)
	}
	if err := ax.encoder.DoChecks(); err != nil {
		ax.errors.set(ErrorEncoderFailed)
	}

	if ax.errors.get() != ErrorNone {
		ax.timing.record(EventErrorSet, uint32(ax.errors.get()), 0)
	}
}

// Status builds the externally observable snapshot spec.md §7 says an
// outside observer polls via the telemetry layer: current/requested state,
// the sticky error bitset, and a position/velocity estimate. It prefers the
// encoder's estimate once ready, falling back to the sensorless estimator
// otherwise, so a dashboard sees a continuous reading across the handoff.
func (ax *Axis) Status() telemetry.Status {
	pos, vel := ax.estimator.PosEstimate(), ax.estimator.VelEstimate()
	if ax.encoder.IsReady() {
		pos, vel = ax.encoder.PosEstimate(), ax.encoder.VelEstimate()
	}
	return telemetry.Status{
		CurrentState:   uint8(ax.CurrentState()),
		RequestedState: uint8(ax.RequestedState()),
		ErrorFlags:     uint32(ax.Errors()),
		PosEstimate:    pos,
		VelEstimate:    vel,
	}
}

// MoveTo plans a trapezoidal move from the encoder's current position
// estimate to target and installs it as CLOSED_LOOP_CONTROL's active
// profile; the control loop consumes it on its next tick and clears it
// once the move completes. Safe to call from any goroutine. Ignored while
// step/dir input is active, which owns the position setpoint instead.
func (ax *Axis) MoveTo(target float32) {
	p := ax.trajectory.Init(ax.encoder.PosEstimate(), target)
	ax.moveProfile.Store(&p)
}

// DecodeStepDirPins tears down any active step/dir input and records the
// pin assignment and step scale from cfg, for use after a live
// configuration reload changes them. The GPIOs are configured again on the
// next SetActive(true), not here.
func (ax *Axis) DecodeStepDirPins(cfg config.StepDirConfig) {
	if ax.stepdir.Active() {
		_ = ax.stepdir.SetActive(false)
	}
	ax.config.StepDir = cfg
	ax.stepdir.Configure(hal.Pin(cfg.StepPin), hal.Pin(cfg.DirPin), cfg.CountsPerStep)
	// TODO: reinit GPIOs here if the axis is mid-task when the reload lands.
}
