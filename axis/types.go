// Package axis implements the per-motor supervisor state machine: the
// AxisState/LockinState enumerations, the bounded task chain, the sticky
// error bitset, the watchdog, the step/dir position input, the control-loop
// scaffold, the three-phase lock-in spin, the four tick-body control modes,
// and the dispatcher that ties them together. This is the centerpiece of
// the repository; everything under hal/, motor/, encoder/, estimator/,
// controller/ and trajectory/ exists to be driven by it.
package axis

// State is the axis's top-level state, mirroring axis.cpp's AxisState_t.
type State uint8

const (
	StateUndefined State = iota
	StateIdle
	StateStartupSequence
	StateFullCalibrationSequence
	StateMotorCalibration
	StateEncoderIndexSearch
	StateEncoderOffsetCalibration
	StateClosedLoopControl
	StateLockinSpin
	StateEncoderDirFind
	StateSensorlessControl
	StateOpenLoopControl
	StatePWMTest
)

func (s State) String() string {
	switch s {
	case StateUndefined:
		return "UNDEFINED"
	case StateIdle:
		return "IDLE"
	case StateStartupSequence:
		return "STARTUP_SEQUENCE"
	case StateFullCalibrationSequence:
		return "FULL_CALIBRATION_SEQUENCE"
	case StateMotorCalibration:
		return "MOTOR_CALIBRATION"
	case StateEncoderIndexSearch:
		return "ENCODER_INDEX_SEARCH"
	case StateEncoderOffsetCalibration:
		return "ENCODER_OFFSET_CALIBRATION"
	case StateClosedLoopControl:
		return "CLOSED_LOOP_CONTROL"
	case StateLockinSpin:
		return "LOCKIN_SPIN"
	case StateEncoderDirFind:
		return "ENCODER_DIR_FIND"
	case StateSensorlessControl:
		return "SENSORLESS_CONTROL"
	case StateOpenLoopControl:
		return "OPEN_LOOP_CONTROL"
	case StatePWMTest:
		return "PWM_TEST"
	default:
		return "UNKNOWN"
	}
}

// LockinState is the lock-in spin's own three-phase sub-state, mirroring
// axis.cpp's run_lockin_spin internal phases.
type LockinState uint8

const (
	LockinInactive LockinState = iota
	LockinRamp
	LockinAccelerate
	LockinConstVel
)

func (s LockinState) String() string {
	switch s {
	case LockinInactive:
		return "INACTIVE"
	case LockinRamp:
		return "RAMP"
	case LockinAccelerate:
		return "ACCELERATE"
	case LockinConstVel:
		return "CONST_VEL"
	default:
		return "UNKNOWN"
	}
}

// taskChainDepth is the bounded FIFO depth used by expanding compound
// states (STARTUP_SEQUENCE, FULL_CALIBRATION_SEQUENCE) into their
// constituent steps, matching axis.cpp's fixed-size task chain array.
const taskChainDepth = 8
