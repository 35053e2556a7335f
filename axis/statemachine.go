package axis

// dispatchOnce services one state transition: it resolves the next state
// to run (expanding a compound request into the task chain if necessary),
// checks that state's preconditions, dispatches it, and advances or fails
// the chain depending on the outcome. Returns false only when the axis
// should stop entirely (never, in the current design — idle always loops),
// kept as a hook for a future cooperative-shutdown request.
func (ax *Axis) dispatchOnce() bool {
	state := ax.chain.head()
	if state == StateUndefined {
		requested := State(ax.requestedState.Swap(uint32(StateUndefined)))
		ax.loadTaskChain(requested)
		if requested != StateUndefined {
			ax.timing.record(EventRequestAccepted, uint32(requested), 0)
		}
		state = ax.chain.head()
	}
	if state == StateUndefined {
		state = StateIdle
	}

	if !ax.checkPreconditions(state) {
		ax.errors.set(ErrorInvalidState)
		ax.timing.record(EventRequestRejected, uint32(state), 0)
		ax.chain.fail()
		ax.setCurrentState(StateIdle)
		ax.requestedState.Store(uint32(StateUndefined))
		return true
	}

	ax.setCurrentState(state)
	if ax.RequestedState() == state {
		ax.timing.record(EventRequestAccepted, uint32(state), 0)
		ax.requestedState.Store(uint32(StateUndefined))
	}

	ok := ax.dispatchState(state)
	if ok {
		ax.chain.advance()
	} else {
		ax.chain.fail()
	}
	return true
}

// loadTaskChain expands a freshly requested state into the task chain.
// STARTUP_SEQUENCE and FULL_CALIBRATION_SEQUENCE are the only compound
// requests; every other request (including StateUndefined, which means
// "nothing new requested") becomes — or stays — a single-entry chain.
func (ax *Axis) loadTaskChain(requested State) {
	useIndex := ax.encoder.Config().UseIndex
	switch requested {
	case StateStartupSequence:
		ax.chain.expand(startupSequence(startupFlags{
			motorCalibration:         ax.config.Startup.MotorCalibration,
			encoderIndexSearch:       ax.config.Startup.EncoderIndexSearch,
			encoderOffsetCalibration: ax.config.Startup.EncoderOffsetCalibration,
			closedLoopControl:        ax.config.Startup.ClosedLoopControl,
			sensorlessControl:        ax.config.Startup.SensorlessControl,
		}, useIndex)...)
	case StateFullCalibrationSequence:
		ax.chain.expand(fullCalibrationSequence(useIndex)...)
	case StateUndefined:
		ax.chain.expand(StateIdle)
	default:
		ax.chain.expand(requested)
	}
}

// checkPreconditions gates motion-producing states behind a nonzero motor
// direction, with ENCODER_INDEX_SEARCH only requiring it when index search
// is configured unidirectional, and gates CLOSED_LOOP_CONTROL behind the
// encoder reporting ready (spec.md §4.6's precondition list).
func (ax *Axis) checkPreconditions(state State) bool {
	switch state {
	case StateMotorCalibration, StateEncoderDirFind, StatePWMTest, StateIdle:
		return true
	case StateEncoderIndexSearch:
		if ax.encoder.Config().IdxSearchUnidirectional && ax.config.Motor.Direction == 0 {
			return false
		}
		return true
	case StateClosedLoopControl:
		if ax.config.Motor.Direction == 0 {
			return false
		}
		return ax.encoder.IsReady()
	default:
		return ax.config.Motor.Direction != 0
	}
}

// dispatchState runs the concrete task for state to completion and reports
// success. Compound states never reach here: dispatchOnce always expands
// them via loadTaskChain before calling this.
func (ax *Axis) dispatchState(state State) bool {
	switch state {
	case StateIdle:
		return ax.runIdle()
	case StateMotorCalibration:
		return ax.motor.RunCalibration() == nil
	case StateEncoderIndexSearch:
		return ax.encoder.RunIndexSearch() == nil
	case StateEncoderDirFind:
		return ax.encoder.RunDirectionFind(float32(ax.config.Motor.Direction)*ax.config.Lockin.Vel) == nil
	case StateEncoderOffsetCalibration:
		return ax.encoder.RunOffsetCalibration() == nil
	case StateLockinSpin:
		return ax.runLockinSpin()
	case StateClosedLoopControl:
		return ax.runClosedLoopControl()
	case StateSensorlessControl:
		// Sensorless operation has no absolute phase reference at rest, so
		// every entry first runs the lock-in spin to align and spin up the
		// rotor; only once that completes does the sensorless PLL take
		// over, seeded with the lock-in's final velocity as its starting
		// vel_setpoint so the handoff doesn't stall the motor.
		if !ax.runLockinSpin() {
			return false
		}
		ax.controller.SetVelSetpoint(ax.config.Lockin.Vel)
		return ax.runSensorlessControl()
	case StateOpenLoopControl:
		return ax.runOpenLoopControl()
	case StatePWMTest:
		return ax.motor.PWMTest(1.0) == nil
	default:
		return false
	}
}
