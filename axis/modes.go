package axis

import "axisctl/controller"

// runClosedLoopControl drives the encoder-fed cascade (spec.md §4.5). On
// entry it primes the position setpoint from the encoder's current
// estimate to avoid a setpoint jump, and activates step/dir input if
// configured; both are undone on exit, including on error.
func (ax *Axis) runClosedLoopControl() bool {
	ax.controller.SetPosSetpoint(ax.encoder.PosEstimate())
	if ax.config.StepDir.Enabled {
		if err := ax.stepdir.SetActive(true); err != nil {
			ax.errors.set(ErrorInvalidState)
			return false
		}
	}
	defer func() {
		if ax.stepdir.Active() {
			_ = ax.stepdir.SetActive(false)
		}
		ax.moveProfile.Store(nil)
	}()

	pp := float32(ax.config.Motor.PolePairs)
	var moveElapsed float32
	body := func() bool {
		if ax.stepdir.Active() {
			if delta := ax.stepdir.Drain(); delta != 0 {
				ax.controller.SetPosSetpoint(ax.controller.PosSetpoint() + delta)
			}
		} else if prof := ax.moveProfile.Load(); prof != nil {
			moveElapsed += ax.tickPeriod()
			pos, vel := prof.Eval(moveElapsed)
			ax.controller.SetPosSetpoint(pos)
			ax.controller.SetVelSetpoint(vel)
			if prof.Done(moveElapsed) {
				ax.moveProfile.Store(nil)
				moveElapsed = 0
			}
		}
		current, err := ax.controller.Update(ax.encoder.PosEstimate(), ax.encoder.VelEstimate(), ax.tickPeriod())
		if err != nil {
			ax.errors.set(ErrorControllerFailed)
			return false
		}
		phaseVel := 2 * pi32 * ax.encoder.VelEstimate() * pp
		if err := ax.motor.Update(current, ax.encoder.Phase(), phaseVel); err != nil {
			ax.errors.set(ErrorMotorFailed)
			return false
		}
		ax.watchdog.Feed()
		return true
	}
	return ax.runScaffold(body)
}

// runSensorlessControl drives the sensorless estimator's PLL output
// through the same controller cascade. Rejected outright if the
// controller is configured for position control — sensorless operation
// has no absolute position reference (spec.md §4.5).
func (ax *Axis) runSensorlessControl() bool {
	if ax.controller.Config().ControlMode == controller.ModePositionControl {
		ax.errors.set(ErrorPosCtrlDuringSensorless)
		return false
	}
	body := func() bool {
		current, err := ax.controller.Update(ax.estimator.PosEstimate(), ax.estimator.VelEstimate(), ax.tickPeriod())
		if err != nil {
			ax.errors.set(ErrorControllerFailed)
			return false
		}
		if err := ax.motor.Update(current, ax.estimator.Phase(), ax.estimator.ElectricalVel()); err != nil {
			ax.errors.set(ErrorMotorFailed)
			return false
		}
		ax.watchdog.Feed()
		return true
	}
	return ax.runScaffold(body)
}

// runOpenLoopControl advances a free-running phase setpoint at the
// controller's commanded velocity, or — when phase-locked — copies the
// phase setpoint from the sibling axis instead (spec.md §4.5).
func (ax *Axis) runOpenLoopControl() bool {
	ax.phaseSetpoint = 0
	if ax.config.StepDir.Enabled {
		if err := ax.stepdir.SetActive(true); err != nil {
			ax.errors.set(ErrorInvalidState)
			return false
		}
	}
	defer func() {
		if ax.stepdir.Active() {
			_ = ax.stepdir.SetActive(false)
		}
	}()

	pp := float32(ax.config.Motor.PolePairs)
	body := func() bool {
		if ax.motor.Config().PhaseLocked {
			if ax.sibling == nil || ax.sibling.CurrentState() != StateOpenLoopControl {
				ax.errors.set(ErrorInvalidState)
				return false
			}
			ax.phaseSetpoint = ax.sibling.PhaseSetpoint()
		} else {
			phaseVel := 2 * pi32 * ax.controller.VelSetpoint() * pp
			ax.phaseSetpoint = wrapPmPi(ax.phaseSetpoint + phaseVel*ax.tickPeriod())
		}
		if err := ax.motor.Update(ax.controller.CurrentSetpoint(), ax.phaseSetpoint, 0); err != nil {
			ax.errors.set(ErrorMotorFailed)
			return false
		}
		ax.watchdog.Feed()
		return true
	}
	return ax.runScaffold(body)
}

// runIdle disarms the motor immediately on entry, runs trivial scaffold
// ticks (which service pre/post-tick work and tolerate missed signals)
// until an external request arrives, and attempts to re-arm on exit.
// Arming failure reports the task as failed, which keeps the axis in
// idle (spec.md §4.5).
func (ax *Axis) runIdle() bool {
	ax.motor.Disarm()
	if !ax.runScaffold(func() bool { return true }) {
		return false
	}
	return ax.motor.Arm() == nil
}
