package axis

// runLockinSpin drives the three-phase open-loop rotor-alignment routine
// (spec.md §4.4): ramp current while sweeping phase, accelerate velocity,
// then hold constant velocity until an exit condition fires. Used both as
// the LOCKIN_SPIN task and as SENSORLESS_CONTROL's mandatory warm-up.
func (ax *Axis) runLockinSpin() bool {
	cfg := ax.config.Lockin
	dt := ax.tickPeriod()

	ax.lockinState = LockinRamp
	var elapsed, vel, distance, phase float32

	rampTime := cfg.RampTime
	if rampTime <= 0 {
		rampTime = 1
	}
	rampBody := func() bool {
		elapsed += dt
		x := elapsed / rampTime
		if x > 1 {
			x = 1
		}
		phase = wrapPmPi(cfg.RampDistance * x)
		current := cfg.Current * x
		if err := ax.motor.Update(current, phase, 0); err != nil {
			ax.errors.set(ErrorMotorFailed)
			return false
		}
		ax.watchdog.Feed()
		return x < 1
	}
	if !ax.runScaffold(rampBody) {
		ax.lockinState = LockinInactive
		return false
	}

	ax.lockinState = LockinAccelerate
	vel = cfg.RampDistance / rampTime
	distance = cfg.RampDistance
	phase = wrapPmPi(cfg.RampDistance)
	accelBody := func() bool {
		vel += cfg.Accel * dt
		distance += vel * dt
		phase = wrapPmPi(phase + vel*dt)
		if err := ax.motor.Update(cfg.Current, phase, vel); err != nil {
			ax.errors.set(ErrorMotorFailed)
			return false
		}
		ax.watchdog.Feed()
		return absf(vel) < absf(cfg.Vel)
	}
	if !ax.runScaffold(accelBody) {
		ax.lockinState = LockinInactive
		return false
	}

	if !ax.encoder.IndexFound() {
		ax.encoder.SetIdxSubscribe(func() {})
	}

	ax.lockinState = LockinConstVel
	vel = cfg.Vel
	constBody := func() bool {
		distance += vel * dt
		phase = wrapPmPi(phase + vel*dt)
		if err := ax.motor.Update(cfg.Current, phase, vel); err != nil {
			ax.errors.set(ErrorMotorFailed)
			return false
		}
		ax.watchdog.Feed()
		if cfg.FinishOnVel && absf(vel) >= absf(cfg.Vel) {
			return false
		}
		if cfg.FinishOnDistance && absf(distance) >= absf(cfg.FinishDistance) {
			return false
		}
		if cfg.FinishOnEncIdx && ax.encoder.IndexFound() {
			return false
		}
		return true
	}
	ok := ax.runScaffold(constBody)
	ax.encoder.SetIdxSubscribe(nil)
	ax.lockinState = LockinInactive
	return ok
}

// tickPeriod returns the control loop's tick period in seconds, derived
// from the configured current-measurement rate.
func (ax *Axis) tickPeriod() float32 {
	if ax.currentMeasHz <= 0 {
		return 1
	}
	return 1.0 / ax.currentMeasHz
}
