package axis

import "time"

// currentMeasTimeout bounds the scaffold's signal wait (spec.md §4.1's
// PH_CURRENT_MEAS_TIMEOUT). Exceeding it outside IDLE is fatal to the
// current task; inside IDLE it is tolerated.
const currentMeasTimeout = 50 * time.Millisecond

// tickSignal is the one-shot, coalescing wake-up the current-measurement
// ISR raises to the control goroutine: set-only, auto-cleared on wait,
// and multiple raises between waits collapse to a single wake-up (spec.md
// §5's concurrency model).
type tickSignal struct {
	ch chan struct{}
}

func newTickSignal() *tickSignal {
	return &tickSignal{ch: make(chan struct{}, 1)}
}

// raise is safe to call from ISR/hardware-callback context.
func (s *tickSignal) raise() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

func (s *tickSignal) wait(timeout time.Duration) bool {
	select {
	case <-s.ch:
		return true
	case <-time.After(timeout):
		return false
	}
}

// tickBody is the per-mode control logic the scaffold invokes once per
// current-measurement tick. It returns false to end the current task; the
// reason (success or failure) is reflected in the axis's error bitset.
type tickBody func() bool

// preTick runs the updates that happen every tick regardless of mode:
// encoder sampling and sensorless-estimator tracking (spec.md §4.1 step 2).
// Returns false if either update fails, having already recorded the
// relevant error. The watchdog is fed by the tick body, not here — see
// §2's "decrementing counter fed by control-loop body": a mode that stops
// making progress stops feeding, and postTick's Tick() counts it down.
func (ax *Axis) preTick(dt float32) bool {
	if err := ax.encoder.Update(dt); err != nil {
		ax.errors.set(ErrorEncoderFailed)
		return false
	}
	ax.estimator.Update(dt, ax.encoder.Phase())
	return true
}

// postTick runs do_checks, decrements the watchdog, and polls for a
// pending state request (spec.md §4.1 steps 4-6). terminate reports
// whether the scaffold loop should stop; success reports the reason.
func (ax *Axis) postTick() (terminate bool, success bool) {
	ax.doChecks()
	if ax.errors.get() != ErrorNone {
		return true, false
	}
	if ax.watchdog.Tick() {
		ax.errors.set(ErrorWatchdogTimerExpired)
		return true, false
	}
	if ax.RequestedState() != StateUndefined {
		return true, true
	}
	return false, true
}

// runScaffold repeats wait → pre-tick → tick body → post-tick until the
// tick body or a post-tick check ends the task. The order is fixed and
// mandatory (spec.md §5); body must not block and must finish within one
// tick period.
func (ax *Axis) runScaffold(body tickBody) bool {
	for {
		if !ax.signal.wait(currentMeasTimeout) {
			if ax.CurrentState() == StateIdle {
				continue
			}
			return false
		}

		dt := float32(1)
		if ax.currentMeasHz > 0 {
			dt = 1.0 / ax.currentMeasHz
		}
		if !ax.preTick(dt) {
			return false
		}

		if !body() {
			return ax.errors.get() == ErrorNone
		}

		if terminate, success := ax.postTick(); terminate {
			return success
		}
	}
}
