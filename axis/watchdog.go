package axis

import "sync/atomic"

// Watchdog mirrors axis.cpp's Axis::watchdog_: a reset_value derived from
// a timeout and the control-loop rate, and a current_value decremented
// once per tick by the post-tick check, never allowed to underflow.
// Reaching zero sets ErrorWatchdogTimerExpired and forces IDLE.
type Watchdog struct {
	resetValue   atomic.Uint32
	currentValue atomic.Uint32
	enabled      atomic.Bool
}

// Configure derives reset_value from timeoutSeconds and the control loop's
// tick rate, mirroring axis.cpp's update_watchdog_settings: reset_value =
// timeout * current_meas_hz, clamped so it never overflows a uint32.
func (w *Watchdog) Configure(timeoutSeconds float32, currentMeasHz float32) {
	if timeoutSeconds <= 0 || currentMeasHz <= 0 {
		w.enabled.Store(false)
		w.resetValue.Store(0)
		return
	}
	ticks := float64(timeoutSeconds) * float64(currentMeasHz)
	const maxUint32 = float64(^uint32(0))
	if ticks > maxUint32 {
		ticks = maxUint32
	}
	w.resetValue.Store(uint32(ticks))
	w.enabled.Store(true)
	w.Feed()
}

// Disable turns off watchdog enforcement without losing the configured
// reset value (spec.md's cold-startup-defaults-off edge case: a freshly
// constructed axis has the watchdog disabled until explicitly configured).
func (w *Watchdog) Disable() { w.enabled.Store(false) }

func (w *Watchdog) Enabled() bool { return w.enabled.Load() }

// Feed resets current_value to reset_value, mirroring axis.cpp's
// watchdog_feed. Each control mode's tick body calls this after its motor
// update succeeds; the idle body does not.
func (w *Watchdog) Feed() {
	w.currentValue.Store(w.resetValue.Load())
}

// Tick decrements current_value by one and reports whether the watchdog
// was already exhausted going into this call, mirroring axis.cpp's check():
// current_value > 0 decrements and reports not-expired; current_value == 0
// reports expired without decrementing further. Never underflows: once at
// zero it stays at zero until the next Feed.
func (w *Watchdog) Tick() (expired bool) {
	if !w.enabled.Load() {
		return false
	}
	for {
		old := w.currentValue.Load()
		if old == 0 {
			return true
		}
		if w.currentValue.CompareAndSwap(old, old-1) {
			return false
		}
	}
}
