package axis

import "testing"

func TestWatchdogDisabledByDefault(t *testing.T) {
	var w Watchdog
	if w.Enabled() {
		t.Fatal("expected watchdog disabled before Configure is called")
	}
	if w.Tick() {
		t.Fatal("a disabled watchdog must never report expired")
	}
}

func TestWatchdogExpiresAfterResetTicks(t *testing.T) {
	var w Watchdog
	w.Configure(0.001, 1000) // reset_value = 1 tick

	if w.Tick() {
		t.Fatal("did not expect expiry on the first tick after Feed")
	}
	if !w.Tick() {
		t.Fatal("expected expiry once current_value reaches zero")
	}
}

func TestWatchdogNeverUnderflows(t *testing.T) {
	var w Watchdog
	w.Configure(0.001, 1000)
	w.Tick()
	w.Tick()
	for i := 0; i < 10; i++ {
		if !w.Tick() {
			t.Fatal("expected watchdog to stay expired, not wrap around")
		}
	}
}

func TestWatchdogFeedResets(t *testing.T) {
	var w Watchdog
	w.Configure(0.002, 1000) // reset_value = 2 ticks
	w.Tick()
	w.Feed()
	if w.Tick() {
		t.Fatal("expected Feed to reset the countdown")
	}
}

func TestWatchdogDisableStopsEnforcement(t *testing.T) {
	var w Watchdog
	w.Configure(0.001, 1000)
	w.Tick()
	w.Tick() // now expired
	w.Disable()
	if w.Tick() {
		t.Fatal("a disabled watchdog must never report expired")
	}
}
