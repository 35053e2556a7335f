package hal

// PWMChannel identifies a hardware pin capable of PWM output.
type PWMChannel uint32

// PWMValue is a duty-cycle value in [0, PWMDriver.MaxValue()].
type PWMValue uint32

// PWMDriver is the abstract PWM interface used by the motor stage to
// command phase duty cycles. Platform-specific implementations handle
// actual hardware control.
type PWMDriver interface {
	// Configure sets up a channel for PWM output at the given period
	// (in hardware timer ticks) and returns the period actually used,
	// which may be adjusted to satisfy hardware constraints.
	Configure(ch PWMChannel, periodTicks uint32) (uint32, error)

	// SetDutyCycle sets the duty cycle for a channel.
	SetDutyCycle(ch PWMChannel, value PWMValue) error

	// MaxValue returns the maximum duty-cycle value accepted by SetDutyCycle.
	MaxValue() uint32

	// Disable returns a channel to plain GPIO/high-impedance state. The
	// axis supervisor calls this on every entry to IDLE.
	Disable(ch PWMChannel) error
}

var pwmDriver PWMDriver

// SetPWMDriver is called by target-specific init code to register its driver.
func SetPWMDriver(d PWMDriver) { pwmDriver = d }

// MustPWM returns the configured driver or panics if missing.
func MustPWM() PWMDriver {
	if pwmDriver == nil {
		panic("hal: PWM driver not configured")
	}
	return pwmDriver
}
