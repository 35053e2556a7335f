// Package hal defines the hardware-abstraction interfaces the axis
// supervisor programs against: GPIO, PWM and ADC. The interfaces are
// intentionally thin — platform-specific implementations (hal/sim for
// tests and the CLI harness, hal/rp2040 for real hardware) own everything
// below them.
package hal

import "errors"

// Pin identifies a GPIO pin number, independent of package.
type Pin uint32

// PullMode selects the input pin's pull resistor configuration.
type PullMode uint8

const (
	PullNone PullMode = iota
	PullUp
	PullDown
)

// Edge selects which transition an edge subscription fires on.
type Edge uint8

const (
	EdgeRising Edge = iota
	EdgeFalling
	EdgeBoth
)

// EdgeCallback is invoked from interrupt/callback context — it must not
// block and must not allocate where the target forbids it.
type EdgeCallback func(pin Pin, level bool)

var ErrPinNotConfigured = errors.New("hal: pin not configured")

// GPIODriver is the abstract GPIO interface the axis supervisor uses for
// its step/dir input and the encoder's index pin. Platform-specific
// implementations handle actual hardware control; see hal/sim for a host
// testing backend and hal/rp2040 for real hardware.
type GPIODriver interface {
	// ConfigureInput configures a pin as a digital input with the given pull mode.
	ConfigureInput(pin Pin, pull PullMode) error

	// ConfigureOutput configures a pin as a digital output.
	ConfigureOutput(pin Pin) error

	// Deinit returns a pin to its default (unconfigured) state. Any
	// edge subscription on the pin is cancelled first.
	Deinit(pin Pin) error

	// Read returns the current level of a configured input pin.
	Read(pin Pin) (bool, error)

	// Write sets a configured output pin.
	Write(pin Pin, level bool) error

	// Subscribe registers a callback fired on the given edge. Only one
	// callback may be active per pin; Subscribe replaces any previous one.
	// Pass a nil callback to unsubscribe without deinitializing the pin.
	Subscribe(pin Pin, edge Edge, cb EdgeCallback) error
}

// Global singleton used by callers that don't carry their own driver
// reference (mirrors the teacher's core.SetGPIODriver/MustGPIO pattern).
var gpioDriver GPIODriver

// SetGPIODriver is called by target-specific init code to register its driver.
func SetGPIODriver(d GPIODriver) { gpioDriver = d }

// MustGPIO returns the configured driver or panics if missing.
func MustGPIO() GPIODriver {
	if gpioDriver == nil {
		panic("hal: GPIO driver not configured")
	}
	return gpioDriver
}
