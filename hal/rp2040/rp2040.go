//go:build tinygo && (rp2040 || rp2350)

// Package rp2040 implements hal.GPIODriver, hal.PWMDriver and hal.ADCDriver
// on top of TinyGo's machine package, for running the axis supervisor on
// real RP2040/RP2350 silicon. Grounded on the teacher's
// targets/rp2040/{gpio,adc,pwm}.go drivers, generalized from Klipper's
// command-dictionary pin model to the axis's own Pin/PWMChannel/ADCChannel
// types.
package rp2040

import (
	"errors"
	"sync"

	"axisctl/hal"

	"machine"
)

// PWMMax matches the duty-cycle resolution the axis's motor stage assumes.
const PWMMax = 0xFFFF

type pwmPeripheral interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

// Driver implements hal.GPIODriver, hal.PWMDriver and hal.ADCDriver for
// RP2040/RP2350 using TinyGo's machine package. A single Driver instance is
// normally installed into all three hal singleton slots.
type Driver struct {
	mu sync.Mutex

	edgePins map[hal.Pin]struct {
		edge hal.Edge
		cb   hal.EdgeCallback
	}

	pwmSlices map[uint8]pwmPeripheral
	pwmChans  map[hal.PWMChannel]struct {
		slice   uint8
		channel uint8
	}
}

// New constructs an uninitialized Driver.
func New() *Driver {
	return &Driver{
		edgePins: make(map[hal.Pin]struct {
			edge hal.Edge
			cb   hal.EdgeCallback
		}),
		pwmSlices: make(map[uint8]pwmPeripheral),
		pwmChans: make(map[hal.PWMChannel]struct {
			slice   uint8
			channel uint8
		}),
	}
}

// Install wires d into the hal package as the active GPIO/PWM/ADC driver.
func (d *Driver) Install() {
	hal.SetGPIODriver(d)
	hal.SetPWMDriver(d)
	hal.SetADCDriver(d)
}

// --- hal.GPIODriver ---

func (d *Driver) ConfigureInput(p hal.Pin, pull hal.PullMode) error {
	mp := machine.Pin(p)
	switch pull {
	case hal.PullUp:
		mp.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	case hal.PullDown:
		mp.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	default:
		mp.Configure(machine.PinConfig{Mode: machine.PinInput})
	}
	return nil
}

func (d *Driver) ConfigureOutput(p hal.Pin) error {
	machine.Pin(p).Configure(machine.PinConfig{Mode: machine.PinOutput})
	return nil
}

func (d *Driver) Deinit(p hal.Pin) error {
	d.mu.Lock()
	delete(d.edgePins, p)
	d.mu.Unlock()
	_ = machine.Pin(p).SetInterrupt(machine.PinRising|machine.PinFalling, nil)
	// TODO: reinit GPIOs here
	machine.Pin(p).Configure(machine.PinConfig{Mode: machine.PinInput})
	return nil
}

func (d *Driver) Read(p hal.Pin) (bool, error) {
	return machine.Pin(p).Get(), nil
}

func (d *Driver) Write(p hal.Pin, level bool) error {
	machine.Pin(p).Set(level)
	return nil
}

func (d *Driver) Subscribe(p hal.Pin, edge hal.Edge, cb hal.EdgeCallback) error {
	mp := machine.Pin(p)
	d.mu.Lock()
	d.edgePins[p] = struct {
		edge hal.Edge
		cb   hal.EdgeCallback
	}{edge, cb}
	d.mu.Unlock()

	if cb == nil {
		return mp.SetInterrupt(machine.PinRising|machine.PinFalling, nil)
	}

	var change machine.PinChange
	switch edge {
	case hal.EdgeRising:
		change = machine.PinRising
	case hal.EdgeFalling:
		change = machine.PinFalling
	default:
		change = machine.PinRising | machine.PinFalling
	}
	return mp.SetInterrupt(change, func(mp machine.Pin) {
		cb(hal.Pin(mp), mp.Get())
	})
}

// --- hal.PWMDriver ---

func (d *Driver) sliceChannel(ch hal.PWMChannel) (uint8, uint8) {
	return uint8((uint32(ch) >> 1) & 0x7), uint8(uint32(ch) & 1)
}

func (d *Driver) Configure(ch hal.PWMChannel, periodTicks uint32) (uint32, error) {
	slice, _ := d.sliceChannel(ch)

	pwm := d.pwmPeripheralFor(slice)
	if pwm == nil {
		return 0, errors.New("rp2040: unsupported PWM slice")
	}
	// axis/timer frequency matches the teacher's 12MHz tick clock.
	period := (uint64(periodTicks) * 1000000000) / 12000000
	if err := pwm.Configure(machine.PWMConfig{Period: period}); err != nil {
		return 0, err
	}

	channel, err := pwm.Channel(machine.Pin(ch))
	if err != nil {
		return 0, err
	}
	d.mu.Lock()
	d.pwmSlices[slice] = pwm
	d.pwmChans[ch] = struct {
		slice   uint8
		channel uint8
	}{slice, channel}
	d.mu.Unlock()
	return periodTicks, nil
}

func (d *Driver) SetDutyCycle(ch hal.PWMChannel, value hal.PWMValue) error {
	d.mu.Lock()
	c, ok := d.pwmChans[ch]
	d.mu.Unlock()
	if !ok {
		return errors.New("rp2040: PWM channel not configured")
	}
	top := c.slice // silence unused in some TinyGo versions without Top()
	_ = top
	d.pwmSlices[c.slice].Set(c.channel, uint32(value))
	return nil
}

func (d *Driver) MaxValue() uint32 { return PWMMax }

func (d *Driver) Disable(ch hal.PWMChannel) error {
	d.mu.Lock()
	c, ok := d.pwmChans[ch]
	d.mu.Unlock()
	if !ok {
		return nil
	}
	d.pwmSlices[c.slice].Set(c.channel, 0)
	return nil
}

// --- hal.ADCDriver ---

func (d *Driver) ConfigureChannel(ch hal.ADCChannel) error {
	machine.InitADC()
	machine.ADC{Pin: machine.Pin(ch)}.Configure(machine.ADCConfig{})
	return nil
}

func (d *Driver) ReadRaw(ch hal.ADCChannel) (hal.ADCValue, error) {
	adc := machine.ADC{Pin: machine.Pin(ch)}
	return hal.ADCValue(adc.Get()), nil
}
