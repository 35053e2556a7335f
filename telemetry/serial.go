//go:build !wasm

// Serial transport for the telemetry link, grounded on
// host/serial/serial_native.go's github.com/tarm/serial wrapper.
package telemetry

import (
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// SerialConfig configures the telemetry serial link to a bench axis.
type SerialConfig struct {
	Device      string
	Baud        int
	ReadTimeout int // milliseconds, 0 = blocking
}

// DefaultSerialConfig returns typical settings for a USB-CDC telemetry link.
func DefaultSerialConfig(device string) SerialConfig {
	return SerialConfig{Device: device, Baud: 115200, ReadTimeout: 100}
}

// SerialPort is a telemetry transport backed by a real serial device.
type SerialPort struct {
	port *serial.Port
}

// OpenSerial opens a native serial port for telemetry framing.
func OpenSerial(cfg SerialConfig) (*SerialPort, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry: open serial port %s: %w", cfg.Device, err)
	}
	return &SerialPort{port: port}, nil
}

func (p *SerialPort) Read(b []byte) (int, error)  { return p.port.Read(b) }
func (p *SerialPort) Write(b []byte) (int, error) { return p.port.Write(b) }
func (p *SerialPort) Close() error                { return p.port.Close() }

// PublishStatus encodes and writes a single Status frame.
func (p *SerialPort) PublishStatus(s Status) error {
	frame := EncodeFrame(EncodeStatus(s))
	_, err := p.Write(frame)
	return err
}
