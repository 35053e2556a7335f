// Command axissim is a bench harness for the axis supervisor: it wires an
// Axis to the in-memory hal/sim backend instead of real silicon and drives
// it from an interactive command line, grounded on
// host/cmd/gopper-host/main.go's flag+bufio.Scanner+strings.Fields loop.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"axisctl/axis"
	"axisctl/config"
	"axisctl/hal"
	"axisctl/hal/sim"
	"axisctl/telemetry"
)

var (
	configPath   = flag.String("config", "", "Path to a JSON axis configuration; defaults to config.Default()")
	serialDevice = flag.String("serial", "", "Serial device to publish telemetry.Status frames to (e.g. /dev/ttyACM0); disabled if empty")
	serialHz     = flag.Float64("serial-hz", 10, "Telemetry publish rate in Hz when -serial is set")
)

func main() {
	flag.Parse()

	fmt.Println("axissim - axis supervisor bench harness")
	fmt.Println("========================================")

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	backend := sim.New()
	ax := axis.New()
	if err := ax.Init(*cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Init failed: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tickPeriod := time.Second
	if cfg.CurrentMeasHz > 0 {
		tickPeriod = time.Duration(float64(time.Second) / float64(cfg.CurrentMeasHz))
	}
	ticker := time.NewTicker(tickPeriod)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				ax.SignalCurrentMeas()
			}
		}
	}()

	go ax.Run(ctx)

	if *serialDevice != "" {
		port, err := telemetry.OpenSerial(telemetry.DefaultSerialConfig(*serialDevice))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: opening telemetry serial link: %v\n", err)
			os.Exit(1)
		}
		defer port.Close()

		publishPeriod := time.Duration(float64(time.Second) / *serialHz)
		publishTicker := time.NewTicker(publishPeriod)
		defer publishTicker.Stop()
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-publishTicker.C:
					if err := port.PublishStatus(ax.Status()); err != nil {
						fmt.Fprintf(os.Stderr, "telemetry publish: %v\n", err)
					}
				}
			}
		}()
		fmt.Printf("Publishing telemetry.Status frames to %s at %.1f Hz.\n", *serialDevice, *serialHz)
	}

	fmt.Println("Axis running. Type 'help' for available commands, 'quit' to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			return

		case "help", "?":
			printHelp()

		case "state":
			fmt.Printf("current=%s requested=%s errors=%s\n", ax.CurrentState(), ax.RequestedState(), ax.Errors())

		case "status":
			s := ax.Status()
			fmt.Printf("state=%d requested=%d errors=0x%x pos=%v vel=%v\n",
				s.CurrentState, s.RequestedState, s.ErrorFlags, s.PosEstimate, s.VelEstimate)

		case "request":
			if len(args) != 1 {
				fmt.Println("usage: request <STATE_NAME>")
				continue
			}
			s, ok := stateByName(args[0])
			if !ok {
				fmt.Printf("unknown state %q\n", args[0])
				continue
			}
			ax.RequestState(s)
			fmt.Printf("requested %s\n", s)

		case "clear_errors":
			ax.ClearErrors()
			fmt.Println("errors cleared")

		case "move":
			if len(args) != 1 {
				fmt.Println("usage: move <target_pos>")
				continue
			}
			target, err := strconv.ParseFloat(args[0], 32)
			if err != nil {
				fmt.Println("move: expected a float target position")
				continue
			}
			ax.MoveTo(float32(target))
			fmt.Println("move queued")

		case "frame":
			frame := telemetry.EncodeFrame(telemetry.EncodeStatus(ax.Status()))
			fmt.Printf("% x\n", frame)
			payload, consumed, err := telemetry.DecodeFrame(frame)
			if err != nil {
				fmt.Printf("decode check failed: %v\n", err)
				continue
			}
			s, err := telemetry.DecodeStatus(payload)
			if err != nil {
				fmt.Printf("decode check failed: %v\n", err)
				continue
			}
			fmt.Printf("round-trip ok (%d bytes): state=%d requested=%d errors=0x%x pos=%v vel=%v\n",
				consumed, s.CurrentState, s.RequestedState, s.ErrorFlags, s.PosEstimate, s.VelEstimate)

		case "adc":
			if len(args) != 2 {
				fmt.Println("usage: adc <channel> <raw_value>")
				continue
			}
			ch, err1 := strconv.ParseUint(args[0], 10, 32)
			raw, err2 := strconv.ParseUint(args[1], 10, 16)
			if err1 != nil || err2 != nil {
				fmt.Println("adc: expected two integers")
				continue
			}
			backend.SetChannel(hal.ADCChannel(ch), hal.ADCValue(raw))
			fmt.Println("ok")

		default:
			fmt.Printf("unknown command: %s (type 'help' for available commands)\n", cmd)
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println()
	fmt.Println("Available commands:")
	fmt.Println("  help                  - Show this help message")
	fmt.Println("  state                 - Print current/requested state and latched errors")
	fmt.Println("  status                - Print the telemetry.Status snapshot (pos/vel included)")
	fmt.Println("  request <STATE_NAME>  - Request a state transition (e.g. STARTUP_SEQUENCE)")
	fmt.Println("  clear_errors          - Clear all latched error flags")
	fmt.Println("  move <target_pos>     - Plan and run a trapezoidal move in CLOSED_LOOP_CONTROL")
	fmt.Println("  frame                 - Encode/decode one telemetry.Status frame and print it (-serial <dev> streams these continuously)")
	fmt.Println("  adc <ch> <raw>        - Drive a simulated ADC channel (e.g. bus voltage)")
	fmt.Println("  quit/exit/q           - Exit the program")
	fmt.Println()
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := config.Load(data)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// stateByName maps the AxisState names used in spec.md/telemetry status
// frames to the axis package's State enum, for the interactive "request"
// command.
func stateByName(name string) (axis.State, bool) {
	switch strings.ToUpper(name) {
	case "IDLE":
		return axis.StateIdle, true
	case "STARTUP_SEQUENCE":
		return axis.StateStartupSequence, true
	case "FULL_CALIBRATION_SEQUENCE":
		return axis.StateFullCalibrationSequence, true
	case "MOTOR_CALIBRATION":
		return axis.StateMotorCalibration, true
	case "ENCODER_INDEX_SEARCH":
		return axis.StateEncoderIndexSearch, true
	case "ENCODER_OFFSET_CALIBRATION":
		return axis.StateEncoderOffsetCalibration, true
	case "CLOSED_LOOP_CONTROL":
		return axis.StateClosedLoopControl, true
	case "LOCKIN_SPIN":
		return axis.StateLockinSpin, true
	case "ENCODER_DIR_FIND":
		return axis.StateEncoderDirFind, true
	case "SENSORLESS_CONTROL":
		return axis.StateSensorlessControl, true
	case "OPEN_LOOP_CONTROL":
		return axis.StateOpenLoopControl, true
	case "PWM_TEST":
		return axis.StatePWMTest, true
	default:
		return axis.StateUndefined, false
	}
}

