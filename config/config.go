// Package config loads an axis's configuration from JSON, grounded on
// standalone/config/config.go's LoadConfig + applyDefaults pattern.
package config

import "encoding/json"

// MotorConfig mirrors motor.Config's JSON-serializable fields.
type MotorConfig struct {
	Direction       int8    `json:"direction"`
	PolePairs       uint32  `json:"pole_pairs"`
	PhaseLocked     bool    `json:"phase_locked"`
	PWMChannelA     uint32  `json:"pwm_channel_a"`
	PWMChannelB     uint32  `json:"pwm_channel_b"`
	PWMChannelC     uint32  `json:"pwm_channel_c"`
	PWMFrequency    uint32  `json:"pwm_frequency_hz"`
	PhaseResistance float32 `json:"phase_resistance_ohm"`
	BackEMFConstant float32 `json:"back_emf_constant"`
	BusVoltage      float32 `json:"bus_voltage"`
}

// EncoderConfig mirrors encoder.Config's JSON-serializable fields.
type EncoderConfig struct {
	CPR                     uint32 `json:"cpr"`
	UseIndex                bool   `json:"use_index"`
	IdxSearchUnidirectional bool   `json:"idx_search_unidirectional"`
	IndexPin                uint32 `json:"index_pin"`
	APin                    uint32 `json:"a_pin"`
	BPin                    uint32 `json:"b_pin"`
}

// ControllerConfig mirrors controller.Config's JSON-serializable fields.
type ControllerConfig struct {
	ControlMode  int       `json:"control_mode"`
	PosGain      float32   `json:"pos_gain"`
	VelGain      float32   `json:"vel_gain"`
	VelIntegGain float32   `json:"vel_integrator_gain"`
	VelLimit     float32   `json:"vel_limit"`
	CurrentLimit float32   `json:"current_limit"`
	CoggingMap   []float32 `json:"cogging_map,omitempty"`
}

// TrajectoryConfig mirrors trajectory.Config's JSON-serializable fields.
type TrajectoryConfig struct {
	VelLimit   float32 `json:"vel_limit"`
	AccelLimit float32 `json:"accel_limit"`
	DecelLimit float32 `json:"decel_limit"`
}

// StepDirConfig configures the step/dir GPIO input (spec.md §4.3).
type StepDirConfig struct {
	Enabled  bool    `json:"enabled"`
	StepPin  uint32  `json:"step_pin"`
	DirPin   uint32  `json:"dir_pin"`
	CountsPerStep float32 `json:"counts_per_step"`
}

// WatchdogConfig configures the axis watchdog (spec.md §4.4).
type WatchdogConfig struct {
	Enabled    bool    `json:"enabled"`
	TimeoutSec float32 `json:"timeout_sec"`
}

// StartupConfig gates which steps STARTUP_SEQUENCE expands to. Each field
// mirrors one of axis.cpp's startup_* configuration flags.
type StartupConfig struct {
	MotorCalibration         bool `json:"motor_calibration"`
	EncoderIndexSearch       bool `json:"encoder_index_search"`
	EncoderOffsetCalibration bool `json:"encoder_offset_calibration"`
	ClosedLoopControl        bool `json:"closed_loop_control"`
	SensorlessControl        bool `json:"sensorless_control"`
}

// LockinConfig parameterizes the three-phase lock-in spin.
type LockinConfig struct {
	Current          float32 `json:"current"`
	RampTime         float32 `json:"ramp_time"`
	RampDistance     float32 `json:"ramp_distance"`
	Accel            float32 `json:"accel"`
	Vel              float32 `json:"vel"`
	FinishOnVel      bool    `json:"finish_on_vel"`
	FinishOnDistance bool    `json:"finish_on_distance"`
	FinishOnEncIdx   bool    `json:"finish_on_enc_idx"`
	FinishDistance   float32 `json:"finish_distance"`
}

// BrakeResistorConfig enables do_checks's brake-resistor-armed invariant.
// Disabled by default: an axis with no brake resistor wired never faults
// on it.
type BrakeResistorConfig struct {
	Enabled bool `json:"enabled"`
}

// VBusConfig configures do_checks's bus-voltage bounds check. ADCChannel
// and Scale are zero by default, meaning no sensor is wired and the axis
// reports the bus voltage as NaN — do_checks's comparisons are written so
// NaN fails both the undervoltage and overvoltage sides, so an unwired bus
// sensor never spuriously faults.
type VBusConfig struct {
	ADCChannel       uint32  `json:"adc_channel"`
	Scale            float32 `json:"scale"` // volts per raw ADC count
	UndervoltageTrip float32 `json:"undervoltage_trip"`
	OvervoltageTrip  float32 `json:"overvoltage_trip"`
}

// Config is the top-level per-axis configuration document, mirroring
// axis.cpp's Axis::Config_t split across its sub-components.
type Config struct {
	Motor         MotorConfig      `json:"motor"`
	Encoder       EncoderConfig    `json:"encoder"`
	Controller    ControllerConfig `json:"controller"`
	Trajectory    TrajectoryConfig `json:"trajectory"`
	StepDir       StepDirConfig    `json:"step_dir"`
	Watchdog      WatchdogConfig   `json:"watchdog"`
	Startup       StartupConfig    `json:"startup"`
	Lockin        LockinConfig     `json:"lockin"`
	BrakeResistor BrakeResistorConfig `json:"brake_resistor"`
	VBus          VBusConfig       `json:"vbus"`
	CurrentMeasHz float32          `json:"current_meas_hz"`
}

// Load parses a JSON configuration document and applies defaults for any
// zero-valued field left unset by the caller.
func Load(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// applyDefaults fills in missing configuration values with sensible
// defaults, matching standalone/config/config.go's applyDefaults.
func applyDefaults(cfg *Config) {
	if cfg.CurrentMeasHz == 0 {
		cfg.CurrentMeasHz = 8000
	}
	if cfg.Motor.PolePairs == 0 {
		cfg.Motor.PolePairs = 7
	}
	if cfg.Motor.PWMFrequency == 0 {
		cfg.Motor.PWMFrequency = 20000
	}
	if cfg.Motor.Direction == 0 {
		cfg.Motor.Direction = 1
	}
	if cfg.Motor.BusVoltage == 0 {
		cfg.Motor.BusVoltage = 24
	}
	if cfg.Motor.PhaseResistance == 0 {
		cfg.Motor.PhaseResistance = 1.0
	}
	if cfg.Encoder.CPR == 0 {
		cfg.Encoder.CPR = 4000
	}
	if cfg.Controller.VelLimit == 0 {
		cfg.Controller.VelLimit = 10
	}
	if cfg.Controller.CurrentLimit == 0 {
		cfg.Controller.CurrentLimit = 10
	}
	if cfg.Trajectory.VelLimit == 0 {
		cfg.Trajectory.VelLimit = cfg.Controller.VelLimit
	}
	if cfg.Trajectory.AccelLimit == 0 {
		cfg.Trajectory.AccelLimit = 50
	}
	if cfg.Trajectory.DecelLimit == 0 {
		cfg.Trajectory.DecelLimit = cfg.Trajectory.AccelLimit
	}
	if cfg.Watchdog.TimeoutSec == 0 {
		cfg.Watchdog.TimeoutSec = 1.0
	}
	if cfg.StepDir.CountsPerStep == 0 {
		cfg.StepDir.CountsPerStep = 1.0
	}
	if cfg.Lockin.Current == 0 {
		cfg.Lockin.Current = 5
	}
	if cfg.Lockin.RampTime == 0 {
		cfg.Lockin.RampTime = 0.4
	}
	if cfg.Lockin.RampDistance == 0 {
		cfg.Lockin.RampDistance = 12.566371 // 4*pi
	}
	if cfg.Lockin.Accel == 0 {
		cfg.Lockin.Accel = 20
	}
	if cfg.Lockin.Vel == 0 {
		cfg.Lockin.Vel = 40
	}
	if cfg.VBus.UndervoltageTrip == 0 {
		cfg.VBus.UndervoltageTrip = 8
	}
	if cfg.VBus.OvervoltageTrip == 0 {
		cfg.VBus.OvervoltageTrip = 60
	}
}

// Default returns a complete configuration with only the defaults applied —
// no motor/encoder pins set — useful for the CLI harness and tests.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
