package config

import "testing"

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load([]byte(`{}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CurrentMeasHz != 8000 {
		t.Fatalf("expected default current_meas_hz 8000, got %v", cfg.CurrentMeasHz)
	}
	if cfg.Motor.PolePairs != 7 {
		t.Fatalf("expected default pole_pairs 7, got %v", cfg.Motor.PolePairs)
	}
	if cfg.Watchdog.TimeoutSec != 1.0 {
		t.Fatalf("expected default watchdog timeout 1.0, got %v", cfg.Watchdog.TimeoutSec)
	}
}

func TestLoadPreservesExplicitValues(t *testing.T) {
	cfg, err := Load([]byte(`{"motor":{"pole_pairs":14},"encoder":{"cpr":8192}}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Motor.PolePairs != 14 {
		t.Fatalf("expected explicit pole_pairs 14, got %v", cfg.Motor.PolePairs)
	}
	if cfg.Encoder.CPR != 8192 {
		t.Fatalf("expected explicit cpr 8192, got %v", cfg.Encoder.CPR)
	}
}

func TestLoadRejectsInvalidJSON(t *testing.T) {
	if _, err := Load([]byte(`not json`)); err == nil {
		t.Fatal("expected an error for invalid JSON")
	}
}

func TestDefaultIsComplete(t *testing.T) {
	cfg := Default()
	if cfg.Motor.PWMFrequency == 0 || cfg.Controller.VelLimit == 0 {
		t.Fatal("expected Default() to apply all defaults")
	}
}
