package motor

import (
	"testing"

	"axisctl/hal/sim"
)

func testConfig() Config {
	return Config{
		Direction:    Forward,
		PolePairs:    7,
		PWMChannelA:  0,
		PWMChannelB:  1,
		PWMChannelC:  2,
		PWMFrequency: 20000,
	}
}

func TestBridgeArmRequiresInit(t *testing.T) {
	sim.New()
	m := New()
	if err := m.Arm(); err == nil {
		t.Fatal("expected error arming an uninitialized bridge")
	}
}

func TestBridgeDisarmedRejectsPhaseUpdate(t *testing.T) {
	sim.New()
	m := New()
	if err := m.Init(testConfig()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := m.UpdatePhase(0, 0.5); err != ErrNotArmed {
		t.Fatalf("expected ErrNotArmed, got %v", err)
	}
}

func TestBridgeArmAndUpdatePhase(t *testing.T) {
	backend := sim.New()
	m := New()
	cfg := testConfig()
	if err := m.Init(cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := m.Arm(); err != nil {
		t.Fatalf("Arm: %v", err)
	}
	if !m.IsArmed() {
		t.Fatal("expected armed")
	}
	if err := m.UpdatePhase(0, 1.0); err != nil {
		t.Fatalf("UpdatePhase: %v", err)
	}
	if backend.DutyCycle(cfg.PWMChannelA) == 0 {
		t.Fatal("expected non-zero duty cycle on phase A")
	}
}

func TestBridgeDisarmDisablesPWM(t *testing.T) {
	backend := sim.New()
	m := New()
	cfg := testConfig()
	_ = m.Init(cfg)
	_ = m.Arm()
	_ = m.UpdatePhase(0, 1.0)
	m.Disarm()
	if m.IsArmed() {
		t.Fatal("expected disarmed")
	}
	if backend.Enabled(cfg.PWMChannelA) {
		t.Fatal("expected phase A PWM disabled")
	}
}

func TestBridgeUpdateCommandsPhase(t *testing.T) {
	backend := sim.New()
	m := New()
	cfg := testConfig()
	cfg.PhaseResistance = 1.0
	cfg.BusVoltage = 24
	_ = m.Init(cfg)
	_ = m.Arm()
	if err := m.Update(10, 0, 0); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if backend.DutyCycle(cfg.PWMChannelA) == 0 {
		t.Fatal("expected non-zero duty cycle on phase A")
	}
}

func TestBridgeUpdateRejectsWhenDisarmed(t *testing.T) {
	sim.New()
	m := New()
	_ = m.Init(testConfig())
	if err := m.Update(10, 0, 0); err != ErrNotArmed {
		t.Fatalf("expected ErrNotArmed, got %v", err)
	}
}

func TestBridgePWMTestRequiresArmed(t *testing.T) {
	sim.New()
	m := New()
	_ = m.Init(testConfig())
	if err := m.PWMTest(1.0); err != ErrNotArmed {
		t.Fatalf("expected ErrNotArmed, got %v", err)
	}
}
