package controller

import "testing"

func TestVelocityControlTracksSetpoint(t *testing.T) {
	c := New()
	if err := c.Init(Config{
		ControlMode:  ModeVelocityControl,
		VelGain:      2.0,
		VelIntegGain: 0,
		VelLimit:     10,
		CurrentLimit: 100,
	}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	c.SetVelSetpoint(5)

	cur, err := c.Update(0, 0, 0.001)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if cur <= 0 {
		t.Fatalf("expected positive current setpoint for positive velocity error, got %v", cur)
	}
}

func TestPositionControlDerivesVelocitySetpoint(t *testing.T) {
	c := New()
	_ = c.Init(Config{
		ControlMode: ModePositionControl,
		PosGain:     10,
		VelGain:     1,
		VelLimit:    2,
	})
	c.SetPosSetpoint(100)

	cur, _ := c.Update(0, 0, 0.001)
	if cur <= 0 {
		t.Fatalf("expected positive current toward a distant positive setpoint, got %v", cur)
	}
}

func TestCurrentControlPassesThrough(t *testing.T) {
	c := New()
	_ = c.Init(Config{ControlMode: ModeCurrentControl, CurrentLimit: 5})
	c.SetCurrentSetpoint(3)

	cur, _ := c.Update(0, 0, 0.001)
	if cur != 3 {
		t.Fatalf("expected current control to pass through setpoint unchanged, got %v", cur)
	}
}

func TestCurrentLimitClamps(t *testing.T) {
	c := New()
	_ = c.Init(Config{ControlMode: ModeCurrentControl, CurrentLimit: 2})
	c.SetCurrentSetpoint(100)

	cur, _ := c.Update(0, 0, 0.001)
	if cur != 2 {
		t.Fatalf("expected current clamped to limit, got %v", cur)
	}
}

func TestCoggingMapAddsCompensation(t *testing.T) {
	c := New()
	_ = c.Init(Config{
		ControlMode:  ModeCurrentControl,
		CurrentLimit: 100,
		CoggingMap:   []float32{0, 1, 2, 3},
	})
	c.SetCurrentSetpoint(0)

	cur, _ := c.Update(0.25, 0, 0.001)
	if cur != 1 {
		t.Fatalf("expected cogging compensation of 1 at pos 0.25, got %v", cur)
	}
}
