package encoder

import (
	"testing"

	"axisctl/hal"
	"axisctl/hal/sim"
)

func testConfig(useIndex bool) Config {
	return Config{
		CPR:      4000,
		UseIndex: useIndex,
		APin:     10,
		BPin:     11,
		IndexPin: 12,
	}
}

func TestQuadratureWithoutIndexIsImmediatelyFound(t *testing.T) {
	sim.New()
	e := New()
	if err := e.Init(testConfig(false)); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if !e.IndexFound() {
		t.Fatal("expected index already found when UseIndex is false")
	}
	if err := e.RunIndexSearch(); err != nil {
		t.Fatalf("RunIndexSearch: %v", err)
	}
}

func TestQuadratureIndexSearchWaitsForPulse(t *testing.T) {
	backend := sim.New()
	e := New()
	cfg := testConfig(true)
	if err := e.Init(cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if e.IndexFound() {
		t.Fatal("expected index not yet found")
	}
	if err := e.RunIndexSearch(); err != ErrNotReady {
		t.Fatalf("expected ErrNotReady before the pulse, got %v", err)
	}

	fired := false
	e.SetIdxSubscribe(func() { fired = true })
	backend.DriveEdge(cfg.IndexPin, true)

	if !fired {
		t.Fatal("expected index subscription callback to fire")
	}
	if err := e.RunIndexSearch(); err != nil {
		t.Fatalf("RunIndexSearch after pulse: %v", err)
	}
}

func TestQuadratureCountsEdges(t *testing.T) {
	backend := sim.New()
	e := New()
	cfg := testConfig(false)
	if err := e.Init(cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}

	// Drive a forward quadrature sequence: A leads B.
	steps := []struct {
		pin   hal.Pin
		level bool
	}{
		{cfg.APin, true}, {cfg.BPin, true}, {cfg.APin, false}, {cfg.BPin, false},
	}
	for i := 0; i < 100; i++ {
		for _, s := range steps {
			backend.DriveEdge(s.pin, s.level)
		}
	}

	if err := e.Update(0.001); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if e.PosEstimate() <= 0 {
		t.Fatalf("expected positive position after forward rotation, got %v", e.PosEstimate())
	}
}

func TestPhaseScalesByPolePairs(t *testing.T) {
	backend := sim.New()
	e := New()
	cfg := testConfig(false)
	cfg.CPR = 4
	cfg.PolePairs = 7
	_ = e.Init(cfg)

	// Several whole mechanical revolutions forward.
	steps := []struct {
		pin   hal.Pin
		level bool
	}{
		{cfg.APin, true}, {cfg.BPin, true}, {cfg.APin, false}, {cfg.BPin, false},
	}
	for i := 0; i < int(cfg.CPR); i++ {
		for _, s := range steps {
			backend.DriveEdge(s.pin, s.level)
		}
	}
	_ = e.Update(0.001)

	// One full mechanical revolution is PolePairs electrical cycles, so
	// phase wraps back to (approximately) zero regardless of PolePairs.
	if p := e.Phase(); p > 0.01 || p < -0.01 {
		t.Fatalf("expected phase to wrap near zero after a full mechanical revolution, got %v", p)
	}
}

func TestDirectionFindRequiresNonzeroVelocity(t *testing.T) {
	sim.New()
	e := New()
	_ = e.Init(testConfig(false))
	if err := e.RunDirectionFind(0); err == nil {
		t.Fatal("expected error for zero forced velocity")
	}
}

func TestOffsetCalibrationRequiresDirectionFind(t *testing.T) {
	sim.New()
	e := New()
	_ = e.Init(testConfig(false))
	if err := e.RunOffsetCalibration(); err != ErrNotReady {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if err := e.RunDirectionFind(1.0); err != nil {
		t.Fatalf("RunDirectionFind: %v", err)
	}
	if err := e.RunOffsetCalibration(); err != nil {
		t.Fatalf("RunOffsetCalibration: %v", err)
	}
}
