package axis

import (
	"testing"

	"axisctl/hal/sim"
)

func TestStepDirAccumulatesForwardSteps(t *testing.T) {
	backend := sim.New()
	sd := NewStepDir()
	sd.Configure(10, 11, 2.0)

	if err := sd.SetActive(true); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	_ = backend.Write(11, true) // DIR high = forward

	backend.DriveEdge(10, true)
	backend.DriveEdge(10, false)
	backend.DriveEdge(10, true)

	if got := sd.Drain(); got != 4.0 {
		t.Fatalf("expected accumulated delta 4.0 after two rising edges, got %v", got)
	}
	if got := sd.Drain(); got != 0 {
		t.Fatalf("expected Drain to reset accumulator, got %v", got)
	}
}

func TestStepDirReversesOnDirLow(t *testing.T) {
	backend := sim.New()
	sd := NewStepDir()
	sd.Configure(10, 11, 2.0)

	_ = sd.SetActive(true)
	// DIR defaults low (pull-disabled input, no driver) = reverse.
	backend.DriveEdge(10, true)

	if got := sd.Drain(); got != -2.0 {
		t.Fatalf("expected -2.0, got %v", got)
	}
}

func TestStepDirInactiveIgnoresEdges(t *testing.T) {
	backend := sim.New()
	sd := NewStepDir()
	sd.Configure(10, 11, 2.0)
	_ = sd.SetActive(true)
	_ = sd.SetActive(false)

	backend.DriveEdge(10, true)
	if got := sd.Drain(); got != 0 {
		t.Fatalf("expected no accumulation while inactive, got %v", got)
	}
}

func TestStepDirDeactivateClearsActiveFlag(t *testing.T) {
	sim.New()
	sd := NewStepDir()
	sd.Configure(10, 11, 1.0)
	_ = sd.SetActive(true)
	if !sd.Active() {
		t.Fatal("expected active after SetActive(true)")
	}
	if err := sd.SetActive(false); err != nil {
		t.Fatalf("SetActive(false): %v", err)
	}
	if sd.Active() {
		t.Fatal("expected inactive after SetActive(false)")
	}
}
