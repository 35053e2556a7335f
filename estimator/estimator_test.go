package estimator

import "testing"

func TestTracksConstantVelocityPhase(t *testing.T) {
	e := New()
	if err := e.Init(Config{PLLBandwidth: 1000, PolePairs: 7}); err != nil {
		t.Fatalf("Init: %v", err)
	}

	const dt = float32(0.0001)
	const trueVel = float32(200) // rad/s electrical
	var truePhase float32

	for i := 0; i < 2000; i++ {
		truePhase = wrapPmPi(truePhase + trueVel*dt)
		e.Update(dt, truePhase)
	}

	if diff := wrapPmPi(e.Phase() - truePhase); diff > 0.05 || diff < -0.05 {
		t.Fatalf("phase did not converge: got %v want ~%v", e.Phase(), truePhase)
	}
	if diff := e.VelEstimate()*2*3.14159265*7 - trueVel; diff > 5 || diff < -5 {
		t.Fatalf("velocity did not converge: electrical vel %v want ~%v", e.VelEstimate()*2*3.14159265*7, trueVel)
	}
}

func TestZeroPolePairsReturnsZeroEstimates(t *testing.T) {
	e := New()
	_ = e.Init(Config{PLLBandwidth: 1000})
	e.Update(0.001, 1.0)
	if e.PosEstimate() != 0 || e.VelEstimate() != 0 {
		t.Fatal("expected zero position/velocity estimates with zero pole pairs")
	}
}
