package trajectory

import "testing"

func TestTrapezoidalReachesEndpoint(t *testing.T) {
	tt := New(Config{VelLimit: 10, AccelLimit: 50, DecelLimit: 50})
	p := tt.Init(0, 20)

	pos, vel := p.Eval(p.Duration())
	if pos != 20 {
		t.Fatalf("expected final position 20, got %v", pos)
	}
	if vel != 0 {
		t.Fatalf("expected zero velocity at the end of the move, got %v", vel)
	}
}

func TestTriangleProfileForShortMove(t *testing.T) {
	tt := New(Config{VelLimit: 100, AccelLimit: 10, DecelLimit: 10})
	p := tt.Init(0, 1) // too short to reach VelLimit

	if p.cruiseTime != 0 {
		t.Fatalf("expected a pure triangle profile with no cruise phase, got cruiseTime=%v", p.cruiseTime)
	}
	pos, _ := p.Eval(p.Duration())
	if pos != 1 {
		t.Fatalf("expected final position 1, got %v", pos)
	}
}

func TestNegativeMoveDirection(t *testing.T) {
	tt := New(Config{VelLimit: 10, AccelLimit: 50, DecelLimit: 50})
	p := tt.Init(5, -5)

	pos, _ := p.Eval(p.Duration())
	if pos != -5 {
		t.Fatalf("expected final position -5, got %v", pos)
	}

	_, midVel := p.Eval(p.Duration() / 2)
	if midVel > 0 {
		t.Fatalf("expected negative velocity during a negative move, got %v", midVel)
	}
}

func TestBeforeStartReturnsStartPosition(t *testing.T) {
	tt := New(Config{VelLimit: 10, AccelLimit: 50, DecelLimit: 50})
	p := tt.Init(3, 8)

	pos, vel := p.Eval(0)
	if pos != 3 || vel != 0 {
		t.Fatalf("expected (3,0) at t=0, got (%v,%v)", pos, vel)
	}
}
