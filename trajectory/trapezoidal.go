// Package trajectory computes a single-axis trapezoidal velocity profile
// for the closed-loop control mode's position moves (spec.md §4.6).
// Adapted from standalone/planner/planner.go's calculateTrapezoid, which
// plans a multi-axis cartesian move; this keeps the same triangle/trapezoid
// decision but drops the per-axis cartesian decomposition since the axis
// supervisor only ever plans a scalar move.
package trajectory

import "math"

// Profile is a planned scalar move: it exposes the setpoint reached after
// t seconds from the start of execution.
type Profile struct {
	startPos   float32
	distance   float32 // signed
	cruiseVel  float32
	accel      float32
	accelTime  float32
	cruiseTime float32
	decelTime  float32
	duration   float32
}

// TrapezoidalTrajectory plans and evaluates a trapezoidal move, mirroring
// axis.cpp's TrapezoidalTrajectory::init.
type TrapezoidalTrajectory struct {
	velLimit   float32
	accelLimit float32
	decelLimit float32
}

// Config mirrors axis.cpp's TrapezoidalTrajectory::Config_t.
type Config struct {
	VelLimit   float32
	AccelLimit float32
	DecelLimit float32
}

// New constructs a planner bound to the given velocity/accel limits.
func New(cfg Config) *TrapezoidalTrajectory {
	return &TrapezoidalTrajectory{
		velLimit:   cfg.VelLimit,
		accelLimit: cfg.AccelLimit,
		decelLimit: cfg.DecelLimit,
	}
}

// Init plans a move from startPos to endPos and returns the resulting
// Profile. Distances and velocities share whatever unit the caller's
// position estimate uses (the axis uses mechanical revolutions).
func (t *TrapezoidalTrajectory) Init(startPos, endPos float32) Profile {
	dist := endPos - startPos
	absDist := float32(math.Abs(float64(dist)))
	sign := float32(1)
	if dist < 0 {
		sign = -1
	}

	accel := t.accelLimit
	if accel <= 0 {
		accel = 1
	}
	maxVel := t.velLimit
	if maxVel <= 0 {
		maxVel = 1
	}

	accelDist := (maxVel * maxVel) / (2.0 * accel)

	p := Profile{startPos: startPos, distance: dist * sign, accel: accel}
	if accelDist*2.0 >= absDist {
		// Triangle profile: never reaches maxVel.
		accelDist = absDist / 2.0
		p.cruiseVel = float32(math.Sqrt(float64(2 * accel * accelDist)))
		p.accelTime = p.cruiseVel / accel
		p.cruiseTime = 0
		p.decelTime = p.accelTime
	} else {
		cruiseDist := absDist - 2.0*accelDist
		p.cruiseVel = maxVel
		p.accelTime = maxVel / accel
		p.cruiseTime = cruiseDist / maxVel
		p.decelTime = p.accelTime
	}
	p.duration = p.accelTime + p.cruiseTime + p.decelTime
	p.distance = dist
	p.cruiseVel *= sign
	return p
}

// Duration returns the total planned move time in seconds.
func (p Profile) Duration() float32 { return p.duration }

// Done reports whether t seconds have exhausted the planned move.
func (p Profile) Done(t float32) bool { return t >= p.duration }

// Eval returns the planned position and velocity at time t seconds into
// the move, clamped to the final setpoint once the move completes.
func (p Profile) Eval(t float32) (pos, vel float32) {
	if t <= 0 {
		return p.startPos, 0
	}
	if t >= p.duration {
		return p.startPos + p.distance, 0
	}

	sign := float32(1)
	if p.distance < 0 {
		sign = -1
	}
	accel := p.accel

	switch {
	case t < p.accelTime:
		vel = sign * accel * t
		pos = p.startPos + sign*0.5*accel*t*t
	case t < p.accelTime+p.cruiseTime:
		tc := t - p.accelTime
		accelDist := 0.5 * accel * p.accelTime * p.accelTime
		vel = p.cruiseVel
		pos = p.startPos + sign*accelDist + vel*tc
	default:
		td := t - p.accelTime - p.cruiseTime
		accelDist := 0.5 * accel * p.accelTime * p.accelTime
		cruiseDist := float32(math.Abs(float64(p.cruiseVel))) * p.cruiseTime
		vel = p.cruiseVel - sign*accel*td
		pos = p.startPos + sign*(accelDist+cruiseDist) + p.cruiseVel*td - sign*0.5*accel*td*td
	}
	return
}
