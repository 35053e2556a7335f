// Package estimator implements the sensorless position/velocity observer
// used before an encoder index is found, or for motors with no encoder at
// all (spec.md §4.5's sensorless control mode). No phase-locked-loop
// library appears anywhere in the retrieval pack, so this is built on
// package math directly; see DESIGN.md for that justification.
package estimator

import "math"

const twoPi32 = float32(2 * math.Pi)

// Config mirrors axis.cpp's SensorlessEstimator::Config_t fields this
// repository exercises: the PLL bandwidth and the assumed pole-pair count
// used to convert electrical to mechanical quantities.
type Config struct {
	PLLBandwidth float32 // rad/s
	PolePairs    uint32
}

// SensorlessEstimator tracks rotor phase and velocity from the phase
// measurement passed to Update each tick (the axis passes the encoder's
// electrical phase), using a simple
// type-2 phase-locked loop (the same structure as axis.cpp's
// SensorlessEstimator::update, simplified to a single integrator pair).
type SensorlessEstimator struct {
	cfg Config

	phase float32 // tracked electrical phase estimate, radians
	vel   float32 // tracked electrical velocity estimate, rad/s
}

// New constructs a SensorlessEstimator; call Init before Update.
func New() *SensorlessEstimator { return &SensorlessEstimator{} }

func (s *SensorlessEstimator) Init(cfg Config) error {
	s.cfg = cfg
	s.phase = 0
	s.vel = 0
	return nil
}

// Update advances the PLL by one control tick given a noisy measured phase
// (e.g. derived from back-EMF zero crossings) and returns the corrected
// phase estimate.
func (s *SensorlessEstimator) Update(dtSeconds float32, measuredPhase float32) float32 {
	if dtSeconds <= 0 {
		return s.phase
	}
	predicted := s.phase + s.vel*dtSeconds
	err := wrapPmPi(measuredPhase - predicted)

	// Critically damped type-2 PLL gains derived from bandwidth, matching
	// axis.cpp's pll_kp/pll_ki relationship (ki = 0.25*kp^2).
	kp := s.cfg.PLLBandwidth
	ki := 0.25 * kp * kp

	s.vel += ki * err * dtSeconds
	s.phase = wrapPmPi(predicted + kp*err*dtSeconds)
	return s.phase
}

// PosEstimate returns the tracked mechanical position in revolutions,
// derived from the electrical phase and the configured pole-pair count.
func (s *SensorlessEstimator) PosEstimate() float32 {
	if s.cfg.PolePairs == 0 {
		return 0
	}
	return s.phase / twoPi32 / float32(s.cfg.PolePairs)
}

// VelEstimate returns the tracked mechanical velocity in rev/s.
func (s *SensorlessEstimator) VelEstimate() float32 {
	if s.cfg.PolePairs == 0 {
		return 0
	}
	return s.vel / twoPi32 / float32(s.cfg.PolePairs)
}

// Phase returns the tracked electrical phase, wrapped to (-pi, pi].
func (s *SensorlessEstimator) Phase() float32 { return s.phase }

// ElectricalVel returns the raw tracked electrical velocity (rad/s),
// as opposed to VelEstimate's mechanical rev/s conversion — this is the
// value the motor stage's back-EMF feedforward expects.
func (s *SensorlessEstimator) ElectricalVel() float32 { return s.vel }

func wrapPmPi(theta float32) float32 {
	const pi = float32(math.Pi)
	const twoPi = 2 * pi
	theta = theta - twoPi*float32(int(theta/twoPi))
	if theta <= -pi {
		theta += twoPi
	}
	if theta > pi {
		theta -= twoPi
	}
	return theta
}
