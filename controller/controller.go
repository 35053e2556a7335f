// Package controller implements the axis's cascaded position/velocity/
// current control loop (spec.md §4's four-mode tick bodies all terminate
// here). Grounded on axis.cpp's Controller::update cascade — position error
// feeds a velocity setpoint, velocity error feeds a current setpoint — and
// on the teacher's plain-struct config style (standalone/config/config.go).
package controller

import "math"

// Mode selects which setpoint stage is authoritative; lower stages are
// still evaluated every tick so switching mode never causes a setpoint
// discontinuity (mirrors axis.cpp's CTRL_MODE_* enum).
type Mode int

const (
	ModePositionControl Mode = iota
	ModeVelocityControl
	ModeCurrentControl
)

// Config mirrors axis.cpp's Controller::Config_t fields this repository
// exercises.
type Config struct {
	ControlMode Mode
	PosGain     float32 // velocity per unit position error
	VelGain     float32 // current per unit velocity error
	VelIntegGain float32
	VelLimit    float32
	CurrentLimit float32
	// CoggingMap, when non-nil, is added to the current setpoint; the map
	// spans one mechanical revolution, so the entry used is
	// floor(pos*len(CoggingMap)) modulo len(CoggingMap), matching
	// axis.cpp's anticogging compensation table.
	CoggingMap []float32
}

// Controller is the interface the axis's tick-body mode objects call once
// per control tick.
type Controller interface {
	Init(cfg Config) error
	// Update computes a current setpoint from the current position and
	// velocity estimates, respecting whichever setpoint fields were set
	// by SetPosSetpoint/SetVelSetpoint/SetCurrentSetpoint.
	Update(pos, vel float32, dtSeconds float32) (currentSetpoint float32, err error)
	SetPosSetpoint(pos float32)
	SetVelSetpoint(vel float32)
	SetCurrentSetpoint(current float32)
	PosSetpoint() float32
	VelSetpoint() float32
	CurrentSetpoint() float32
	// SetCoggingMap installs the anticogging compensation table, matching
	// axis.cpp's once-per-thread-start allocation. A nil map disables
	// compensation without treating that as an error.
	SetCoggingMap(m []float32)
	Config() Config
}

// Cascade is the default Controller implementation.
type Cascade struct {
	cfg Config

	posSetpoint     float32
	velSetpoint     float32
	currentSetpoint float32
	velIntegrator   float32
}

// New constructs an unconfigured Cascade controller.
func New() *Cascade { return &Cascade{} }

func (c *Cascade) Init(cfg Config) error {
	c.cfg = cfg
	c.posSetpoint = 0
	c.velSetpoint = 0
	c.currentSetpoint = 0
	c.velIntegrator = 0
	return nil
}

func (c *Cascade) SetPosSetpoint(pos float32)     { c.posSetpoint = pos }
func (c *Cascade) SetVelSetpoint(vel float32)     { c.velSetpoint = vel }
func (c *Cascade) SetCurrentSetpoint(cur float32) { c.currentSetpoint = cur }
func (c *Cascade) PosSetpoint() float32           { return c.posSetpoint }
func (c *Cascade) VelSetpoint() float32           { return c.velSetpoint }
func (c *Cascade) CurrentSetpoint() float32       { return c.currentSetpoint }
func (c *Cascade) SetCoggingMap(m []float32)      { c.cfg.CoggingMap = m }
func (c *Cascade) Config() Config                 { return c.cfg }

func (c *Cascade) Update(pos, vel float32, dtSeconds float32) (float32, error) {
	velSetpoint := c.velSetpoint
	if c.cfg.ControlMode >= ModePositionControl && c.cfg.ControlMode <= ModeVelocityControl {
		if c.cfg.ControlMode == ModePositionControl {
			posErr := c.posSetpoint - pos
			velSetpoint = c.velSetpoint + posErr*c.cfg.PosGain
		}
		if c.cfg.VelLimit > 0 {
			velSetpoint = clamp(velSetpoint, -c.cfg.VelLimit, c.cfg.VelLimit)
		}
	}

	current := c.currentSetpoint
	if c.cfg.ControlMode != ModeCurrentControl {
		velErr := velSetpoint - vel
		c.velIntegrator += velErr * c.cfg.VelIntegGain * dtSeconds
		current = velErr*c.cfg.VelGain + c.velIntegrator
	}

	current += c.coggingCompensation(pos)

	if c.cfg.CurrentLimit > 0 {
		current = clamp(current, -c.cfg.CurrentLimit, c.cfg.CurrentLimit)
	}
	return current, nil
}

func (c *Cascade) coggingCompensation(pos float32) float32 {
	n := len(c.cfg.CoggingMap)
	if n == 0 {
		return 0
	}
	idx := int(math.Mod(float64(pos)*float64(n), float64(n)))
	if idx < 0 {
		idx += n
	}
	return c.cfg.CoggingMap[idx]
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
