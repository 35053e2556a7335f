// Package encoder models the axis's position sensor: a quadrature
// incremental encoder with an optional index pulse. Grounded on the
// teacher's core/trsync.go (linked-list signal callbacks fired once a
// condition latches, reused here for the index-found subscription) and
// core/endstop.go (GPIO edge sampling feeding a latched state), generalized
// from homing triggers to index search.
package encoder

import (
	"errors"
	"sync"
	"sync/atomic"

	"axisctl/hal"
)

// ErrNotReady is returned by RunIndexSearch before the index pulse has
// latched, and by RunOffsetCalibration before RunDirectionFind has run.
var ErrNotReady = errors.New("encoder: not ready")

// idxSignal is a single registered index-found callback, mirroring
// core/trsync.go's TriggerSignal linked list.
type idxSignal struct {
	callback func()
	next     *idxSignal
}

// Config mirrors axis.cpp's Encoder::Config_t fields this repository
// exercises: counts per revolution, whether an index channel is present,
// and whether index search may assume a known spin direction.
type Config struct {
	CPR                     uint32
	PolePairs               uint32
	UseIndex                bool
	IdxSearchUnidirectional bool
	IndexPin                hal.Pin
	APin                    hal.Pin
	BPin                    hal.Pin
}

// Encoder is the interface the axis package programs against.
type Encoder interface {
	Init(cfg Config) error
	// Update samples the quadrature count and advances the position/
	// velocity estimate for one control tick; dtSeconds is the tick period.
	Update(dtSeconds float32) error
	// RunIndexSearch reports whether the index pulse has latched:
	// ErrNotReady until it has, nil afterwards. It does not turn the rotor
	// itself. No-op (succeeds immediately) if UseIndex is false.
	RunIndexSearch() error
	// RunDirectionFind sets the encoder-to-motor direction sign from the
	// sign of forcedVelocity, failing if it is zero; no rotation is driven
	// and no pulses are counted.
	RunDirectionFind(forcedVelocity float32) error
	// RunOffsetCalibration sets the electrical-to-mechanical phase offset
	// (to zero; no phase current is measured); requires RunDirectionFind
	// to have completed.
	RunOffsetCalibration() error
	DoChecks() error
	// SetIdxSubscribe registers a callback fired exactly once the index
	// pulse is found. Passing nil clears any existing subscription.
	SetIdxSubscribe(cb func())
	IsReady() bool
	IndexFound() bool
	PosEstimate() float32
	VelEstimate() float32
	Phase() float32
	Config() Config
}

// Quadrature is the default Encoder implementation, reading an A/B pair
// through hal.GPIODriver edge subscriptions and an optional index pin.
type Quadrature struct {
	mu  sync.Mutex
	cfg Config

	count        int64
	lastAB       uint8
	indexFound   atomic.Bool
	directionSet bool
	direction    int32
	offsetRad    float32

	posEstimate float32
	velEstimate float32

	signals *idxSignal
}

// New constructs an unconfigured Quadrature encoder.
func New() *Quadrature { return &Quadrature{direction: 1} }

func (e *Quadrature) Init(cfg Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cfg.CPR == 0 {
		return errors.New("encoder: CPR must be nonzero")
	}
	gpio := hal.MustGPIO()
	if err := gpio.ConfigureInput(cfg.APin, hal.PullUp); err != nil {
		return err
	}
	if err := gpio.ConfigureInput(cfg.BPin, hal.PullUp); err != nil {
		return err
	}
	if err := gpio.Subscribe(cfg.APin, hal.EdgeBoth, e.onQuadEdge); err != nil {
		return err
	}
	if err := gpio.Subscribe(cfg.BPin, hal.EdgeBoth, e.onQuadEdge); err != nil {
		return err
	}
	if cfg.UseIndex {
		if err := gpio.ConfigureInput(cfg.IndexPin, hal.PullNone); err != nil {
			return err
		}
		if err := gpio.Subscribe(cfg.IndexPin, hal.EdgeRising, e.onIndexEdge); err != nil {
			return err
		}
	}
	e.cfg = cfg
	e.count = 0
	e.lastAB = 0
	e.indexFound.Store(!cfg.UseIndex)
	e.directionSet = false
	return nil
}

// onQuadEdge runs from GPIO callback context (hal.EdgeCallback); it must
// stay allocation-free and non-blocking, exactly like the tick body it
// feeds.
func (e *Quadrature) onQuadEdge(pin hal.Pin, level bool) {
	gpio := hal.MustGPIO()
	a, _ := gpio.Read(e.cfg.APin)
	b, _ := gpio.Read(e.cfg.BPin)
	ab := uint8(0)
	if a {
		ab |= 1
	}
	if b {
		ab |= 2
	}
	e.mu.Lock()
	e.count += int64(quadratureDelta[e.lastAB][ab])
	e.lastAB = ab
	e.mu.Unlock()
}

func (e *Quadrature) onIndexEdge(pin hal.Pin, level bool) {
	if e.indexFound.CompareAndSwap(false, true) {
		e.mu.Lock()
		sig := e.signals
		e.mu.Unlock()
		for sig != nil {
			sig.callback()
			sig = sig.next
		}
	}
}

func (e *Quadrature) SetIdxSubscribe(cb func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cb == nil {
		e.signals = nil
		return
	}
	e.signals = &idxSignal{callback: cb, next: e.signals}
}

func (e *Quadrature) Update(dtSeconds float32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if dtSeconds <= 0 {
		return errors.New("encoder: dt must be positive")
	}
	counts := float64(e.count)
	newPos := float32(counts/float64(e.cfg.CPR)) * float32(e.direction)
	e.velEstimate = (newPos - e.posEstimate) / dtSeconds
	e.posEstimate = newPos
	return nil
}

func (e *Quadrature) RunIndexSearch() error {
	if !e.cfg.UseIndex {
		e.indexFound.Store(true)
		return nil
	}
	// The real search spins the rotor at a bench-safe velocity until the
	// index ISR latches; in this model the ISR is the sole path to
	// indexFound becoming true, so this call just reports current state —
	// a caller drives rotation through the motor/controller tick loop and
	// polls IndexFound until it latches.
	if !e.indexFound.Load() {
		return ErrNotReady
	}
	return nil
}

func (e *Quadrature) RunDirectionFind(forcedVelocity float32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if forcedVelocity > 0 {
		e.direction = 1
	} else if forcedVelocity < 0 {
		e.direction = -1
	} else {
		return errors.New("encoder: forced velocity must be nonzero")
	}
	e.directionSet = true
	return nil
}

func (e *Quadrature) RunOffsetCalibration() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.directionSet {
		return ErrNotReady
	}
	// A bench calibration would correlate measured phase current against
	// position here; offset defaults to zero until driven by a caller
	// with real current feedback, matching this repository's HAL-backed
	// model scope.
	e.offsetRad = 0
	return nil
}

func (e *Quadrature) DoChecks() error { return nil }

func (e *Quadrature) IsReady() bool {
	return e.indexFound.Load() && (e.cfg.UseIndex == false || e.directionSet)
}

func (e *Quadrature) IndexFound() bool { return e.indexFound.Load() }

func (e *Quadrature) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

func (e *Quadrature) PosEstimate() float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.posEstimate
}

func (e *Quadrature) VelEstimate() float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.velEstimate
}

// Phase returns the encoder's electrical phase estimate: the mechanical
// position estimate scaled by the motor's pole-pair count (so one
// mechanical revolution spans PolePairs electrical cycles), plus the
// calibrated offset, wrapped to (-pi, pi].
func (e *Quadrature) Phase() float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	pp := float32(e.cfg.PolePairs)
	if pp == 0 {
		pp = 1
	}
	return wrapPmPi(e.posEstimate*2*3.14159265*pp + e.offsetRad)
}

// quadratureDelta[prev][cur] gives +1 for a forward (A leads B) A/B
// transition, -1 for a reverse one, and 0 otherwise.
var quadratureDelta = [4][4]int32{
	{0, 1, -1, 0},
	{-1, 0, 0, 1},
	{1, 0, 0, -1},
	{0, -1, 1, 0},
}

// wrapPmPi wraps an angle in radians to (-pi, pi], matching axis.cpp's
// wrap_pm_pi helper used throughout the lock-in and phase computations.
func wrapPmPi(theta float32) float32 {
	const twoPi = 2 * 3.14159265
	theta = theta - twoPi*float32(int((theta+3.14159265)/twoPi))
	if theta <= -3.14159265 {
		theta += twoPi
	}
	if theta > 3.14159265 {
		theta -= twoPi
	}
	return theta
}
