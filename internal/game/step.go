package game

import "math"

// StepPolicy decides how many simulation steps a frame runs. Spin, gravity
// and smoke lifetime all advance per step, never per second.
type StepPolicy interface {
	Steps(now float64) int
}

// PerFrame runs exactly one step per rendered frame, so motion speed follows
// the frame rate.
type PerFrame struct{}

// Steps always returns 1.
func (PerFrame) Steps(float64) int { return 1 }

// maxCatchUp bounds the steps one frame may run after a stall. Ordinary
// frame gaps stay below it; anything longer drops the excess time.
const maxCatchUp = 25

// FixedStep runs as many steps of a fixed duration as wall time allows.
type FixedStep struct {
	dt      float64
	acc     float64
	last    float64
	started bool
}

// NewFixedStep creates a fixed-timestep policy at hz steps per second.
func NewFixedStep(hz int) *FixedStep {
	if hz <= 0 {
		hz = 60
	}
	return &FixedStep{dt: 1 / float64(hz)}
}

// Steps accumulates the time since the previous call and consumes it in
// whole steps. A clock reset (now going backwards) restarts accumulation.
func (f *FixedStep) Steps(now float64) int {
	if !f.started || now < f.last {
		f.started = true
		f.last = now
		f.acc = 0
		return 0
	}

	f.acc += now - f.last
	f.last = now

	n := int(math.Floor(f.acc / f.dt))
	if n > maxCatchUp {
		n = maxCatchUp
		f.acc = 0
		return n
	}
	f.acc -= float64(n) * f.dt
	return n
}

// NewStepPolicy returns PerFrame for hz <= 0 and FixedStep otherwise.
func NewStepPolicy(hz int) StepPolicy {
	if hz <= 0 {
		return PerFrame{}
	}
	return NewFixedStep(hz)
}
