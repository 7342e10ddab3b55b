package game

import (
	"math"
	"math/rand"

	"fish-hunt/internal/vmath"
)

// BaseOffset is a fish's random slot parameters. Position is always derived
// from it and the clock, never stored.
type BaseOffset struct {
	X, Y, Z, Phase float64
}

// Fish is one flock entity.
type Fish struct {
	Slot        int
	Base        BaseOffset
	Orientation vmath.Quat
	Spin        vmath.Quat
	Visible     bool
}

// Wave returns s(now) = sin(now + phase*6), which drives both height and
// visibility.
func (f *Fish) Wave(now float64) float64 {
	return math.Sin(now*FishWaveSpeed + f.Base.Phase*FishPhaseScale)
}

// Position returns the fish's world position at now.
func (f *Fish) Position(now float64) vmath.Vec3 {
	return vmath.Vec3{
		f.Base.X*FishSpread - FishDepthOffset,
		f.Base.Y + (float64(f.Slot)-4.5)*FishLaneSpacing,
		f.Base.Z + f.Wave(now)*FishSwing,
	}
}

// Flock is the fixed fleet of FlockSize fish.
type Flock struct {
	fish [FlockSize]Fish
	rng  *rand.Rand
}

// NewFlock creates FlockSize hidden fish with random offsets, orientation and spin.
func NewFlock(rng *rand.Rand) *Flock {
	fl := &Flock{rng: rng}
	for i := range fl.fish {
		fl.fish[i] = Fish{
			Slot: i,
			Base: BaseOffset{
				X:     vmath.Uniform(rng, -0.5, 0.5),
				Y:     vmath.Uniform(rng, -0.5, 0.5),
				Z:     vmath.Uniform(rng, -0.5, 0.5),
				Phase: vmath.Uniform(rng, -0.5, 0.5),
			},
			Orientation: vmath.RandomQuaternion(rng),
			Spin:        vmath.AxisAngle(vmath.RandomUnitVector(rng), SpinAngle),
		}
	}
	return fl
}

// UpdateVisibility runs each fish's visibility machine at now. In normal play a
// hidden fish appears when s < threshold. While retiring the same predicate
// hides a visible fish instead, and hidden fish stay hidden.
func (fl *Flock) UpdateVisibility(now float64, retiring bool) {
	for i := range fl.fish {
		f := &fl.fish[i]
		if f.Wave(now) >= VisibilityThreshold {
			continue
		}
		if retiring {
			f.Visible = false
		} else {
			f.Visible = true
		}
	}
}

// Step applies one spin increment to every fish.
func (fl *Flock) Step() {
	for i := range fl.fish {
		f := &fl.fish[i]
		f.Orientation = vmath.QuatMul(f.Orientation, f.Spin).Normalize()
	}
}

// Respawn gives slot i a fresh base offset and orientation. The phase is
// pushed so the fish does not resurface in sync with the others.
// Visibility and spin are kept.
func (fl *Flock) Respawn(i int, now float64) {
	f := &fl.fish[i]
	f.Base = BaseOffset{
		X:     vmath.Uniform(fl.rng, -0.5, 0.5),
		Y:     vmath.Uniform(fl.rng, -0.5, 0.5),
		Z:     vmath.Uniform(fl.rng, -0.5, 0.5),
		Phase: vmath.Uniform(fl.rng, -0.1, 0.1) - (now+math.Pi/2)/FishPhaseScale,
	}
	f.Orientation = vmath.RandomQuaternion(fl.rng)
}

// AnyVisible reports whether at least one fish is visible.
func (fl *Flock) AnyVisible() bool {
	for i := range fl.fish {
		if fl.fish[i].Visible {
			return true
		}
	}
	return false
}

// VisibleCount returns the number of visible fish.
func (fl *Flock) VisibleCount() int {
	n := 0
	for i := range fl.fish {
		if fl.fish[i].Visible {
			n++
		}
	}
	return n
}

// Fish returns a pointer to slot i.
func (fl *Flock) Fish(i int) *Fish {
	return &fl.fish[i]
}

// Len is always FlockSize.
func (fl *Flock) Len() int {
	return len(fl.fish)
}
