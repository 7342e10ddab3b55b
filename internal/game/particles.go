package game

import "fish-hunt/internal/vmath"

// Particle is one instance in a pool. Rotation, Scale and Color are cosmetic.
// Lifetime is only meaningful for smoke.
type Particle struct {
	Position vmath.Vec3
	Velocity vmath.Vec3
	Rotation vmath.Quat
	Scale    float64
	Color    vmath.Vec3
	Lifetime int
}

// Variant selects a pool's integration and removal rule.
type Variant uint8

const (
	// VariantGravity falls under gravity and is removed below the floor.
	VariantGravity Variant = iota
	// VariantSmoke drifts at constant velocity until its lifetime runs out.
	VariantSmoke
)

// String returns the variant name used in metrics.
func (v Variant) String() string {
	switch v {
	case VariantGravity:
		return "gravity"
	case VariantSmoke:
		return "smoke"
	default:
		return "unknown"
	}
}

// Pool is an unordered collection of particles of one variant.
// Instance order is not stable across Update.
type Pool struct {
	variant   Variant
	instances []Particle
	limit     int // 0 = unbounded
	dropped   uint64
}

// NewPool creates a pool. limit caps the instance count; 0 means unbounded.
func NewPool(variant Variant, limit int) *Pool {
	initial := 256
	if limit > 0 && limit < initial {
		initial = limit
	}
	return &Pool{
		variant:   variant,
		instances: make([]Particle, 0, initial),
		limit:     limit,
	}
}

// Add appends one instance. It returns false, and counts a drop, when the pool
// is at its cap.
func (p *Pool) Add(pt Particle) bool {
	// HARD CAP: the renderer's instance buffer cannot hold more
	if p.limit > 0 && len(p.instances) >= p.limit {
		p.dropped++
		return false
	}
	p.instances = append(p.instances, pt)
	return true
}

// Update advances every instance by one step and compacts out the removed ones.
func (p *Pool) Update() {
	// Zero-allocation in-place filtering
	n := 0
	switch p.variant {
	case VariantGravity:
		for i := range p.instances {
			pt := &p.instances[i]
			pt.Position = pt.Position.Add(pt.Velocity)
			pt.Velocity[2] -= GravityPerStep
			if pt.Position[2] >= FloorZ {
				p.instances[n] = *pt
				n++
			}
		}
	case VariantSmoke:
		for i := range p.instances {
			pt := &p.instances[i]
			pt.Position = pt.Position.Add(pt.Velocity)
			pt.Lifetime--
			if pt.Lifetime > 0 {
				p.instances[n] = *pt
				n++
			}
		}
	}
	p.instances = p.instances[:n]
}

// Instances returns the live instances. The slice is only valid until the
// next Add or Update.
func (p *Pool) Instances() []Particle {
	return p.instances
}

// Len returns the live instance count.
func (p *Pool) Len() int {
	return len(p.instances)
}

// Dropped returns how many adds were refused by the cap.
func (p *Pool) Dropped() uint64 {
	return p.dropped
}

// Variant returns the pool's variant.
func (p *Pool) Variant() Variant {
	return p.variant
}

// reset removes every instance, keeping capacity.
func (p *Pool) reset() {
	p.instances = p.instances[:0]
}
