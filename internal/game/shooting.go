package game

import (
	"math/rand"

	"fish-hunt/internal/vmath"
)

// GunPose is the shotgun's placement for one frame.
type GunPose struct {
	Position vmath.Vec3
	Rotation vmath.Quat
}

// AimGun turns pointer NDC into the gun pose.
func AimGun(x, y float64) GunPose {
	return GunPose{
		Position: GunPosition,
		Rotation: vmath.QuatMul(vmath.RZ(-x*AimScale), vmath.RY(y*AimScale)),
	}
}

// Forward is the barrel direction.
func (g GunPose) Forward() vmath.Vec3 {
	return vmath.Rotate(g.Rotation, GunForward)
}

// Muzzle is the world position smoke comes out of.
func (g GunPose) Muzzle() vmath.Vec3 {
	return vmath.Add(g.Position, vmath.Rotate(g.Rotation, MuzzleOffset))
}

// ShotResult describes one trigger pull.
type ShotResult struct {
	Slots      []int // Fish slots hit by this shot
	Counted    bool  // Whether the shot incremented the hit counter
	Hits       int   // Hit counter after the shot
	Milestone  int   // Milestone reached by this shot, 0 if none
	Degenerate bool  // The pick ray was degenerate, so nothing could be hit
}

// Shooter holds one play session's trigger latch and score.
type Shooter struct {
	hitbox    Hitbox
	rng       *rand.Rand
	latch     bool
	hits      int
	shots     int
	milestone map[int]bool // thresholds not yet fired
}

// NewShooter creates a shooter with all milestones armed.
func NewShooter(rng *rand.Rand) *Shooter {
	armed := make(map[int]bool, len(Milestones))
	for _, m := range Milestones {
		armed[m] = true
	}
	return &Shooter{
		hitbox:    Hitbox{Radius: HitRadius},
		rng:       rng,
		milestone: armed,
	}
}

// Trigger feeds the current button state and reports a press edge.
// The latch re-arms only after release.
func (s *Shooter) Trigger(held bool) bool {
	if !held {
		s.latch = false
		return false
	}
	if s.latch {
		return false
	}
	s.latch = true
	return true
}

// Fire resolves one shot: hit-test visible fish, burst and respawn each hit,
// puff smoke at the muzzle, then score at most one hit.
func (s *Shooter) Fire(ray Ray, gun GunPose, flock *Flock, burst, smoke *Pool, now float64) ShotResult {
	s.shots++
	res := ShotResult{Degenerate: ray.Degenerate()}
	forward := gun.Forward()

	if !res.Degenerate {
		for i := 0; i < flock.Len(); i++ {
			f := flock.Fish(i)
			if !f.Visible {
				continue
			}
			pos := f.Position(now)
			if !s.hitbox.CheckHit(pos, ray) {
				continue
			}
			s.spawnBurst(burst, pos, forward)
			flock.Respawn(i, now)
			res.Slots = append(res.Slots, i)
		}
	}

	s.spawnSmoke(smoke, gun.Muzzle(), forward)

	if len(res.Slots) > 0 {
		s.hits++
		res.Counted = true
		if s.milestone[s.hits] {
			delete(s.milestone, s.hits)
			res.Milestone = s.hits
		}
	}
	res.Hits = s.hits
	return res
}

func (s *Shooter) spawnBurst(pool *Pool, at, forward vmath.Vec3) {
	for i := 0; i < BurstCount; i++ {
		jitter := vmath.Vec3{
			vmath.Uniform(s.rng, -0.1, 0.1),
			vmath.Uniform(s.rng, -0.1, 0.1),
			vmath.Uniform(s.rng, 0.05, 0.25),
		}
		pool.Add(Particle{
			Position: at,
			Velocity: forward.Mul(vmath.Uniform(s.rng, 0.1, 0.3)).Add(jitter),
			Rotation: vmath.RandomQuaternion(s.rng),
			Scale:    vmath.Uniform(s.rng, 0.05, 0.15),
			Color:    BurstColor,
		})
	}
}

func (s *Shooter) spawnSmoke(pool *Pool, at, forward vmath.Vec3) {
	for i := 0; i < SmokeCount; i++ {
		jitter := vmath.Vec3{
			vmath.Uniform(s.rng, -0.005, 0.005),
			vmath.Uniform(s.rng, -0.005, 0.005),
			vmath.Uniform(s.rng, -0.005, 0.005),
		}
		pool.Add(Particle{
			Position: at,
			Velocity: forward.Mul(0.03).Add(jitter),
			Rotation: vmath.RandomQuaternion(s.rng),
			Scale:    vmath.Uniform(s.rng, 0.05, 0.1),
			Color:    SmokeColor,
			Lifetime: SmokeLifeMin + s.rng.Intn(SmokeLifeMax-SmokeLifeMin),
		})
	}
}

// Hits returns the session hit counter.
func (s *Shooter) Hits() int {
	return s.hits
}

// Shots returns how many trigger pulls were resolved.
func (s *Shooter) Shots() int {
	return s.shots
}
