package game

import (
	"math/rand"
	"testing"

	"fish-hunt/internal/vmath"
)

// rayAlongX is the line y=0, z=0.
var rayAlongX = Ray{Near: vmath.Vec3{0, 0, 0}, Far: vmath.Vec3{-100, 0, 0}}

func TestHitboxBoundary(t *testing.T) {
	h := Hitbox{Radius: HitRadius}

	tests := []struct {
		name string
		d    float64
		want bool
	}{
		{"inside", 1.999, true},
		{"on axis", 0, true},
		{"exactly radius is a miss", 2.0, false},
		{"outside", 2.001, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := vmath.Vec3{-30, 0, tt.d}
			if got := h.CheckHit(target, rayAlongX); got != tt.want {
				t.Errorf("CheckHit at distance %v = %v, want %v", tt.d, got, tt.want)
			}
		})
	}
}

func TestDegenerateRayNeverHits(t *testing.T) {
	h := Hitbox{Radius: HitRadius}
	p := vmath.Vec3{1, 1, 1}
	if h.CheckHit(p, Ray{Near: p, Far: p}) {
		t.Error("zero-length ray must not hit, even through the target")
	}
	if !(Ray{}).Degenerate() {
		t.Error("zero Ray should be degenerate")
	}
}

func TestTriggerLatch(t *testing.T) {
	s := NewShooter(rand.New(rand.NewSource(1)))
	held := []bool{false, true, true, true, false, false, true, false, true}
	want := []bool{false, true, false, false, false, false, true, false, true}

	for i := range held {
		if got := s.Trigger(held[i]); got != want[i] {
			t.Errorf("frame %d: Trigger(%v) = %v, want %v", i, held[i], got, want[i])
		}
	}
}

// flockOnRay parks visible fish at distance d from rayAlongX.
func flockOnRay(t *testing.T, rng *rand.Rand, visible int, d float64) *Flock {
	t.Helper()
	fl := NewFlock(rng)
	for i := 0; i < fl.Len(); i++ {
		f := fl.Fish(i)
		// Position at now=0 with phase 0: (x*10-16, y+(i-4.5)*3, z)
		f.Base = BaseOffset{X: 0, Y: -(float64(i) - 4.5) * FishLaneSpacing, Z: d, Phase: 0}
		f.Visible = i < visible
	}
	return fl
}

func TestFireMultipleHitsCountOnce(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	fl := flockOnRay(t, rng, 3, 0.5)
	burst := NewPool(VariantGravity, 0)
	smoke := NewPool(VariantSmoke, 0)
	s := NewShooter(rng)

	res := s.Fire(rayAlongX, AimGun(0, 0), fl, burst, smoke, 0)

	if len(res.Slots) != 3 {
		t.Fatalf("Expected 3 fish hit, got %v", res.Slots)
	}
	if !res.Counted || s.Hits() != 1 || res.Hits != 1 {
		t.Errorf("hits = %d after one shot with 3 hits, want 1", s.Hits())
	}
	if burst.Len() != 3*BurstCount {
		t.Errorf("burst particles = %d, want %d", burst.Len(), 3*BurstCount)
	}
	if smoke.Len() != SmokeCount {
		t.Errorf("smoke particles = %d, want %d", smoke.Len(), SmokeCount)
	}
	if res.Milestone != 1 {
		t.Errorf("first hit should reach milestone 1, got %d", res.Milestone)
	}
}

func TestFireBurstAtPreRespawnPosition(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	fl := flockOnRay(t, rng, 1, 0.5)
	want := fl.Fish(0).Position(0)

	burst := NewPool(VariantGravity, 0)
	s := NewShooter(rng)
	s.Fire(rayAlongX, AimGun(0, 0), fl, burst, NewPool(VariantSmoke, 0), 0)

	for _, p := range burst.Instances() {
		if p.Position != want {
			t.Fatalf("burst at %v, want %v", p.Position, want)
		}
		if p.Color != BurstColor {
			t.Fatalf("burst color %v", p.Color)
		}
		if p.Velocity[2] < 0.05 {
			t.Fatalf("burst should be biased upward, vz=%v", p.Velocity[2])
		}
	}
	if fl.Fish(0).Position(0) == want {
		t.Error("hit fish should have respawned")
	}
}

func TestFireMissStillSmokes(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	fl := flockOnRay(t, rng, FlockSize, 5)
	burst := NewPool(VariantGravity, 0)
	smoke := NewPool(VariantSmoke, 0)
	s := NewShooter(rng)

	gun := AimGun(0.3, -0.2)
	res := s.Fire(rayAlongX, gun, fl, burst, smoke, 0)

	if res.Counted || len(res.Slots) != 0 || s.Hits() != 0 {
		t.Errorf("miss counted: %+v", res)
	}
	if burst.Len() != 0 {
		t.Errorf("miss spawned %d burst particles", burst.Len())
	}
	if smoke.Len() != SmokeCount {
		t.Fatalf("smoke particles = %d, want %d", smoke.Len(), SmokeCount)
	}
	muzzle := gun.Muzzle()
	for _, p := range smoke.Instances() {
		if p.Position != muzzle {
			t.Fatalf("smoke at %v, want muzzle %v", p.Position, muzzle)
		}
		if p.Lifetime < SmokeLifeMin || p.Lifetime >= SmokeLifeMax {
			t.Fatalf("smoke lifetime %d out of range", p.Lifetime)
		}
		if p.Color != SmokeColor {
			t.Fatalf("smoke color %v", p.Color)
		}
	}
}

func TestFireIgnoresHiddenFish(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	fl := flockOnRay(t, rng, 0, 0)
	s := NewShooter(rng)

	res := s.Fire(rayAlongX, AimGun(0, 0), fl, NewPool(VariantGravity, 0), NewPool(VariantSmoke, 0), 0)
	if res.Counted {
		t.Error("hidden fish must not be hittable")
	}
}

func TestFireDegenerateRay(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	fl := flockOnRay(t, rng, FlockSize, 0)
	smoke := NewPool(VariantSmoke, 0)
	s := NewShooter(rng)

	p := vmath.Vec3{-16, 0, 0}
	res := s.Fire(Ray{Near: p, Far: p}, AimGun(0, 0), fl, NewPool(VariantGravity, 0), smoke, 0)
	if !res.Degenerate || res.Counted {
		t.Errorf("degenerate ray result: %+v", res)
	}
	if smoke.Len() != SmokeCount {
		t.Error("degenerate shot should still puff smoke")
	}
}

func TestMilestonesFireOnce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := NewShooter(rng)
	burst := NewPool(VariantGravity, 0)
	smoke := NewPool(VariantSmoke, 0)

	got := map[int]int{}
	for shot := 0; shot < 120; shot++ {
		fl := flockOnRay(t, rng, 1, 0)
		res := s.Fire(rayAlongX, AimGun(0, 0), fl, burst, smoke, 0)
		if res.Milestone != 0 {
			got[res.Milestone]++
		}
		burst.reset()
		smoke.reset()
	}

	if s.Hits() != 120 {
		t.Fatalf("hits = %d, want 120", s.Hits())
	}
	if len(got) != len(Milestones) {
		t.Errorf("fired %d distinct milestones, want %d", len(got), len(Milestones))
	}
	for _, m := range Milestones {
		if got[m] != 1 {
			t.Errorf("milestone %d fired %d times", m, got[m])
		}
	}
}

func TestAimGunCentered(t *testing.T) {
	g := AimGun(0, 0)
	if g.Position != GunPosition {
		t.Errorf("gun position %v", g.Position)
	}
	f := g.Forward()
	if !approx(f[0], -1) || !approx(f[1], 0) || !approx(f[2], 0) {
		t.Errorf("centered gun forward %v", f)
	}
}
