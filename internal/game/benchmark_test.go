package game

import (
	"math/rand"
	"testing"
	"time"

	"fish-hunt/internal/vmath"
)

// =============================================================================
// BENCHMARK SUITE: FRAME PATH
// Run with: go test -bench=. -benchmem ./internal/game/...
// =============================================================================

// -----------------------------------------------------------------------------
// DIRECTOR FRAME BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkRunFrame_Play(b *testing.B) {
	mt := &ManualTime{}
	e := NewEngine(EngineConfig{Seed: 1}, mt, DiscardRenderer{}, SilentAudio{})
	e.mu.Lock()
	e.scene = NewScene(ScenePlay, 0, nil, e.deps())
	e.mu.Unlock()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		// Stay inside the 60s session.
		mt.Set(time.Duration(i%3000) * 16 * time.Millisecond)
		e.RunFrame()
	}
}

func BenchmarkRunFrame_PlayShooting(b *testing.B) {
	mt := &ManualTime{}
	e := NewEngine(EngineConfig{Seed: 1}, mt, DiscardRenderer{}, SilentAudio{})
	e.mu.Lock()
	e.scene = NewScene(ScenePlay, 0, nil, e.deps())
	e.mu.Unlock()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		mt.Set(time.Duration(i%3000) * 16 * time.Millisecond)
		action := ActionPress
		if i%2 == 1 {
			action = ActionRelease
		}
		e.PushInput(InputEvent{Action: action, Key: Mouse1})
		e.RunFrame()
	}
}

// -----------------------------------------------------------------------------
// SNAPSHOT BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkProduceSnapshot(b *testing.B) {
	e := NewEngine(EngineConfig{Seed: 1}, &ManualTime{}, nil, nil)
	e.mu.Lock()
	e.scene = NewScene(ScenePlay, 0, nil, e.deps())
	e.mu.Unlock()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		e.produceSnapshot(float64(i) * 0.016)
	}
}

func BenchmarkGetSnapshot(b *testing.B) {
	e := NewEngine(EngineConfig{Seed: 1}, &ManualTime{}, nil, nil)
	e.RunFrame()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = e.GetSnapshot()
	}
}

// -----------------------------------------------------------------------------
// PARTICLE POOL BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkPoolUpdate_Gravity1000(b *testing.B)  { benchmarkPool(b, VariantGravity, 1000) }
func BenchmarkPoolUpdate_Gravity10000(b *testing.B) { benchmarkPool(b, VariantGravity, 10000) }
func BenchmarkPoolUpdate_Smoke1000(b *testing.B)    { benchmarkPool(b, VariantSmoke, 1000) }

func benchmarkPool(b *testing.B, variant Variant, n int) {
	rng := rand.New(rand.NewSource(1))
	pool := NewPool(variant, n)
	fill := func() {
		for pool.Len() < n {
			pool.Add(Particle{
				Position: vmath.Vec3{0, 0, 1000}, // high enough to outlive the benchmark loop
				Velocity: vmath.RandomUnitVector(rng).Mul(0.01),
				Scale:    0.1,
				Lifetime: 1 << 30,
			})
		}
	}
	fill()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		pool.Update()
		if pool.Len() < n {
			b.StopTimer()
			pool.reset()
			fill()
			b.StartTimer()
		}
	}
}

// -----------------------------------------------------------------------------
// HIT TEST BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkFireAtFlock(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	flock := NewFlock(rng)
	flock.UpdateVisibility(0, false)
	shooter := NewShooter(rng)
	burst := NewPool(VariantGravity, 10000)
	smoke := NewPool(VariantSmoke, 10000)
	cam := camera(PlayTarget, FovPlay, 16.0/9.0)
	gun := AimGun(0, 0)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		ray, err := PickRay(cam, rng.Float64()*2-1, rng.Float64()*2-1)
		if err != nil {
			b.Fatal(err)
		}
		shooter.Fire(ray, gun, flock, burst, smoke, float64(i)*0.016)
		if burst.Len() > 9000 || smoke.Len() > 9000 {
			burst.reset()
			smoke.reset()
		}
	}
}
