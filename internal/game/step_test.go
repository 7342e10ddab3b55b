package game

import "testing"

func TestPerFrame(t *testing.T) {
	var p PerFrame
	for _, now := range []float64{0, 0.001, 10, 5} {
		if n := p.Steps(now); n != 1 {
			t.Errorf("Steps(%v) = %d", now, n)
		}
	}
}

func TestFixedStep(t *testing.T) {
	tests := []struct {
		name  string
		times []float64
		want  []int
	}{
		{"first call primes", []float64{3}, []int{0}},
		{"whole steps", []float64{0, 0.105, 0.2055}, []int{0, 10, 10}},
		{"remainder carries", []float64{0, 0.015, 0.0305}, []int{0, 1, 2}},
		{"quarter second is not capped", []float64{0, 0.2405}, []int{0, 24}},
		{"catch-up is capped", []float64{0, 5, 5.025}, []int{0, maxCatchUp, 2}},
		{"clock reset restarts", []float64{0, 4, 0, 0.055}, []int{0, maxCatchUp, 0, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewFixedStep(100)
			for i, now := range tt.times {
				if got := p.Steps(now); got != tt.want[i] {
					t.Errorf("call %d at %v: got %d, want %d", i, now, got, tt.want[i])
				}
			}
		})
	}
}

func TestNewStepPolicy(t *testing.T) {
	if _, ok := NewStepPolicy(0).(PerFrame); !ok {
		t.Error("hz 0 should step per frame")
	}
	if _, ok := NewStepPolicy(-5).(PerFrame); !ok {
		t.Error("negative hz should step per frame")
	}
	if _, ok := NewStepPolicy(120).(*FixedStep); !ok {
		t.Error("positive hz should use a fixed step")
	}
	if p := NewFixedStep(0); p.dt != 1.0/60 {
		t.Errorf("default dt = %v", p.dt)
	}
}
