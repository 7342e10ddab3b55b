package game

import (
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	mt := &ManualTime{}
	mt.Set(42 * time.Second)
	c := NewClock(mt)

	if c.Now() != 0 {
		t.Errorf("new clock = %v", c.Now())
	}

	mt.Advance(1500 * time.Millisecond)
	if got := c.Advance(); got != 1.5 {
		t.Errorf("Advance = %v, want 1.5", got)
	}

	// Sub-millisecond resolution
	mt.Advance(time.Microsecond)
	if got := c.Advance(); got <= 1.5 {
		t.Errorf("clock did not see 1µs: %v", got)
	}

	c.Reset()
	if c.Now() != 0 {
		t.Errorf("after Reset = %v", c.Now())
	}
	mt.Advance(250 * time.Millisecond)
	if got := c.Advance(); got != 0.25 {
		t.Errorf("Advance after reset = %v", got)
	}
}

func TestSystemTimeMonotonic(t *testing.T) {
	s := NewSystemTime()
	a := s.Now()
	time.Sleep(2 * time.Millisecond)
	if b := s.Now(); b <= a {
		t.Errorf("system time went from %v to %v", a, b)
	}
}

func TestInputApply(t *testing.T) {
	in := NewInput()
	if in.Any() {
		t.Fatal("new input should be empty")
	}

	in.Apply(InputEvent{Action: ActionPress, Key: "b"})
	in.Apply(InputEvent{Action: ActionPress, Key: Mouse1})
	in.Apply(InputEvent{Action: ActionPress, Key: ""})
	if in.Count() != 2 || !in.Held(Mouse1) || !in.Held("b") || !in.Any() {
		t.Errorf("held %d keys", in.Count())
	}

	in.Apply(InputEvent{Action: ActionRelease, Key: "b"})
	in.Apply(InputEvent{Action: ActionRelease, Key: "never-pressed"})
	if in.Count() != 1 || in.Held("b") {
		t.Errorf("after release: %d held", in.Count())
	}

	in.Apply(InputEvent{Action: ActionMove, X: 3, Y: -0.25})
	if in.X != 1 || in.Y != -0.25 {
		t.Errorf("pointer %v,%v", in.X, in.Y)
	}
}

func TestParseInputAction(t *testing.T) {
	tests := []struct {
		in      string
		want    InputAction
		wantErr bool
	}{
		{"press", ActionPress, false},
		{"DOWN", ActionPress, false},
		{"release", ActionRelease, false},
		{"up", ActionRelease, false},
		{"move", ActionMove, false},
		{"wiggle", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInputAction(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			if err == nil && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPixelToNDC(t *testing.T) {
	tests := []struct {
		px, py float64
		x, y   float64
	}{
		{0, 0, -1, 1},
		{800, 450, 0, 0},
		{1600, 900, 1, -1},
		{400, 675, -0.5, -0.5},
	}
	for _, tt := range tests {
		x, y := PixelToNDC(tt.px, tt.py, 1600, 900)
		if x != tt.x || y != tt.y {
			t.Errorf("PixelToNDC(%v,%v) = %v,%v want %v,%v", tt.px, tt.py, x, y, tt.x, tt.y)
		}
	}
	if x, y := PixelToNDC(5, 5, 0, 0); x != 0 || y != 0 {
		t.Error("zero-size window should map to center")
	}
}

func TestInputQueueOrder(t *testing.T) {
	q := NewInputQueue()
	q.Push(InputEvent{Action: ActionPress, Key: "a"})
	q.Push(InputEvent{Action: ActionRelease, Key: "a"})

	got := q.Drain(nil)
	if len(got) != 2 || got[0].Action != ActionPress || got[1].Action != ActionRelease {
		t.Errorf("drained %+v", got)
	}
	if len(q.Drain(nil)) != 0 {
		t.Error("queue should be empty after drain")
	}
}
