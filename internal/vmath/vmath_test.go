package vmath

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func vecNear(a, b Vec3) bool {
	return near(a[0], b[0]) && near(a[1], b[1]) && near(a[2], b[2])
}

func TestQuatMulMatchesHamilton(t *testing.T) {
	a := Quat{W: 0.5, V: Vec3{0.1, -0.3, 0.7}}
	b := Quat{W: -0.2, V: Vec3{0.4, 0.6, -0.1}}

	ax, ay, az, aw := a.V[0], a.V[1], a.V[2], a.W
	bx, by, bz, bw := b.V[0], b.V[1], b.V[2], b.W
	want := [4]float64{
		ax*bw + aw*bx + ay*bz - az*by,
		ay*bw + aw*by + az*bx - ax*bz,
		az*bw + aw*bz + ax*by - ay*bx,
		aw*bw - ax*bx - ay*by - az*bz,
	}

	got := XYZW(QuatMul(a, b))
	for i := range want {
		if !near(got[i], want[i]) {
			t.Fatalf("component %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAxisRotations(t *testing.T) {
	tests := []struct {
		name string
		q    Quat
		in   Vec3
		want Vec3
	}{
		{"rx 90", RX(math.Pi / 2), Vec3{0, 1, 0}, Vec3{0, 0, 1}},
		{"ry 90", RY(math.Pi / 2), Vec3{0, 0, 1}, Vec3{1, 0, 0}},
		{"rz 90", RZ(math.Pi / 2), Vec3{1, 0, 0}, Vec3{0, 1, 0}},
		{"axis angle z", AxisAngle(Vec3{0, 0, 1}, math.Pi), Vec3{1, 0, 0}, Vec3{-1, 0, 0}},
		{"identity", Identity, Vec3{1, 2, 3}, Vec3{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Rotate(tt.q, tt.in); !vecNear(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPointLineDistance(t *testing.T) {
	a, b := Vec3{0, 0, 0}, Vec3{10, 0, 0}

	tests := []struct {
		p    Vec3
		want float64
	}{
		{Vec3{5, 2, 0}, 2},
		{Vec3{-50, 0, 3}, 3}, // beyond the segment: line is infinite
		{Vec3{3, 0, 0}, 0},
		{Vec3{1, 3, 4}, 5},
	}
	for _, tt := range tests {
		d, err := PointLineDistance(tt.p, a, b)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !near(d, tt.want) {
			t.Errorf("distance(%v) = %v, want %v", tt.p, d, tt.want)
		}
	}
}

func TestPointLineDistanceDegenerate(t *testing.T) {
	p := Vec3{1, 1, 1}
	cases := [][2]Vec3{
		{{2, 2, 2}, {2, 2, 2}},
		{{0, 0, 0}, {math.NaN(), 0, 0}},
		{{0, 0, 0}, {math.Inf(1), 0, 0}},
	}
	for _, c := range cases {
		if _, err := PointLineDistance(p, c[0], c[1]); !errors.Is(err, ErrDegenerateRay) {
			t.Errorf("ray %v: expected ErrDegenerateRay, got %v", c, err)
		}
	}
}

func TestRandomQuaternionIsUnit(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		q := RandomQuaternion(rng)
		if l := q.Len(); math.Abs(l-1) > 1e-9 {
			t.Fatalf("quaternion %d has length %v", i, l)
		}
		v := RandomUnitVector(rng)
		if l := v.Len(); math.Abs(l-1) > 1e-9 {
			t.Fatalf("vector %d has length %v", i, l)
		}
	}
}

func TestUniformRange(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 1000; i++ {
		if v := Uniform(rng, -0.1, 0.1); v < -0.1 || v >= 0.1 {
			t.Fatalf("Uniform out of range: %v", v)
		}
	}
}
