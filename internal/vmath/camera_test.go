package vmath

import (
	"errors"
	"testing"
)

func TestUnprojectCenterLooksAtTarget(t *testing.T) {
	cam := NewCamera(Vec3{6.4, 0, 3.5}, Vec3{5.68, 0, 3.45}, 16.0/9.0, 50)

	n, f, err := cam.Unproject(0, 0)
	if err != nil {
		t.Fatalf("Unproject: %v", err)
	}

	// The target lies on the center ray.
	d, err := PointLineDistance(cam.Target, n, f)
	if err != nil {
		t.Fatalf("PointLineDistance: %v", err)
	}
	if d > 1e-6 {
		t.Errorf("target is %v off the center ray", d)
	}

	if dn := n.Sub(cam.Eye).Len(); dn > 0.2 {
		t.Errorf("near point should sit on the near plane, %v from eye", dn)
	}
}

func TestProjectRoundTrip(t *testing.T) {
	cam := NewCamera(Vec3{6.4, 0, 3.5}, Vec3{5.68, 0, 2.9}, 16.0/9.0, 45)

	for _, ndc := range [][2]float64{{0.3, -0.2}, {-0.9, 0.9}, {0, 0.5}} {
		n, f, err := cam.Unproject(ndc[0], ndc[1])
		if err != nil {
			t.Fatalf("Unproject: %v", err)
		}
		mid := n.Add(f.Sub(n).Mul(0.001))
		got, ok := cam.Project(mid)
		if !ok {
			t.Fatalf("point in front of camera reported behind")
		}
		if !nearTol(got[0], ndc[0]) || !nearTol(got[1], ndc[1]) {
			t.Errorf("round trip %v -> %v", ndc, got)
		}
	}
}

func TestProjectBehindEye(t *testing.T) {
	cam := NewCamera(Vec3{0, 0, 0}, Vec3{-1, 0, 0}, 1, 60)
	if _, ok := cam.Project(Vec3{5, 0, 0}); ok {
		t.Error("point behind the eye should not project")
	}
}

func TestUnprojectSingular(t *testing.T) {
	cam := NewCamera(Vec3{1, 1, 1}, Vec3{1, 1, 1}, 1, 60)
	if _, _, err := cam.Unproject(0, 0); !errors.Is(err, ErrSingularCamera) {
		t.Errorf("expected ErrSingularCamera, got %v", err)
	}
}

func nearTol(a, b float64) bool {
	d := a - b
	return d < 1e-6 && d > -1e-6
}
