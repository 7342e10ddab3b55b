package game

import (
	"math"

	"fish-hunt/internal/vmath"
)

// Ray is a pick ray between the near and far planes of the camera.
type Ray struct {
	Near, Far vmath.Vec3
}

// Degenerate reports a zero-length or non-finite ray. The zero Ray is degenerate.
func (r Ray) Degenerate() bool {
	d := r.Far.Sub(r.Near)
	l := d.Dot(d)
	return l == 0 || math.IsNaN(l) || math.IsInf(l, 0)
}

// PickRay unprojects pointer NDC through cam.
func PickRay(cam CameraState, x, y float64) (Ray, error) {
	n, f, err := cam.Camera().Unproject(x, y)
	if err != nil {
		return Ray{}, err
	}
	return Ray{Near: n, Far: f}, nil
}

// Hitbox is a cylinder of Radius around the infinite line of a ray.
// All checks are O(1).
type Hitbox struct {
	Radius float64
}

// CheckHit reports whether target lies strictly within the radius of the ray's
// line. A degenerate ray never hits.
func (h Hitbox) CheckHit(target vmath.Vec3, ray Ray) bool {
	d, err := vmath.PointLineDistance(target, ray.Near, ray.Far)
	if err != nil {
		return false
	}
	return d < h.Radius
}
