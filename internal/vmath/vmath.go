// Package vmath is the fixed set of vector/quaternion operations the scenes use,
// built on mgl64. Quaternions follow the (x, y, z, w) layout of the renderer's
// instance data; XYZW converts for that boundary.
package vmath

import (
	"errors"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

type (
	Vec3 = mgl64.Vec3
	Quat = mgl64.Quat
)

// ErrDegenerateRay is returned for zero-length or non-finite line segments.
var ErrDegenerateRay = errors.New("vmath: degenerate ray")

// Identity rotation.
var Identity = mgl64.QuatIdent()

// QuatMul composes a then b (Hamilton product a*b).
func QuatMul(a, b Quat) Quat {
	return a.Mul(b)
}

// RX returns a rotation of angle radians about the x axis.
func RX(angle float64) Quat {
	s, c := math.Sincos(angle * 0.5)
	return Quat{W: c, V: Vec3{s, 0, 0}}
}

// RY returns a rotation of angle radians about the y axis.
func RY(angle float64) Quat {
	s, c := math.Sincos(angle * 0.5)
	return Quat{W: c, V: Vec3{0, s, 0}}
}

// RZ returns a rotation of angle radians about the z axis.
func RZ(angle float64) Quat {
	s, c := math.Sincos(angle * 0.5)
	return Quat{W: c, V: Vec3{0, 0, s}}
}

// AxisAngle builds a rotation about axis. axis is expected to be unit length.
func AxisAngle(axis Vec3, angle float64) Quat {
	s, c := math.Sincos(angle * 0.5)
	return Quat{W: c, V: axis.Mul(s)}
}

// Add returns a+b.
func Add(a, b Vec3) Vec3 {
	return a.Add(b)
}

// Rotate applies the unit quaternion q to v.
func Rotate(q Quat, v Vec3) Vec3 {
	return q.Rotate(v)
}

// XYZW flattens q into instance-buffer order.
func XYZW(q Quat) [4]float64 {
	return [4]float64{q.V[0], q.V[1], q.V[2], q.W}
}

// PointLineDistance is the perpendicular distance from p to the infinite line
// through a and b.
func PointLineDistance(p, a, b Vec3) (float64, error) {
	c := b.Sub(a)
	d := c.Dot(c)
	if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, ErrDegenerateRay
	}

	ap := p.Sub(a)
	t := ap.Dot(c) / d
	dist := ap.Sub(c.Mul(t)).Len()
	if math.IsNaN(dist) {
		return 0, ErrDegenerateRay
	}
	return dist, nil
}

// Uniform samples [a, b) from rng.
func Uniform(rng *rand.Rand, a, b float64) float64 {
	return a + (b-a)*rng.Float64()
}

// RandomQuaternion returns a uniformly distributed unit quaternion (Shoemake).
func RandomQuaternion(rng *rand.Rand) Quat {
	u1, u2, u3 := rng.Float64(), rng.Float64(), rng.Float64()
	a, b := math.Sqrt(1-u1), math.Sqrt(u1)
	s2, c2 := math.Sincos(2 * math.Pi * u2)
	s3, c3 := math.Sincos(2 * math.Pi * u3)
	return Quat{W: b * c3, V: Vec3{a * s2, a * c2, b * s3}}
}

// RandomUnitVector returns a direction uniformly distributed on the sphere.
func RandomUnitVector(rng *rand.Rand) Vec3 {
	z := Uniform(rng, -1, 1)
	s, c := math.Sincos(Uniform(rng, 0, 2*math.Pi))
	r := math.Sqrt(1 - z*z)
	return Vec3{r * c, r * s, z}
}
