package vmath

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera defaults: z-up world, near/far clip planes.
const (
	DefaultNear = 0.1
	DefaultFar  = 1000.0
)

// ErrSingularCamera is returned when the camera matrix cannot be inverted.
var ErrSingularCamera = errors.New("vmath: camera matrix is not invertible")

// Camera is a perspective look-at camera. FovY is in degrees.
type Camera struct {
	Eye, Target, Up Vec3
	Aspect          float64
	FovY            float64
	Near, Far       float64
}

// NewCamera returns a z-up camera with the default clip planes.
func NewCamera(eye, target Vec3, aspect, fovY float64) Camera {
	return Camera{
		Eye:    eye,
		Target: target,
		Up:     Vec3{0, 0, 1},
		Aspect: aspect,
		FovY:   fovY,
		Near:   DefaultNear,
		Far:    DefaultFar,
	}
}

// Matrix returns projection * view.
func (c Camera) Matrix() mgl64.Mat4 {
	proj := mgl64.Perspective(mgl64.DegToRad(c.FovY), c.Aspect, c.Near, c.Far)
	view := mgl64.LookAtV(c.Eye, c.Target, c.Up)
	return proj.Mul4(view)
}

// Unproject maps NDC (x, y) back to world space on the near and far planes.
func (c Camera) Unproject(x, y float64) (near, far Vec3, err error) {
	m := c.Matrix()
	if det := m.Det(); det == 0 || math.IsNaN(det) {
		return Vec3{}, Vec3{}, ErrSingularCamera
	}
	inv := m.Inv()

	a := inv.Mul4x1(mgl64.Vec4{x, y, -1, 1})
	b := inv.Mul4x1(mgl64.Vec4{x, y, 1, 1})
	if a.W() == 0 || b.W() == 0 {
		return Vec3{}, Vec3{}, ErrSingularCamera
	}
	return a.Vec3().Mul(1 / a.W()), b.Vec3().Mul(1 / b.W()), nil
}

// Project maps a world point to NDC. ok is false for points behind the eye.
func (c Camera) Project(p Vec3) (ndc Vec3, ok bool) {
	clip := c.Matrix().Mul4x1(p.Vec4(1))
	if clip.W() <= 0 {
		return Vec3{}, false
	}
	return clip.Vec3().Mul(1 / clip.W()), true
}
