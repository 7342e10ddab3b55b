// Package easing remaps elapsed time into normalized progress for timed animation.
//
// All functions are pure and pointwise exact: their values directly drive
// camera position and alpha blending.
package easing

import (
	"errors"
	"fmt"
)

// ErrEmptyWindow is returned when a window's bounds coincide.
var ErrEmptyWindow = errors.New("easing: window bounds must differ")

// Window is a validated [From, To] interval.
// Construct with NewWindow or MustWindow so From != To always holds.
type Window struct {
	From, To float64
}

// NewWindow validates the bounds of a timed window.
func NewWindow(from, to float64) (Window, error) {
	if from == to {
		return Window{}, fmt.Errorf("%w: [%v, %v]", ErrEmptyWindow, from, to)
	}
	return Window{From: from, To: to}, nil
}

// MustWindow is NewWindow for package-level constants. It panics on an
// empty window so a bad timing table fails at program init.
func MustWindow(from, to float64) Window {
	w, err := NewWindow(from, to)
	if err != nil {
		panic(err)
	}
	return w
}

// Step returns the clamped linear fraction of x across the window.
func (w Window) Step(x float64) float64 {
	return Step(x, w.From, w.To)
}

// Smoothstep applies the C1 ease across the window.
func (w Window) Smoothstep(x float64) float64 {
	return Smoothstep(x, w.From, w.To)
}

// Smootherstep applies the C2 ease across the window.
func (w Window) Smootherstep(x float64) float64 {
	return Smootherstep(x, w.From, w.To)
}

// Step is clamp((x-a)/(b-a), 0, 1). Requires a != b.
func Step(x, a, b float64) float64 {
	t := (x - a) / (b - a)
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Smoothstep is t*t*(3-2t) over the clamped fraction.
func Smoothstep(x, a, b float64) float64 {
	t := Step(x, a, b)
	return t * t * (3 - 2*t)
}

// Smootherstep is t³(6t²-15t+10) over the clamped fraction.
func Smootherstep(x, a, b float64) float64 {
	t := Step(x, a, b)
	return t * t * t * (t*(t*6-15) + 10)
}
