package game

import (
	"fmt"

	"fish-hunt/internal/vmath"
)

// Mesh identifies a preloaded model. The renderer owns the geometry.
type Mesh uint8

const (
	MeshSand Mesh = iota
	MeshStart
	MeshSign
	MeshFish
	MeshShotgun
)

// String returns the asset name of the mesh.
func (m Mesh) String() string {
	switch m {
	case MeshSand:
		return "sand"
	case MeshStart:
		return "start"
	case MeshSign:
		return "sign"
	case MeshFish:
		return "fish"
	case MeshShotgun:
		return "shotgun"
	default:
		return "unknown"
	}
}

// Overlay identifies a 2D image drawn in screen space.
type Overlay uint8

const (
	OverlayPressAnyKey Overlay = iota
	OverlayGameOver
	OverlayYouWin
)

// String returns the asset name of the overlay.
func (o Overlay) String() string {
	switch o {
	case OverlayPressAnyKey:
		return "press_any_key"
	case OverlayGameOver:
		return "game_over"
	case OverlayYouWin:
		return "you_win"
	default:
		return "unknown"
	}
}

// Color is a straight-alpha RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// Rect is an axis-aligned rectangle in NDC.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Contains reports whether (x, y) lies strictly inside r.
func (r Rect) Contains(x, y float64) bool {
	return r.X0 < x && x < r.X1 && r.Y0 < y && y < r.Y1
}

// CameraState is everything the renderer needs to place the view.
type CameraState struct {
	Eye, Target, Light vmath.Vec3
	Aspect             float64
	Fov                float64 // vertical, degrees
}

// Camera returns the math camera for unprojection.
func (c CameraState) Camera() vmath.Camera {
	return vmath.NewCamera(c.Eye, c.Target, c.Aspect, c.Fov)
}

// Renderer receives draw calls. Scenes pass only numbers; the renderer owns
// every GPU-side resource.
type Renderer interface {
	SetCamera(cam CameraState)
	DrawMesh(mesh Mesh, position vmath.Vec3, rotation vmath.Quat, alpha float64)
	DrawParticles(instances []Particle)
	DrawWater(time, level float64)
	DrawFullscreenTint(c Color)
	DrawOverlayImage(overlay Overlay, r Rect)
}

// DiscardRenderer ignores every draw call.
type DiscardRenderer struct{}

func (DiscardRenderer) SetCamera(CameraState)                          {}
func (DiscardRenderer) DrawMesh(Mesh, vmath.Vec3, vmath.Quat, float64) {}
func (DiscardRenderer) DrawParticles([]Particle)                       {}
func (DiscardRenderer) DrawWater(float64, float64)                     {}
func (DiscardRenderer) DrawFullscreenTint(Color)                       {}
func (DiscardRenderer) DrawOverlayImage(Overlay, Rect)                 {}

// FrameRenderer is implemented by renderers that need frame boundaries.
type FrameRenderer interface {
	BeginFrame()
	EndFrame()
}

// Cue names a fire-and-forget audio trigger.
type Cue string

const (
	CueStart     Cue = "start"
	CueShot      Cue = "shot"
	CueVoiceSign Cue = "voice_sign"
	CueVoiceWave Cue = "voice_wave"
)

// MilestoneCue returns the cue played when hits reaches n.
func MilestoneCue(n int) Cue {
	return Cue(fmt.Sprintf("milestone_%d", n))
}

// AllCues lists every cue the scenes can play, for preloading.
func AllCues() []Cue {
	cues := []Cue{CueStart, CueShot, CueVoiceSign, CueVoiceWave}
	for _, n := range Milestones {
		cues = append(cues, MilestoneCue(n))
	}
	return cues
}

// Audio plays cues without blocking the frame.
type Audio interface {
	Play(cue Cue)
}

// SilentAudio drops every cue.
type SilentAudio struct{}

// Play does nothing.
func (SilentAudio) Play(Cue) {}
