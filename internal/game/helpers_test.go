package game

import (
	"math/rand"

	"fish-hunt/internal/vmath"
)

type drawCall struct {
	kind    string // mesh, particles, water, tint, overlay
	mesh    Mesh
	pos     vmath.Vec3
	rot     vmath.Quat
	alpha   float64
	n       int
	tint    Color
	overlay Overlay
	level   float64
}

// recordingRenderer captures draw calls for assertions.
type recordingRenderer struct {
	cam    CameraState
	calls  []drawCall
	begins int
	ends   int
}

func (r *recordingRenderer) BeginFrame() { r.begins++; r.calls = r.calls[:0] }
func (r *recordingRenderer) EndFrame()   { r.ends++ }

func (r *recordingRenderer) SetCamera(cam CameraState) { r.cam = cam }

func (r *recordingRenderer) DrawMesh(m Mesh, p vmath.Vec3, q vmath.Quat, alpha float64) {
	r.calls = append(r.calls, drawCall{kind: "mesh", mesh: m, pos: p, rot: q, alpha: alpha})
}

func (r *recordingRenderer) DrawParticles(instances []Particle) {
	r.calls = append(r.calls, drawCall{kind: "particles", n: len(instances)})
}

func (r *recordingRenderer) DrawWater(_, level float64) {
	r.calls = append(r.calls, drawCall{kind: "water", level: level})
}

func (r *recordingRenderer) DrawFullscreenTint(c Color) {
	r.calls = append(r.calls, drawCall{kind: "tint", tint: c})
}

func (r *recordingRenderer) DrawOverlayImage(o Overlay, _ Rect) {
	r.calls = append(r.calls, drawCall{kind: "overlay", overlay: o})
}

func (r *recordingRenderer) meshes(m Mesh) []drawCall {
	var out []drawCall
	for _, c := range r.calls {
		if c.kind == "mesh" && c.mesh == m {
			out = append(out, c)
		}
	}
	return out
}

func (r *recordingRenderer) count(kind string) int {
	n := 0
	for _, c := range r.calls {
		if c.kind == kind {
			n++
		}
	}
	return n
}

func (r *recordingRenderer) lastTint() (Color, bool) {
	for i := len(r.calls) - 1; i >= 0; i-- {
		if r.calls[i].kind == "tint" {
			return r.calls[i].tint, true
		}
	}
	return Color{}, false
}

// recordingAudio captures cues.
type recordingAudio struct {
	cues []Cue
}

func (a *recordingAudio) Play(c Cue) { a.cues = append(a.cues, c) }

func (a *recordingAudio) count(c Cue) int {
	n := 0
	for _, got := range a.cues {
		if got == c {
			n++
		}
	}
	return n
}

func testDeps(seed int64) SceneDeps {
	return SceneDeps{Rng: rand.New(rand.NewSource(seed)), MaxParticles: 10000, MaxSmoke: 10000}
}

// runScene runs one frame of s at now and returns the renderer it drew into.
func runScene(s Scene, now float64, in *Input, audio *recordingAudio) (*recordingRenderer, Transition, bool) {
	r := &recordingRenderer{}
	if audio == nil {
		audio = &recordingAudio{}
	}
	f := &Frame{Now: now, Input: in, Steps: 1, Aspect: 16.0 / 9.0, Renderer: r, Audio: audio}
	t, ok := s.Update(f)
	return r, t, ok
}

func press(in *Input, k Key) { in.Apply(InputEvent{Action: ActionPress, Key: k}) }

func release(in *Input, k Key) { in.Apply(InputEvent{Action: ActionRelease, Key: k}) }

func pointer(in *Input, x, y float64) { in.Apply(InputEvent{Action: ActionMove, X: x, Y: y}) }

// placeFish moves f so that its derived position at now equals p.
func placeFish(f *Fish, p vmath.Vec3, now float64) {
	s := f.Wave(now)
	f.Base.X = (p[0] + FishDepthOffset) / FishSpread
	f.Base.Y = p[1] - (float64(f.Slot)-4.5)*FishLaneSpacing
	f.Base.Z = p[2] - s*FishSwing
}
