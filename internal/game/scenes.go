package game

import (
	"math"
	"math/rand"

	"fish-hunt/internal/easing"
	"fish-hunt/internal/vmath"
)

// SceneKind tags the active scene.
type SceneKind uint8

const (
	ScenePressAnyKey SceneKind = iota
	SceneFadeIn
	SceneIntro
	ScenePlay
	SceneFadeOutLose
	SceneFadeOutWin
)

// String returns the scene name used in logs, metrics and the API.
func (k SceneKind) String() string {
	switch k {
	case ScenePressAnyKey:
		return "press_any_key"
	case SceneFadeIn:
		return "fade_in"
	case SceneIntro:
		return "intro"
	case ScenePlay:
		return "play"
	case SceneFadeOutLose:
		return "fade_out_lose"
	case SceneFadeOutWin:
		return "fade_out_win"
	default:
		return "unknown"
	}
}

// SceneKinds lists every scene in cycle order.
var SceneKinds = []SceneKind{
	ScenePressAnyKey, SceneFadeIn, SceneIntro, ScenePlay, SceneFadeOutLose, SceneFadeOutWin,
}

// Frame is what a scene sees for one frame. Input is read-only.
type Frame struct {
	Now      float64 // Clock seconds
	Input    *Input
	Steps    int // Simulation steps to run this frame
	Aspect   float64
	Renderer Renderer
	Audio    Audio

	emit func(EventType, interface{})
}

// Emit records a scene event if the driver installed a sink.
func (f *Frame) Emit(t EventType, payload interface{}) {
	if f.emit != nil {
		f.emit(t, payload)
	}
}

func (f *Frame) play(cue Cue) {
	f.Audio.Play(cue)
	f.Emit(EventTypeCue, CuePayload{Cue: string(cue)})
}

// Transition asks the driver to replace the active scene after this frame.
type Transition struct {
	Next       SceneKind
	ResetClock bool
}

// Scene is one state of the top-level machine. Update runs the frame to
// completion and optionally returns the next state.
type Scene interface {
	Kind() SceneKind
	Started() float64
	Update(f *Frame) (Transition, bool)
}

// SceneDeps are the shared resources new scenes are built from.
type SceneDeps struct {
	Rng          *rand.Rand
	MaxParticles int
	MaxSmoke     int
}

// NewScene builds the scene for kind, starting at now. prev is the scene being
// replaced; fade-outs keep drawing the world of the play session they end.
func NewScene(kind SceneKind, now float64, prev Scene, deps SceneDeps) Scene {
	base := sceneBase{kind: kind, start: now}
	switch kind {
	case SceneFadeIn:
		return &fadeInScene{sceneBase: base}
	case SceneIntro:
		return &introScene{sceneBase: base, voiceSign: true, voiceWave: true}
	case ScenePlay:
		return &playScene{sceneBase: base, world: newWorld(deps)}
	case SceneFadeOutLose, SceneFadeOutWin:
		w := newWorld(deps)
		if ws, ok := prev.(worldScene); ok {
			w = ws.World()
		}
		fo := &fadeOutScene{sceneBase: base, world: w, shade: loseShade, banner: OverlayGameOver}
		if kind == SceneFadeOutWin {
			fo.shade = winShade
			fo.banner = OverlayYouWin
		}
		return fo
	default:
		return &pressAnyKeyScene{sceneBase: sceneBase{kind: ScenePressAnyKey, start: now}}
	}
}

type sceneBase struct {
	kind  SceneKind
	start float64
}

func (s *sceneBase) Kind() SceneKind  { return s.kind }
func (s *sceneBase) Started() float64 { return s.start }

func camera(target vmath.Vec3, fov, aspect float64) CameraState {
	return CameraState{Eye: Eye, Target: target, Light: Light, Aspect: aspect, Fov: fov}
}

// WaterLevel is the tide height at now.
func WaterLevel(now float64) float64 {
	return 1.0 + math.Sin(now)*0.5
}

func drawWater(r Renderer, now float64) {
	r.DrawWater(now, WaterLevel(now))
}

// =============================================================================
// WORLD (flock + pools + score of one play session)
// =============================================================================

// World is the simulated content of a play session.
type World struct {
	Flock     *Flock
	Particles *Pool
	Smoke     *Pool
	Shooter   *Shooter
}

type worldScene interface {
	World() *World
}

func newWorld(deps SceneDeps) *World {
	return &World{
		Flock:     NewFlock(deps.Rng),
		Particles: NewPool(VariantGravity, deps.MaxParticles),
		Smoke:     NewPool(VariantSmoke, deps.MaxSmoke),
		Shooter:   NewShooter(deps.Rng),
	}
}

func (w *World) step(n int) {
	for i := 0; i < n; i++ {
		w.Flock.Step()
		w.Particles.Update()
		w.Smoke.Update()
	}
}

func (w *World) draw(r Renderer, now float64) {
	for i := 0; i < w.Flock.Len(); i++ {
		f := w.Flock.Fish(i)
		if f.Visible {
			r.DrawMesh(MeshFish, f.Position(now), f.Orientation, 1)
		}
	}
	r.DrawParticles(w.Particles.Instances())
	r.DrawParticles(w.Smoke.Instances())
}

// =============================================================================
// SCENES
// =============================================================================

type pressAnyKeyScene struct {
	sceneBase
}

func (s *pressAnyKeyScene) Update(f *Frame) (Transition, bool) {
	f.Renderer.DrawOverlayImage(OverlayPressAnyKey, PromptRect)
	if f.Input.Any() {
		return Transition{Next: SceneFadeIn, ResetClock: true}, true
	}
	return Transition{}, false
}

type fadeInScene struct {
	sceneBase
}

// hovering reports whether the start button is armed and under the pointer.
func (s *fadeInScene) hovering(e float64, in *Input) bool {
	return e > StartHoverAfter && StartRect.Contains(in.X, in.Y)
}

// alphas returns the shade and start-button alpha at elapsed e.
func (s *fadeInScene) alphas(e float64, in *Input) (shade, start float64) {
	shade = 1 - fadeInShade.Smoothstep(e)
	start = fadeInPrompt.Smoothstep(e)
	if s.hovering(e, in) {
		start = StartHoverAlpha
	}
	return shade, start
}

func (s *fadeInScene) Update(f *Frame) (Transition, bool) {
	e := f.Now - s.start
	shade, startAlpha := s.alphas(e, f.Input)

	r := f.Renderer
	r.SetCamera(camera(FadeInTarget, FovFadeIn, f.Aspect))
	r.DrawMesh(MeshSand, vmath.Vec3{}, vmath.Identity, 1)
	r.DrawMesh(MeshStart, vmath.Vec3{}, vmath.Identity, startAlpha)
	drawWater(r, f.Now)
	r.DrawFullscreenTint(Color{A: shade})

	if s.hovering(e, f.Input) && f.Input.Held(Mouse1) {
		f.play(CueStart)
		return Transition{Next: SceneIntro}, true
	}
	return Transition{}, false
}

type introScene struct {
	sceneBase
	voiceSign bool // armed until 9s
	voiceWave bool // armed until 13s
}

// introCamera returns the camera target and fov at elapsed e.
func introCamera(e float64) (vmath.Vec3, float64) {
	z := introZoomWindow.Smootherstep(e) * IntroZoom
	y := introPanDown.Smootherstep(e)*IntroPan - introPanBack.Smootherstep(e)*IntroPan
	fov := FovFadeIn + introPanBack.Smootherstep(e)*FovWiden
	return vmath.Vec3{FadeInTarget[0], -y, FadeInTarget[2] + z}, fov
}

func (s *introScene) Update(f *Frame) (Transition, bool) {
	e := f.Now - s.start
	target, fov := introCamera(e)
	startAlpha := IntroStartAlpha - introStartFade.Smoothstep(e)*IntroStartAlpha

	r := f.Renderer
	r.SetCamera(camera(target, fov, f.Aspect))
	r.DrawMesh(MeshSand, vmath.Vec3{}, vmath.Identity, 1)
	r.DrawMesh(MeshStart, vmath.Vec3{}, vmath.Identity, startAlpha)
	r.DrawMesh(MeshSign, vmath.Vec3{}, vmath.Identity, 1)
	drawWater(r, f.Now)

	if s.voiceSign && e >= VoiceSignAt {
		s.voiceSign = false
		f.play(CueVoiceSign)
	}
	if s.voiceWave && e >= VoiceWaveAt {
		s.voiceWave = false
		f.play(CueVoiceWave)
	}

	if e > IntroLength {
		return Transition{Next: ScenePlay}, true
	}
	return Transition{}, false
}

type playScene struct {
	sceneBase
	world *World
}

func (s *playScene) World() *World { return s.world }

func (s *playScene) Update(f *Frame) (Transition, bool) {
	e := f.Now - s.start
	w := s.world
	in := f.Input

	cam := camera(PlayTarget, FovPlay, f.Aspect)
	gun := AimGun(in.X, in.Y)

	w.Flock.UpdateVisibility(f.Now, w.Shooter.Hits() >= WinHits)

	if w.Shooter.Trigger(in.Held(Mouse1)) {
		s.shoot(f, cam, gun)
	}

	w.step(f.Steps)

	r := f.Renderer
	r.SetCamera(cam)
	r.DrawMesh(MeshSand, vmath.Vec3{}, vmath.Identity, 1)
	r.DrawMesh(MeshShotgun, gun.Position, gun.Rotation, 1)
	w.draw(r, f.Now)
	drawWater(r, f.Now)

	// Win is checked first: a last-frame win beats the timeout.
	hits := w.Shooter.Hits()
	if hits >= WinHits && !w.Flock.AnyVisible() {
		f.Emit(EventTypeResult, ResultPayload{Outcome: "win", Hits: hits, Shots: w.Shooter.Shots(), Seconds: e})
		return Transition{Next: SceneFadeOutWin}, true
	}
	if e > PlayTimeout {
		f.Emit(EventTypeResult, ResultPayload{Outcome: "lose", Hits: hits, Shots: w.Shooter.Shots(), Seconds: e})
		return Transition{Next: SceneFadeOutLose}, true
	}
	return Transition{}, false
}

func (s *playScene) shoot(f *Frame, cam CameraState, gun GunPose) {
	w := s.world
	in := f.Input

	// An unprojection failure leaves the zero Ray, which hits nothing.
	ray, _ := PickRay(cam, in.X, in.Y)
	res := w.Shooter.Fire(ray, gun, w.Flock, w.Particles, w.Smoke, f.Now)

	f.play(CueShot)
	f.Emit(EventTypeShot, ShotPayload{
		X:          in.X,
		Y:          in.Y,
		Targets:    len(res.Slots),
		Counted:    res.Counted,
		Hits:       res.Hits,
		Degenerate: res.Degenerate,
	})
	if res.Milestone > 0 {
		f.Emit(EventTypeMilestone, MilestonePayload{Hits: res.Milestone})
		f.play(MilestoneCue(res.Milestone))
	}
}

type fadeOutScene struct {
	sceneBase
	world  *World
	shade  easing.Window
	banner Overlay
}

func (s *fadeOutScene) World() *World { return s.world }

func (s *fadeOutScene) Update(f *Frame) (Transition, bool) {
	e := f.Now - s.start
	s.world.step(f.Steps)

	r := f.Renderer
	r.SetCamera(camera(PlayTarget, FovPlay, f.Aspect))
	r.DrawMesh(MeshSand, vmath.Vec3{}, vmath.Identity, 1)
	s.world.draw(r, f.Now)
	drawWater(r, f.Now)
	r.DrawFullscreenTint(Color{A: s.shade.Smoothstep(e)})
	if e > BannerDelay {
		r.DrawOverlayImage(s.banner, BannerRect)
	}

	if e > FadeOutIdle && f.Input.Any() {
		return Transition{Next: SceneFadeIn, ResetClock: true}, true
	}
	return Transition{}, false
}
