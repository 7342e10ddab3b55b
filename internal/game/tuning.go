package game

import (
	"fish-hunt/internal/easing"
	"fish-hunt/internal/vmath"
)

// World and gameplay tuning. Distances are world units, per-step values are
// applied once per simulation step (one step per rendered frame by default).
const (
	FlockSize = 10

	// Fish motion: s(t) = sin(now*FishWaveSpeed + phase*FishPhaseScale)
	FishWaveSpeed       = 1.0
	FishPhaseScale      = 6.0
	FishSwing           = 6.0  // z amplitude
	FishSpread          = 10.0 // x scale of base offset
	FishDepthOffset     = 16.0 // x shift toward the horizon
	FishLaneSpacing     = 3.0  // y distance between slots
	VisibilityThreshold = -0.8
	SpinAngle           = 0.02 // radians per step

	GravityPerStep = 0.01
	FloorZ         = -1.0

	HitRadius    = 2.0
	BurstCount   = 100
	SmokeCount   = 30
	SmokeLifeMin = 30 // frames, inclusive
	SmokeLifeMax = 60 // frames, exclusive

	WinHits         = 100
	PlayTimeout     = 60.0
	IntroLength     = 15.0
	VoiceSignAt     = 9.0
	VoiceWaveAt     = 13.0
	StartHoverAfter = 7.5
	StartHoverAlpha = 0.8
	IntroStartAlpha = 0.8
	BannerDelay     = 3.0
	FadeOutIdle     = 4.0

	FovFadeIn = 45.0
	FovPlay   = 50.0
	FovWiden  = 5.0

	IntroZoom = 0.55
	IntroPan  = 0.225
	AimScale  = 0.5
)

var (
	Eye   = vmath.Vec3{6.4, 0, 3.5}
	Light = vmath.Vec3{3, 4, 30}

	FadeInTarget = vmath.Vec3{5.68, 0, 2.9}
	PlayTarget   = vmath.Vec3{5.68, 0, 2.9 + IntroZoom}

	GunPosition  = vmath.Vec3{5.96, 0.38, 3.25}
	GunForward   = vmath.Vec3{-1, 0, 0}
	MuzzleOffset = vmath.Vec3{-0.6, 0, 0.05}

	BurstColor = vmath.Vec3{0.5, 0, 0}
	SmokeColor = vmath.Vec3{0.6, 0.6, 0.6}

	// Start button hit area in NDC.
	StartRect  = Rect{X0: -0.23, Y0: 0.035, X1: 0.23, Y1: 0.3}
	PromptRect = Rect{X0: -0.5, Y0: -0.15, X1: 0.5, Y1: 0.15}
	BannerRect = Rect{X0: -0.6, Y0: 0.2, X1: 0.6, Y1: 0.5}

	Milestones = []int{1, 10, 20, 30, 40, 55, 65, 75, 85, 99, 105}
)

// Timed windows, in seconds of scene elapsed time.
var (
	fadeInShade     = easing.MustWindow(0, 1)
	fadeInPrompt    = easing.MustWindow(7.1, 7.6)
	introStartFade  = easing.MustWindow(0, 0.3)
	introZoomWindow = easing.MustWindow(1, 5)
	introPanDown    = easing.MustWindow(6, 9)
	introPanBack    = easing.MustWindow(12, 15)
	loseShade       = easing.MustWindow(0, 3)
	winShade        = easing.MustWindow(0, 1)
)
