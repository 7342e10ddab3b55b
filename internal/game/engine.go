package game

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"fish-hunt/internal/vmath"
)

// EngineConfig configures the frame driver core.
type EngineConfig struct {
	Aspect float64        // Viewport width/height
	Limits ResourceLimits // Pool caps
	Step   StepPolicy     // nil = one step per frame
	Seed   int64          // RNG seed, 0 = wall clock
}

// EngineStats are frame-loop counters for monitoring.
type EngineStats struct {
	Frames       uint64         `json:"frames"`
	Transitions  uint64         `json:"transitions"`
	Scene        string         `json:"scene"`
	InputDropped uint64         `json:"inputDropped"`
	Seed         int64          `json:"seed"`
	Running      bool           `json:"running"`
	Limits       ResourceLimits `json:"limits"`
}

// Engine is the frame driver core: it polls input, advances the clock, runs
// the active scene and replaces it between frames.
type Engine struct {
	mu sync.Mutex

	clock   *Clock
	input   *Input
	queue   *InputQueue
	pending []InputEvent
	frame   Frame

	scene       Scene
	renderer    Renderer
	audio       Audio
	step        StepPolicy
	aspect      float64
	limits      ResourceLimits
	frameCount  uint64
	transitions uint64

	// Deterministic RNG for reproducible sessions
	rng     *rand.Rand
	rngSeed int64

	// Snapshot system for lock-free reads by the API
	snapshotPool *SnapshotPool

	// Session history
	eventLog *EventLog

	// Loop
	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}
	done     chan struct{}

	// Callbacks
	onTransition func(from, to SceneKind)
	onFrame      func(d time.Duration, snap *FrameSnapshot)
	onEvent      func(t EventType, payload interface{})
}

// NewEngine creates an engine in the press-any-key scene.
func NewEngine(cfg EngineConfig, src TimeSource, renderer Renderer, audio Audio) *Engine {
	if cfg.Step == nil {
		cfg.Step = PerFrame{}
	}
	if cfg.Aspect <= 0 {
		cfg.Aspect = 16.0 / 9.0
	}
	if cfg.Limits == (ResourceLimits{}) {
		cfg.Limits = DefaultLimits
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if renderer == nil {
		renderer = DiscardRenderer{}
	}
	if audio == nil {
		audio = SilentAudio{}
	}

	e := &Engine{
		clock:        NewClock(src),
		input:        NewInput(),
		queue:        NewInputQueue(),
		pending:      make([]InputEvent, 0, 32),
		renderer:     renderer,
		audio:        audio,
		step:         cfg.Step,
		aspect:       cfg.Aspect,
		limits:       cfg.Limits,
		rng:          rand.New(rand.NewSource(seed)),
		rngSeed:      seed,
		snapshotPool: NewSnapshotPool(),
		eventLog:     NewEventLog(),
	}
	e.scene = NewScene(ScenePressAnyKey, 0, nil, e.deps())
	return e
}

func (e *Engine) deps() SceneDeps {
	return SceneDeps{
		Rng:          e.rng,
		MaxParticles: e.limits.MaxParticles,
		MaxSmoke:     e.limits.MaxSmoke,
	}
}

// Start runs frames at fps on a ticker goroutine (headless driver).
func (e *Engine) Start(fps int) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	if fps <= 0 {
		fps = 60
	}
	e.running = true
	e.stopChan = make(chan struct{})
	e.done = make(chan struct{})
	e.ticker = time.NewTicker(time.Second / time.Duration(fps))
	ticker, stop, done := e.ticker, e.stopChan, e.done
	e.mu.Unlock()

	go func() {
		defer close(done)
		for {
			select {
			case <-ticker.C:
				e.RunFrame()
			case <-stop:
				return
			}
		}
	}()

	log.Printf("🎮 Frame loop started at %d FPS (seed %d)", fps, e.rngSeed)
}

// Stop stops the frame loop and waits for the current frame to finish.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	e.ticker.Stop()
	close(e.stopChan)
	done := e.done
	e.mu.Unlock()

	<-done
	log.Println("🛑 Frame loop stopped")
}

// PushInput queues an input edge for the next frame's poll step.
// Safe to call from any goroutine.
func (e *Engine) PushInput(ev InputEvent) bool {
	return e.queue.Push(ev)
}

// RunFrame runs one complete frame: poll, clock, scene, transition, snapshot.
func (e *Engine) RunFrame() {
	e.mu.Lock()
	defer e.mu.Unlock()

	started := time.Now()
	e.frameCount++

	// Poll: the only writer of the input snapshot
	e.pending = e.queue.Drain(e.pending[:0])
	for _, ev := range e.pending {
		e.input.Apply(ev)
		if ev.Source != "" && ev.Action != ActionMove {
			e.eventLog.EmitSimple(EventTypeInput, e.frameCount, e.scene.Kind().String(), ev.Source,
				InputPayload{Action: ev.Action.String(), Key: string(ev.Key), X: ev.X, Y: ev.Y})
		}
	}

	now := e.clock.Advance()

	e.frame = Frame{
		Now:      now,
		Input:    e.input,
		Steps:    e.step.Steps(now),
		Aspect:   e.aspect,
		Renderer: e.renderer,
		Audio:    e.audio,
		emit:     e.emit,
	}

	fr, framed := e.renderer.(FrameRenderer)
	if framed {
		fr.BeginFrame()
	}
	next, changed := e.scene.Update(&e.frame)
	if framed {
		fr.EndFrame()
	}

	if changed {
		e.transition(next)
	}

	// Published after the transition so readers see the scene that runs next.
	snap := e.produceSnapshot(e.clock.Now())

	if e.onFrame != nil {
		e.onFrame(time.Since(started), snap)
	}
}

// transition replaces the active scene. Called with mu held, between frames.
func (e *Engine) transition(t Transition) {
	from := e.scene.Kind()
	if t.ResetClock {
		e.clock.Reset()
	}
	e.scene = NewScene(t.Next, e.clock.Now(), e.scene, e.deps())
	e.transitions++

	log.Printf("🎬 Scene %s → %s (clock reset: %v)", from, t.Next, t.ResetClock)
	e.emit(EventTypeSceneEnter, ScenePayload{From: from.String(), To: t.Next.String(), ResetClock: t.ResetClock})

	if e.onTransition != nil {
		e.onTransition(from, t.Next)
	}
}

// emit is the scene event sink. Called with mu held.
func (e *Engine) emit(t EventType, payload interface{}) {
	e.eventLog.EmitSimple(t, e.frameCount, e.scene.Kind().String(), "", payload)

	switch p := payload.(type) {
	case MilestonePayload:
		log.Printf("🎯 Milestone: %d hits", p.Hits)
	case ResultPayload:
		log.Printf("🏁 Session over: %s with %d hits in %.1fs", p.Outcome, p.Hits, p.Seconds)
	}

	if e.onEvent != nil {
		e.onEvent(t, payload)
	}
}

// produceSnapshot publishes the state at the end of the frame.
func (e *Engine) produceSnapshot(now float64) *FrameSnapshot {
	snap := e.snapshotPool.AcquireWrite()

	snap.Frame = e.frameCount
	snap.Scene = e.scene.Kind().String()
	snap.Now = now
	snap.Elapsed = now - e.scene.Started()
	snap.Transitions = e.transitions
	snap.PointerX = e.input.X
	snap.PointerY = e.input.Y
	snap.HeldButtons = e.input.Count()
	snap.WaterLevel = WaterLevel(now)

	if ws, ok := e.scene.(worldScene); ok {
		w := ws.World()
		snap.Hits = w.Shooter.Hits()
		snap.Shots = w.Shooter.Shots()
		for i := 0; i < w.Flock.Len(); i++ {
			f := w.Flock.Fish(i)
			p := f.Position(now)
			snap.Fish[i] = FishSnapshot{
				Slot:        f.Slot,
				X:           p[0],
				Y:           p[1],
				Z:           p[2],
				Wave:        f.Wave(now),
				Visible:     f.Visible,
				Orientation: vmath.XYZW(f.Orientation),
			}
		}
		snap.FishVisible = w.Flock.VisibleCount()
		snap.Particles = w.Particles.Len()
		snap.Smoke = w.Smoke.Len()
		snap.Dropped = w.Particles.Dropped() + w.Smoke.Dropped()
	}

	e.snapshotPool.PublishWrite()
	return snap
}

// GetSnapshot returns the latest published frame (lock-free). Scene and
// Elapsed describe the scene active after that frame's transition.
func (e *Engine) GetSnapshot() FrameSnapshot {
	return e.snapshotPool.AcquireRead()
}

// Scene returns the active scene kind.
func (e *Engine) Scene() SceneKind {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene.Kind()
}

// Now returns the clock value of the last frame.
func (e *Engine) Now() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock.Now()
}

// GetStats returns frame-loop counters.
func (e *Engine) GetStats() EngineStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EngineStats{
		Frames:       e.frameCount,
		Transitions:  e.transitions,
		Scene:        e.scene.Kind().String(),
		InputDropped: e.queue.Dropped(),
		Seed:         e.rngSeed,
		Running:      e.running,
		Limits:       e.limits,
	}
}

// SetCallbacks installs observers. Callbacks run on the frame goroutine and
// must not block.
func (e *Engine) SetCallbacks(onTransition func(from, to SceneKind), onFrame func(time.Duration, *FrameSnapshot), onEvent func(EventType, interface{})) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onTransition = onTransition
	e.onFrame = onFrame
	e.onEvent = onEvent
}

// StartEventLog initializes the event logging system
func (e *Engine) StartEventLog(filePath string) error {
	return e.eventLog.Start(filePath)
}

// StopEventLog gracefully stops the event logging system
func (e *Engine) StopEventLog() {
	e.eventLog.Stop()
}

// GetEventLogStats returns event log statistics for monitoring
func (e *Engine) GetEventLogStats() map[string]interface{} {
	return e.eventLog.GetStats()
}

// RecentEvents returns up to n of the latest session events.
func (e *Engine) RecentEvents(n int) []Event {
	return e.eventLog.Recent(n)
}

