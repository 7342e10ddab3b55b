package game

import (
	"sync/atomic"
	"time"
)

// ResourceLimits caps the particle pools to the renderer's instance buffer.
type ResourceLimits struct {
	MaxParticles int // Gravity pool cap
	MaxSmoke     int // Smoke pool cap
}

// DefaultLimits matches a 10000-instance buffer per pool
var DefaultLimits = ResourceLimits{
	MaxParticles: 10000,
	MaxSmoke:     10000,
}

// FishSnapshot is an immutable copy of one fish for inspection
type FishSnapshot struct {
	Slot        int        `json:"slot"`
	X           float64    `json:"x"`
	Y           float64    `json:"y"`
	Z           float64    `json:"z"`
	Wave        float64    `json:"wave"`
	Visible     bool       `json:"visible"`
	Orientation [4]float64 `json:"orientation"` // x, y, z, w
}

// FrameSnapshot is the state of one completed frame.
// Value types only, so a published snapshot never aliases live scene state.
type FrameSnapshot struct {
	Sequence  uint64    `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
	Frame     uint64    `json:"frame"`

	Scene       string  `json:"scene"`
	Now         float64 `json:"now"`     // Clock seconds
	Elapsed     float64 `json:"elapsed"` // Seconds since the scene started
	Transitions uint64  `json:"transitions"`

	PointerX    float64 `json:"pointerX"`
	PointerY    float64 `json:"pointerY"`
	HeldButtons int     `json:"heldButtons"`

	// Play session state (zero outside play and fade-outs)
	Hits        int                     `json:"hits"`
	Shots       int                     `json:"shots"`
	Fish        [FlockSize]FishSnapshot `json:"fish"`
	FishVisible int                     `json:"fishVisible"`
	Particles   int                     `json:"particles"`
	Smoke       int                     `json:"smoke"`
	Dropped     uint64                  `json:"dropped"` // Adds refused by pool caps

	WaterLevel float64 `json:"waterLevel"`
}

// SnapshotPool hands completed frames to readers.
// Uses triple buffering for lock-free producer/consumer
type SnapshotPool struct {
	snapshots [3]FrameSnapshot // Triple buffer
	writeIdx  uint32           // atomic - producer index
	readIdx   uint32           // atomic - consumer index
	sequence  uint64           // atomic - monotonic sequence
}

// NewSnapshotPool creates an empty pool
func NewSnapshotPool() *SnapshotPool {
	return &SnapshotPool{}
}

// AcquireWrite gets the next write slot (producer only, called from the frame loop)
func (p *SnapshotPool) AcquireWrite() *FrameSnapshot {
	idx := (atomic.LoadUint32(&p.writeIdx) + 1) % 3
	atomic.StoreUint32(&p.writeIdx, idx)
	snap := &p.snapshots[idx]

	*snap = FrameSnapshot{
		Sequence:  atomic.AddUint64(&p.sequence, 1),
		Timestamp: time.Now(),
	}
	return snap
}

// PublishWrite marks the write slot as the latest complete snapshot
func (p *SnapshotPool) PublishWrite() {
	atomic.StoreUint32(&p.readIdx, atomic.LoadUint32(&p.writeIdx))
}

// AcquireRead returns a copy of the latest complete snapshot
func (p *SnapshotPool) AcquireRead() FrameSnapshot {
	idx := atomic.LoadUint32(&p.readIdx) % 3
	return p.snapshots[idx]
}
