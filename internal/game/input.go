package game

import (
	"fmt"
	"strings"
	"sync"
)

// Key is an abstract key or button name. Mouse buttons are mouse1, mouse2, ...
type Key string

const (
	Mouse1 Key = "mouse1"
	Mouse2 Key = "mouse2"
	Mouse3 Key = "mouse3"
)

// InputAction classifies an input edge.
type InputAction uint8

const (
	ActionPress InputAction = iota
	ActionRelease
	ActionMove
)

// String returns the wire name of the action.
func (a InputAction) String() string {
	switch a {
	case ActionPress:
		return "press"
	case ActionRelease:
		return "release"
	case ActionMove:
		return "move"
	default:
		return "unknown"
	}
}

// ParseInputAction maps a wire name back to an action.
func ParseInputAction(s string) (InputAction, error) {
	switch strings.ToLower(s) {
	case "press", "down":
		return ActionPress, nil
	case "release", "up":
		return ActionRelease, nil
	case "move":
		return ActionMove, nil
	}
	return 0, fmt.Errorf("unknown input action %q", s)
}

// InputEvent is one discrete edge from the event layer.
// Press and release carry Key; move carries the pointer in NDC.
type InputEvent struct {
	Action InputAction
	Key    Key
	X, Y   float64
	Source string // Origin for event-log rate limiting, empty for local devices
}

// Input is the per-frame snapshot scenes read: held keys plus pointer NDC.
// Written only by the driver's poll step.
type Input struct {
	held map[Key]struct{}
	X, Y float64
}

// NewInput creates an empty input snapshot with the pointer centered.
func NewInput() *Input {
	return &Input{held: make(map[Key]struct{})}
}

// Apply folds one event into the snapshot.
func (in *Input) Apply(ev InputEvent) {
	switch ev.Action {
	case ActionPress:
		if ev.Key != "" {
			in.held[ev.Key] = struct{}{}
		}
	case ActionRelease:
		delete(in.held, ev.Key)
	case ActionMove:
		in.X = clampNDC(ev.X)
		in.Y = clampNDC(ev.Y)
	}
}

// Held reports whether k is currently down.
func (in *Input) Held(k Key) bool {
	_, ok := in.held[k]
	return ok
}

// Any reports whether any key or button is held.
func (in *Input) Any() bool {
	return len(in.held) > 0
}

// Count returns how many keys are held.
func (in *Input) Count() int {
	return len(in.held)
}

func clampNDC(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// PixelToNDC converts window pixel coordinates into NDC with y up.
func PixelToNDC(px, py float64, width, height int) (x, y float64) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	return px/float64(width)*2 - 1, 1 - py/float64(height)*2
}

// Bounded so a flood of remote input cannot grow memory between frames.
const maxQueuedInput = 256

// InputQueue hands events from any goroutine to the frame loop.
type InputQueue struct {
	mu      sync.Mutex
	events  []InputEvent
	dropped uint64
}

// NewInputQueue creates an empty queue.
func NewInputQueue() *InputQueue {
	return &InputQueue{events: make([]InputEvent, 0, 32)}
}

// Push enqueues ev. Returns false when the queue is full.
func (q *InputQueue) Push(ev InputEvent) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) >= maxQueuedInput {
		q.dropped++
		return false
	}
	q.events = append(q.events, ev)
	return true
}

// Drain appends all queued events to dst in arrival order and empties the queue.
func (q *InputQueue) Drain(dst []InputEvent) []InputEvent {
	q.mu.Lock()
	defer q.mu.Unlock()

	dst = append(dst, q.events...)
	q.events = q.events[:0]
	return dst
}

// Dropped returns how many events were refused.
func (q *InputQueue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
